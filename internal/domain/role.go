package domain

// The closed set of account roles. Authorization is a membership test
// against a caller-declared allowed set, never ad-hoc string matching
// at call sites.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)
