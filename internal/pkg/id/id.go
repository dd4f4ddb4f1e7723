package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string. ULIDs are lexicographically sortable by
// creation time and safe as DynamoDB partition keys; they also serve as
// session versions, where only uniqueness matters.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
