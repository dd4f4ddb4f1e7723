package domain

import "time"

// User is the account record. Credential and session-integrity fields
// (password hash, OTP pair, password_changed_at, session_version) never
// serialize to JSON.
type User struct {
	UserID       string `json:"id" dynamodbav:"user_id"`
	Name         string `json:"name" dynamodbav:"name"`
	Email        string `json:"email" dynamodbav:"email"`
	PasswordHash string `json:"-" dynamodbav:"password_hash"`
	Role         string `json:"role" dynamodbav:"role"`
	IsVerified   bool   `json:"is_verified" dynamodbav:"is_verified"`

	// OTPHash and OTPExpiresAt are set and cleared together: non-nil only
	// while an OTP challenge (verification or password reset) is outstanding.
	OTPHash      *string `json:"-" dynamodbav:"otp_hash"`
	OTPExpiresAt *int64  `json:"-" dynamodbav:"otp_expires_at"` // Unix seconds

	PasswordChangedAt *time.Time `json:"-" dynamodbav:"password_changed_at"`

	// SessionVersion rotates on every successful login. A bearer token is
	// honoured only while the version it carries matches this value.
	SessionVersion *string `json:"-" dynamodbav:"session_version"`

	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6"`
}

type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required,len=6"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}
