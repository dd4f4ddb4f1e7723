package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-auth-otp/internal/domain"
	"github.com/go-auth-otp/internal/pkg/id"
	"github.com/go-auth-otp/internal/pkg/otp"
	"golang.org/x/crypto/bcrypt"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldPasswordHash      = "password_hash"
	fieldIsVerified        = "is_verified"
	fieldOTPHash           = "otp_hash"
	fieldOTPExpiresAt      = "otp_expires_at"
	fieldPasswordChangedAt = "password_changed_at"
	fieldSessionVersion    = "session_version"
)

type Service interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, email, password string) (token string, u *domain.User, err error)
	VerifyOTP(ctx context.Context, email, code string) error
	ResendOTP(ctx context.Context, email string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type codeNotifier interface {
	SendVerificationCode(to, name, code string) error
	SendPasswordResetCode(to, name, code string) error
}

type tokenSigner interface {
	Sign(userID, sessionVersion string) (string, error)
}

type service struct {
	repo     userStore
	notifier codeNotifier
	signer   tokenSigner
	otpTTL   time.Duration
}

type ServiceDeps struct {
	UserRepo userStore
	Notifier codeNotifier
	Signer   tokenSigner
	OTPTTL   time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:     deps.UserRepo,
		notifier: deps.Notifier,
		signer:   deps.Signer,
		otpTTL:   deps.OTPTTL,
	}
}

func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	_, err := s.repo.GetByEmail(ctx, req.Email)
	if err == nil {
		return nil, fmt.Errorf("an account with this email already exists: %w", domain.ErrConflict)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		// Store failure, not a free email. Abort rather than risk a
		// duplicate account.
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	code, ch, err := otp.Generate(s.otpTTL)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	expires := ch.ExpiresAt.Unix()
	u := &domain.User{
		UserID:       id.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		IsVerified:   false,
		OTPHash:      &ch.Hash,
		OTPExpiresAt: &expires,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		// A racing register can slip past the read above; the store's
		// uniqueness condition is what actually holds the line.
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("an account with this email already exists: %w", domain.ErrConflict)
		}
		return nil, err
	}
	if err := s.notifier.SendVerificationCode(u.Email, u.Name, code); err != nil {
		slog.Warn("failed to send verification OTP email", "user_id", u.UserID, "err", err)
	}
	return u, nil
}

func (s *service) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Same message whether the account is missing or the password
			// is wrong, so login cannot be used to enumerate accounts.
			return "", nil, fmt.Errorf("incorrect email or password: %w", domain.ErrUnauthorized)
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, fmt.Errorf("incorrect email or password: %w", domain.ErrUnauthorized)
	}
	if !u.IsVerified {
		return "", nil, fmt.Errorf("account not verified, please verify your OTP: %w", domain.ErrForbidden)
	}

	// Rotating the session version here invalidates every token issued
	// under the previous version: one active session family per account.
	version := id.New()
	if err := s.repo.Update(ctx, u.UserID, map[string]interface{}{
		fieldSessionVersion: version,
	}); err != nil {
		return "", nil, err
	}
	u.SessionVersion = &version

	token, err := s.signer.Sign(u.UserID, version)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

func (s *service) VerifyOTP(ctx context.Context, email, code string) error {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("user not found: %w", domain.ErrNotFound)
		}
		return err
	}
	if u.IsVerified {
		return fmt.Errorf("account already verified: %w", domain.ErrBadRequest)
	}
	if !otpMatches(u, code, time.Now()) {
		return fmt.Errorf("invalid or expired OTP: %w", domain.ErrBadRequest)
	}
	return s.repo.Update(ctx, u.UserID, map[string]interface{}{
		fieldIsVerified:   true,
		fieldOTPHash:      nil,
		fieldOTPExpiresAt: nil,
	})
}

func (s *service) ResendOTP(ctx context.Context, email string) error {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("user not found: %w", domain.ErrNotFound)
		}
		return err
	}
	if u.IsVerified {
		return fmt.Errorf("account already verified: %w", domain.ErrBadRequest)
	}
	code, ch, err := otp.Generate(s.otpTTL)
	if err != nil {
		return err
	}
	// Replacing the pair invalidates any previously issued code.
	if err := s.repo.Update(ctx, u.UserID, map[string]interface{}{
		fieldOTPHash:      ch.Hash,
		fieldOTPExpiresAt: ch.ExpiresAt.Unix(),
	}); err != nil {
		return err
	}
	if err := s.notifier.SendVerificationCode(u.Email, u.Name, code); err != nil {
		slog.Warn("failed to send verification OTP email", "user_id", u.UserID, "err", err)
	}
	return nil
}

func (s *service) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("user with that email does not exist: %w", domain.ErrNotFound)
		}
		return err
	}
	code, ch, err := otp.Generate(s.otpTTL)
	if err != nil {
		return err
	}
	if err := s.repo.Update(ctx, u.UserID, map[string]interface{}{
		fieldOTPHash:      ch.Hash,
		fieldOTPExpiresAt: ch.ExpiresAt.Unix(),
	}); err != nil {
		return err
	}
	if err := s.notifier.SendPasswordResetCode(u.Email, u.Name, code); err != nil {
		slog.Warn("failed to send password reset email", "user_id", u.UserID, "err", err)
	}
	return nil
}

func (s *service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("user not found: %w", domain.ErrNotFound)
		}
		return err
	}
	if !otpMatches(u, code, time.Now()) {
		return fmt.Errorf("invalid or expired OTP: %w", domain.ErrBadRequest)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	// One atomic write: new hash, OTP pair cleared, change timestamp set.
	// Tokens issued before this instant fail the access guard's
	// password-changed-at check.
	return s.repo.Update(ctx, u.UserID, map[string]interface{}{
		fieldPasswordHash:      string(hash),
		fieldOTPHash:           nil,
		fieldOTPExpiresAt:      nil,
		fieldPasswordChangedAt: time.Now().UTC(),
	})
}

// otpMatches reports whether an outstanding OTP challenge exists and the
// supplied code validates against it. Absent challenge, wrong code, and
// expired code all look the same to callers.
func otpMatches(u *domain.User, code string, now time.Time) bool {
	if u.OTPHash == nil || u.OTPExpiresAt == nil {
		return false
	}
	return otp.Valid(*u.OTPHash, time.Unix(*u.OTPExpiresAt, 0), code, now)
}
