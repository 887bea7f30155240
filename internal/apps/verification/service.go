package verification

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"github.com/btechub/portal-backend/internal/apps"
	"github.com/btechub/portal-backend/internal/apps/achievements"
	"github.com/btechub/portal-backend/internal/i18n"
	"github.com/btechub/portal-backend/internal/services"
	"github.com/google/uuid"
)

const (
	CodeLength  = 6
	CodeTTL     = 10 * time.Minute
	MaxAttempts = 5
)

var (
	ErrMissingFields   = errors.New("email and user id are required")
	ErrMissingCode     = errors.New("verification code is required")
	ErrOTPNotFound     = errors.New("no verification code")
	ErrAlreadyVerified = errors.New("email already verified")
	ErrOTPLocked       = errors.New("too many attempts")
	ErrOTPExpired      = errors.New("verification code expired")
	ErrSendFailed      = errors.New("failed to send verification code")
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailMismatch   = errors.New("email does not match the account")
)

// MismatchError is returned for a wrong code that still leaves attempts.
type MismatchError struct {
	Remaining int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("incorrect code, %d attempts remaining", e.Remaining)
}

type Service struct {
	codes    Store
	users    UserStore
	mailer   services.Mailer
	progress apps.Progress

	now      func() time.Time
	generate func() (string, error)
}

func NewService(codes Store, users UserStore, mailer services.Mailer, progress apps.Progress) *Service {
	if progress == nil {
		progress = apps.NoProgress{}
	}
	return &Service{
		codes:    codes,
		users:    users,
		mailer:   mailer,
		progress: progress,
		now:      time.Now,
		generate: generateCode,
	}
}

// SendOTP issues a fresh code for userID and mails it to email, which must
// be the address on the account. Any previous code and its attempt counter
// are replaced.
func (s *Service) SendOTP(ctx context.Context, email, rawUserID string, lang i18n.Lang) (*OTPCode, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	userID, err := uuid.Parse(strings.TrimSpace(rawUserID))
	if email == "" || err != nil {
		return nil, ErrMissingFields
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrMissingFields
	}

	accountEmail, err := s.users.Email(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !strings.EqualFold(strings.TrimSpace(accountEmail), email) {
		return nil, ErrEmailMismatch
	}

	code, err := s.generate()
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}
	now := s.now()
	record := &OTPCode{
		UserID:    userID,
		Email:     email,
		Code:      code,
		ExpiresAt: now.Add(CodeTTL),
		Attempts:  0,
		CreatedAt: now,
	}
	if err := s.codes.Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("store code: %w", err)
	}

	subject := i18n.T(lang, "otp.email_subject")
	body := i18n.Tf(lang, "otp.email_body", code)
	if err := s.mailer.Send(ctx, email, subject, body); err != nil {
		slog.Error("otp mail failed", "user_id", userID.String(), "error", err)
		return nil, ErrSendFailed
	}
	if !s.mailer.Live() {
		slog.Info("otp mail simulated", "user_id", userID.String(), "action", "send_otp")
	}
	return record, nil
}

// VerifyOTP checks otp against the stored code. Every wrong guess costs
// exactly one attempt; the record is dropped on success, expiry or lockout.
func (s *Service) VerifyOTP(ctx context.Context, userID uuid.UUID, otp string) error {
	otp = strings.TrimSpace(otp)
	if otp == "" {
		return ErrMissingCode
	}

	record, err := s.codes.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("load code: %w", err)
	}
	if record == nil {
		return ErrOTPNotFound
	}

	verified, err := s.users.IsVerified(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if verified {
		return ErrAlreadyVerified
	}

	if record.Attempts >= MaxAttempts {
		s.drop(ctx, userID)
		return ErrOTPLocked
	}
	if !s.now().Before(record.ExpiresAt) {
		s.drop(ctx, userID)
		return ErrOTPExpired
	}

	if otp != record.Code {
		attempts, err := s.codes.IncrementAttempts(ctx, userID)
		if err != nil {
			if errors.Is(err, ErrOTPNotFound) {
				return err
			}
			return fmt.Errorf("count attempt: %w", err)
		}
		if attempts >= MaxAttempts {
			s.drop(ctx, userID)
			return ErrOTPLocked
		}
		return &MismatchError{Remaining: MaxAttempts - attempts}
	}

	s.drop(ctx, userID)

	// the account email may have changed since the code was sent
	accountEmail, err := s.users.Email(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("load user: %w", err)
	}
	if !strings.EqualFold(strings.TrimSpace(accountEmail), record.Email) {
		return ErrEmailMismatch
	}
	if err := s.users.MarkVerified(ctx, userID); err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	if err := s.progress.Unlock(ctx, userID, achievements.VerifiedEmail); err != nil {
		slog.Error("verified_email unlock failed", "user_id", userID.String(), "error", err)
	}
	return nil
}

// PurgeExpired removes codes past their expiry.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.codes.DeleteExpired(ctx, s.now())
}

func (s *Service) drop(ctx context.Context, userID uuid.UUID) {
	if err := s.codes.Delete(ctx, userID); err != nil {
		slog.Error("otp delete failed", "user_id", userID.String(), "error", err)
	}
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
