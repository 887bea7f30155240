package verification

import (
	"context"
	"errors"
	"time"

	"github.com/btechub/portal-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store interface {
	// Upsert replaces any outstanding code for the user.
	Upsert(ctx context.Context, code *OTPCode) error
	// Get returns nil, nil when the user has no code.
	Get(ctx context.Context, userID uuid.UUID) (*OTPCode, error)
	// IncrementAttempts adds one to the counter and returns the new value,
	// or ErrOTPNotFound when the code is gone.
	IncrementAttempts(ctx context.Context, userID uuid.UUID) (int, error)
	Delete(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type UserStore interface {
	// Email returns ErrUserNotFound for an unknown user.
	Email(ctx context.Context, userID uuid.UUID) (string, error)
	IsVerified(ctx context.Context, userID uuid.UUID) (bool, error)
	MarkVerified(ctx context.Context, userID uuid.UUID) error
}

type gormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Upsert(ctx context.Context, code *OTPCode) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "code", "expires_at", "attempts", "created_at"}),
	}).Create(code).Error
}

func (s *gormStore) Get(ctx context.Context, userID uuid.UUID) (*OTPCode, error) {
	var code OTPCode
	if err := s.db.WithContext(ctx).First(&code, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &code, nil
}

func (s *gormStore) IncrementAttempts(ctx context.Context, userID uuid.UUID) (int, error) {
	var code OTPCode
	result := s.db.WithContext(ctx).Model(&code).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "attempts"}}}).
		Where("user_id = ?", userID).
		Update("attempts", gorm.Expr("attempts + 1"))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, ErrOTPNotFound
	}
	return code.Attempts, nil
}

func (s *gormStore) Delete(ctx context.Context, userID uuid.UUID) error {
	return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&OTPCode{}).Error
}

func (s *gormStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&OTPCode{})
	return result.RowsAffected, result.Error
}

type gormUserStore struct {
	db *gorm.DB
}

func NewGormUserStore(db *gorm.DB) UserStore {
	return &gormUserStore{db: db}
}

func (s *gormUserStore) Email(ctx context.Context, userID uuid.UUID) (string, error) {
	var user models.User
	err := s.db.WithContext(ctx).Select("email").First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrUserNotFound
	}
	return user.Email, err
}

func (s *gormUserStore) IsVerified(ctx context.Context, userID uuid.UUID) (bool, error) {
	var user models.User
	err := s.db.WithContext(ctx).Select("email_verified").First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return user.EmailVerified, err
}

func (s *gormUserStore) MarkVerified(ctx context.Context, userID uuid.UUID) error {
	return s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("email_verified", true).Error
}
