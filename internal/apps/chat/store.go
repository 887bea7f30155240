package chat

import (
	"context"
	"errors"
	"time"

	"github.com/btechub/portal-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrProfileNotFound = errors.New("profile not found")

type MessageStore interface {
	Create(ctx context.Context, msg *Message) error
	// Recent returns the newest limit messages of a channel, oldest first.
	Recent(ctx context.Context, channelID string, limit int) ([]Message, error)
	Get(ctx context.Context, id uuid.UUID) (*Message, error)
	// DeleteBatch removes up to limit messages, optionally scoped to a channel.
	DeleteBatch(ctx context.Context, channelID string, limit int) (int64, error)
	Count(ctx context.Context, channelID string) (int64, error)
	DeleteByAuthor(ctx context.Context, authorID uuid.UUID) error
}

type ProfileStore interface {
	Profile(ctx context.Context, userID uuid.UUID) (*Profile, error)
	// SetTimeout merge-writes the timeout fields only.
	SetTimeout(ctx context.Context, userID uuid.UUID, until, violationAt time.Time) error
	ClearTimeout(ctx context.Context, userID uuid.UUID) (bool, error)
	// ClearAllTimeouts returns the ids whose timeout was cleared.
	ClearAllTimeouts(ctx context.Context) ([]uuid.UUID, error)
}

type gormMessageStore struct {
	db *gorm.DB
}

func NewGormMessageStore(db *gorm.DB) MessageStore {
	return &gormMessageStore{db: db}
}

func (s *gormMessageStore) Create(ctx context.Context, msg *Message) error {
	return s.db.WithContext(ctx).Create(msg).Error
}

func (s *gormMessageStore) Recent(ctx context.Context, channelID string, limit int) ([]Message, error) {
	var msgs []Message
	err := s.db.WithContext(ctx).
		Where("channel_id = ?", channelID).
		Order("created_at DESC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	reverse(msgs)
	return msgs, nil
}

func (s *gormMessageStore) Get(ctx context.Context, id uuid.UUID) (*Message, error) {
	var msg Message
	if err := s.db.WithContext(ctx).First(&msg, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return &msg, nil
}

func (s *gormMessageStore) DeleteBatch(ctx context.Context, channelID string, limit int) (int64, error) {
	ids := s.db.Model(&Message{}).Select("id").Order("created_at ASC").Limit(limit)
	if channelID != "" {
		ids = ids.Where("channel_id = ?", channelID)
	}
	result := s.db.WithContext(ctx).Where("id IN (?)", ids).Delete(&Message{})
	return result.RowsAffected, result.Error
}

func (s *gormMessageStore) Count(ctx context.Context, channelID string) (int64, error) {
	var count int64
	query := s.db.WithContext(ctx).Model(&Message{})
	if channelID != "" {
		query = query.Where("channel_id = ?", channelID)
	}
	err := query.Count(&count).Error
	return count, err
}

func (s *gormMessageStore) DeleteByAuthor(ctx context.Context, authorID uuid.UUID) error {
	return s.db.WithContext(ctx).Where("author_id = ?", authorID).Delete(&Message{}).Error
}

type gormProfileStore struct {
	db *gorm.DB
}

func NewGormProfileStore(db *gorm.DB) ProfileStore {
	return &gormProfileStore{db: db}
}

func (s *gormProfileStore) Profile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &Profile{
		ID:           user.ID,
		DisplayName:  user.Name(),
		PhotoURL:     user.PhotoURL,
		TimeoutUntil: user.TimeoutUntil,
	}, nil
}

func (s *gormProfileStore) SetTimeout(ctx context.Context, userID uuid.UUID, until, violationAt time.Time) error {
	return s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"timeout_until":     until,
			"last_violation_at": violationAt,
		}).Error
}

func (s *gormProfileStore) ClearTimeout(ctx context.Context, userID uuid.UUID) (bool, error) {
	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("timeout_until", nil)
	return result.RowsAffected > 0, result.Error
}

func (s *gormProfileStore) ClearAllTimeouts(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("timeout_until IS NOT NULL").Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		return tx.Model(&models.User{}).Where("id IN ?", ids).Update("timeout_until", nil).Error
	})
	return ids, err
}

func reverse(msgs []Message) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}
