package achievements

import (
	"context"
	"errors"

	"github.com/btechub/portal-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrUserNotFound = errors.New("user not found")

type Store interface {
	// Get returns nil, nil when the user has no row for the achievement.
	Get(ctx context.Context, userID uuid.UUID, achievementID string) (*UserAchievement, error)
	Save(ctx context.Context, ua *UserAchievement) error
	List(ctx context.Context, userID uuid.UUID) ([]UserAchievement, error)
	AddXP(ctx context.Context, userID uuid.UUID, amount int) (int, error)
	XP(ctx context.Context, userID uuid.UUID) (int, error)
	Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)
}

type gormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Get(ctx context.Context, userID uuid.UUID, achievementID string) (*UserAchievement, error) {
	var ua UserAchievement
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND achievement_id = ?", userID, achievementID).
		First(&ua).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ua, nil
}

// Save merges the row so concurrent writers of other achievements are untouched.
func (s *gormStore) Save(ctx context.Context, ua *UserAchievement) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"progress", "unlocked", "unlocked_at", "updated_at"}),
	}).Create(ua).Error
}

func (s *gormStore) List(ctx context.Context, userID uuid.UUID) ([]UserAchievement, error) {
	var rows []UserAchievement
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error
	return rows, err
}

func (s *gormStore) AddXP(ctx context.Context, userID uuid.UUID, amount int) (int, error) {
	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("xp", gorm.Expr("xp + ?", amount))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, ErrUserNotFound
	}
	return s.XP(ctx, userID)
}

func (s *gormStore) XP(ctx context.Context, userID uuid.UUID) (int, error) {
	var user models.User
	err := s.db.WithContext(ctx).Select("xp").First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrUserNotFound
	}
	return user.XP, err
}

func (s *gormStore) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Select("id", "email", "display_name", "photo_url", "xp").
		Order("xp DESC, created_at ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	entries := make([]LeaderboardEntry, len(users))
	for i := range users {
		entries[i] = LeaderboardEntry{
			Rank:        i + 1,
			UserID:      users[i].ID,
			DisplayName: users[i].Name(),
			PhotoURL:    users[i].PhotoURL,
			XP:          users[i].XP,
		}
	}
	return entries, nil
}
