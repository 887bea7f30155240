package achievements

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/btechub/portal-backend/internal/realtime"
	"github.com/google/uuid"
)

var (
	ErrUnknownAchievement = errors.New("unknown achievement")
	ErrInvalidAmount      = errors.New("amount must be positive")
)

type Service struct {
	store  Store
	broker realtime.Broker
	now    func() time.Time
}

func NewService(store Store, broker realtime.Broker) *Service {
	return &Service{store: store, broker: broker, now: time.Now}
}

// IncrementProgress adds amount to the stored progress, clamped at the
// achievement's max. Reaching the max unlocks it; an unlocked achievement
// is left alone.
func (s *Service) IncrementProgress(ctx context.Context, userID uuid.UUID, achievementID string, amount int) (*ProgressResult, error) {
	def, ok := Lookup(achievementID)
	if !ok {
		return nil, ErrUnknownAchievement
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	state, err := s.load(ctx, userID, achievementID)
	if err != nil {
		return nil, err
	}
	if state.Unlocked {
		return resultFor(def, state, nil), nil
	}

	if amount >= def.MaxProgress-state.Progress {
		state.Progress = def.MaxProgress
	} else {
		state.Progress += amount
	}
	if state.Progress >= def.MaxProgress {
		note, err := s.unlock(ctx, def, state)
		if err != nil {
			return nil, err
		}
		return resultFor(def, state, note), nil
	}

	if err := s.store.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("save progress: %w", err)
	}
	return resultFor(def, state, nil), nil
}

// Unlock marks the achievement unlocked. It never re-locks and a second
// call is a no-op that returns a nil notification.
func (s *Service) Unlock(ctx context.Context, userID uuid.UUID, achievementID string) (*ProgressResult, error) {
	def, ok := Lookup(achievementID)
	if !ok {
		return nil, ErrUnknownAchievement
	}

	state, err := s.load(ctx, userID, achievementID)
	if err != nil {
		return nil, err
	}
	if state.Unlocked {
		return resultFor(def, state, nil), nil
	}

	state.Progress = def.MaxProgress
	note, err := s.unlock(ctx, def, state)
	if err != nil {
		return nil, err
	}
	return resultFor(def, state, note), nil
}

// AddXP bumps the stored leaderboard counter. It does not touch derived XP.
func (s *Service) AddXP(ctx context.Context, userID uuid.UUID, amount int) (int, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	total, err := s.store.AddXP(ctx, userID, amount)
	if err != nil {
		return 0, err
	}
	s.publish(ctx, userID, realtime.EventXPUpdated, map[string]int{"xp": total, "added": amount})
	return total, nil
}

func (s *Service) Summary(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	rows, err := s.store.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	bonus, err := s.store.XP(ctx, userID)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("load xp: %w", err)
	}
	return buildSummary(rows, bonus), nil
}

// SyncLocal imports an anonymous profile after sign-in. Remote state wins:
// if the user already has any stored achievement rows, local is ignored.
func (s *Service) SyncLocal(ctx context.Context, userID uuid.UUID, local LocalProfile) (*SyncResult, error) {
	rows, err := s.store.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	if len(rows) > 0 {
		summary, err := s.Summary(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &SyncResult{Imported: false, Summary: *summary}, nil
	}

	now := s.now()
	for _, def := range Catalog {
		progress := local.Progress[def.ID]
		unlocked := local.Unlocked[def.ID]
		if progress <= 0 && !unlocked {
			continue
		}
		state := &UserAchievement{
			UserID:        userID,
			AchievementID: def.ID,
			Progress:      min(max(progress, 0), def.MaxProgress),
		}
		if unlocked || state.Progress >= def.MaxProgress {
			state.Progress = def.MaxProgress
			state.Unlocked = true
			state.UnlockedAt = &now
		}
		if err := s.store.Save(ctx, state); err != nil {
			return nil, fmt.Errorf("import %s: %w", def.ID, err)
		}
	}

	if local.XP > 0 {
		if _, err := s.store.AddXP(ctx, userID, local.XP); err != nil {
			return nil, fmt.Errorf("import xp: %w", err)
		}
	}

	summary, err := s.Summary(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &SyncResult{Imported: true, Summary: *summary}, nil
}

func (s *Service) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.store.Leaderboard(ctx, limit)
}

func (s *Service) load(ctx context.Context, userID uuid.UUID, achievementID string) (*UserAchievement, error) {
	state, err := s.store.Get(ctx, userID, achievementID)
	if err != nil {
		return nil, fmt.Errorf("load achievement: %w", err)
	}
	if state == nil {
		state = &UserAchievement{UserID: userID, AchievementID: achievementID}
	}
	return state, nil
}

func (s *Service) unlock(ctx context.Context, def Achievement, state *UserAchievement) (*Notification, error) {
	now := s.now()
	state.Unlocked = true
	state.UnlockedAt = &now
	if err := s.store.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("save unlock: %w", err)
	}

	note := &Notification{
		AchievementID: def.ID,
		TitleAR:       def.TitleAR,
		TitleEN:       def.TitleEN,
		DescriptionAR: def.DescriptionAR,
		DescriptionEN: def.DescriptionEN,
		Icon:          def.Icon,
		XP:            def.XP,
		UnlockedAt:    now,
	}
	s.publish(ctx, state.UserID, realtime.EventAchievementUnlocked, note)
	slog.Info("achievement unlocked", "user_id", state.UserID.String(), "achievement", def.ID)
	return note, nil
}

func (s *Service) publish(ctx context.Context, userID uuid.UUID, eventType string, payload interface{}) {
	if s.broker == nil {
		return
	}
	if err := s.broker.Publish(ctx, realtime.UserTopic(userID), eventType, payload); err != nil {
		slog.Warn("achievement event publish failed", "user_id", userID.String(), "type", eventType, "error", err)
	}
}

func buildSummary(rows []UserAchievement, bonus int) *Summary {
	summary := &Summary{
		Progress: make(map[string]int, len(rows)),
		Unlocked: make(map[string]bool, len(rows)),
		BonusXP:  bonus,
	}
	for _, r := range rows {
		def, ok := Lookup(r.AchievementID)
		if !ok {
			continue
		}
		summary.Progress[r.AchievementID] = r.Progress
		if r.Unlocked {
			summary.Unlocked[r.AchievementID] = true
			summary.TotalXP += def.XP
		}
	}
	summary.Level = Level(summary.TotalXP)
	summary.NextLevelXP = summary.Level * XPPerLevel
	return summary
}

func resultFor(def Achievement, state *UserAchievement, note *Notification) *ProgressResult {
	return &ProgressResult{
		AchievementID: def.ID,
		Progress:      state.Progress,
		MaxProgress:   def.MaxProgress,
		Unlocked:      state.Unlocked,
		Notification:  note,
	}
}

// Recorder adapts Service to the progress hook other features call.
type Recorder struct {
	svc *Service
}

func NewRecorder(svc *Service) *Recorder {
	return &Recorder{svc: svc}
}

func (r *Recorder) Increment(ctx context.Context, userID uuid.UUID, achievementID string, amount int) error {
	_, err := r.svc.IncrementProgress(ctx, userID, achievementID, amount)
	return err
}

func (r *Recorder) Unlock(ctx context.Context, userID uuid.UUID, achievementID string) error {
	_, err := r.svc.Unlock(ctx, userID, achievementID)
	return err
}
