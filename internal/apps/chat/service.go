package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/btechub/portal-backend/internal/apps"
	"github.com/btechub/portal-backend/internal/apps/achievements"
	"github.com/btechub/portal-backend/internal/dto"
	"github.com/btechub/portal-backend/internal/models"
	"github.com/btechub/portal-backend/internal/realtime"
	"github.com/btechub/portal-backend/internal/services"
	"github.com/google/uuid"
)

const (
	RecentLimit      = 50
	ClearBatchSize   = 500
	DefaultMaxLength = 1000
)

// Outcome is the terminal state of one send attempt.
type Outcome string

const (
	OutcomeSent             Outcome = "sent"
	OutcomeNotAuthenticated Outcome = "blocked_not_authenticated"
	OutcomeTimedOut         Outcome = "blocked_timed_out"
	OutcomeContentViolation Outcome = "blocked_content_violation"
)

var (
	ErrUnknownChannel  = errors.New("unknown channel")
	ErrEmptyMessage    = errors.New("message text is empty")
	ErrMessageTooLong  = errors.New("message text is too long")
	ErrChatDisabled    = errors.New("chat is disabled")
	ErrSendFailed      = errors.New("failed to send message")
	ErrMessageNotFound = errors.New("message not found")
)

// ContentChecker screens message text.
type ContentChecker interface {
	CheckMessageContent(text string) services.ContentVerdict
}

// SettingsReader is the subset of runtime settings chat consults.
type SettingsReader interface {
	Bool(key string, fallback bool) bool
	Int(key string, fallback int) int
}

// Reporter files user reports against messages.
type Reporter interface {
	CreateReport(reporterID uuid.UUID, req *dto.CreateReportRequest) (*models.Report, error)
}

// SendResult is returned for every send attempt that reached a terminal state.
// Message is set only for OutcomeSent; TimeoutUntil for the blocked states.
type SendResult struct {
	Outcome      Outcome    `json:"outcome"`
	Message      *Message   `json:"message,omitempty"`
	TimeoutUntil *time.Time `json:"timeout_until,omitempty"`
}

type Service struct {
	channels *ChannelRegistry
	messages MessageStore
	profiles ProfileStore
	checker  ContentChecker
	settings SettingsReader
	reporter Reporter
	broker   realtime.Broker
	progress apps.Progress

	now func() time.Time
}

type ServiceOptions struct {
	Channels *ChannelRegistry
	Messages MessageStore
	Profiles ProfileStore
	Checker  ContentChecker
	Settings SettingsReader
	Reporter Reporter
	Broker   realtime.Broker
	Progress apps.Progress
}

func NewService(opts ServiceOptions) *Service {
	if opts.Progress == nil {
		opts.Progress = apps.NoProgress{}
	}
	return &Service{
		channels: opts.Channels,
		messages: opts.Messages,
		profiles: opts.Profiles,
		checker:  opts.Checker,
		settings: opts.Settings,
		reporter: opts.Reporter,
		broker:   opts.Broker,
		progress: opts.Progress,
		now:      time.Now,
	}
}

func (s *Service) Channels() *ChannelRegistry { return s.channels }

// Send runs one message through the orchestrator: authentication, then the
// sender's timeout, then the content filter. A violation starts a new timeout
// and the text is discarded.
func (s *Service) Send(ctx context.Context, userID *uuid.UUID, channelID, text string) (*SendResult, error) {
	if userID == nil {
		return &SendResult{Outcome: OutcomeNotAuthenticated}, nil
	}
	if !s.channels.Exists(channelID) {
		return nil, ErrUnknownChannel
	}
	if s.settings != nil && !s.settings.Bool(services.SettingChatEnabled, true) {
		return nil, ErrChatDisabled
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > s.MaxLength() {
		return nil, ErrMessageTooLong
	}

	profile, err := s.profiles.Profile(ctx, *userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return &SendResult{Outcome: OutcomeNotAuthenticated}, nil
		}
		slog.Error("chat profile lookup failed", "user_id", userID.String(), "error", err)
		return nil, ErrSendFailed
	}

	now := s.now()
	if services.IsTimedOut(profile.TimeoutUntil, now) {
		return &SendResult{Outcome: OutcomeTimedOut, TimeoutUntil: profile.TimeoutUntil}, nil
	}

	if verdict := s.checker.CheckMessageContent(text); !verdict.Safe {
		until := services.TimeoutUntil(now)
		if err := s.profiles.SetTimeout(ctx, *userID, until, now); err != nil {
			slog.Error("chat timeout write failed", "user_id", userID.String(), "channel_id", channelID, "error", err)
			return nil, ErrSendFailed
		}
		slog.Warn("chat message blocked",
			"user_id", userID.String(),
			"channel_id", channelID,
			"action", "timeout",
			"term", verdict.Term,
		)
		s.publish(ctx, realtime.UserTopic(*userID), realtime.EventTimeoutUpdated, TimeoutStatus{IsTimedOut: true, TimeoutUntil: &until})
		return &SendResult{Outcome: OutcomeContentViolation, TimeoutUntil: &until}, nil
	}

	msg := &Message{
		ID:                uuid.New(),
		Text:              text,
		AuthorID:          *userID,
		AuthorDisplayName: profile.DisplayName,
		AuthorPhotoURL:    profile.PhotoURL,
		ChannelID:         channelID,
		CreatedAt:         now.UTC(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		slog.Error("chat message write failed", "user_id", userID.String(), "channel_id", channelID, "error", err)
		return nil, ErrSendFailed
	}

	s.publish(ctx, realtime.ChatTopic(channelID), realtime.EventMessageNew, msg)
	s.recordProgress(ctx, *userID)

	return &SendResult{Outcome: OutcomeSent, Message: msg}, nil
}

// MaxLength is the configured message length limit in characters.
func (s *Service) MaxLength() int {
	if s.settings == nil {
		return DefaultMaxLength
	}
	if n := s.settings.Int(services.SettingMaxMessageLength, DefaultMaxLength); n > 0 {
		return n
	}
	return DefaultMaxLength
}

// Recent returns the latest messages of a channel in ascending order.
func (s *Service) Recent(ctx context.Context, channelID string) ([]Message, error) {
	if !s.channels.Exists(channelID) {
		return nil, ErrUnknownChannel
	}
	msgs, err := s.messages.Recent(ctx, channelID, RecentLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	if msgs == nil {
		msgs = []Message{}
	}
	return msgs, nil
}

func (s *Service) TimeoutStatus(ctx context.Context, userID uuid.UUID) (*TimeoutStatus, error) {
	profile, err := s.profiles.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	status := StatusAt(profile.TimeoutUntil, s.now())
	return &status, nil
}

// StatusAt evaluates a stored timeout against now. A past or missing value
// means the user is free to send.
func StatusAt(until *time.Time, now time.Time) TimeoutStatus {
	if !services.IsTimedOut(until, now) {
		return TimeoutStatus{}
	}
	return TimeoutStatus{IsTimedOut: true, TimeoutUntil: until}
}

// ClearMessages deletes one batch of messages. Callers repeat until HasMore
// is false.
func (s *Service) ClearMessages(ctx context.Context, channelID string) (*ClearResult, error) {
	if channelID != "" && !s.channels.Exists(channelID) {
		return nil, ErrUnknownChannel
	}
	deleted, err := s.messages.DeleteBatch(ctx, channelID, ClearBatchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to delete messages: %w", err)
	}
	remaining, err := s.messages.Count(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to count messages: %w", err)
	}

	if deleted > 0 {
		targets := []string{channelID}
		if channelID == "" {
			targets = targets[:0]
			for _, def := range s.channels.All() {
				targets = append(targets, def.ID)
			}
		}
		for _, id := range targets {
			s.publish(ctx, realtime.ChatTopic(id), realtime.EventMessagesCleared, map[string]interface{}{"channel_id": id, "deleted": deleted})
		}
	}

	slog.Info("chat messages cleared", "channel_id", channelID, "action", "clear_messages", "deleted", deleted, "remaining", remaining)
	return &ClearResult{Deleted: deleted, Remaining: remaining, HasMore: remaining > 0}, nil
}

func (s *Service) ResetTimeout(ctx context.Context, userID uuid.UUID) error {
	found, err := s.profiles.ClearTimeout(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to clear timeout: %w", err)
	}
	if !found {
		return ErrProfileNotFound
	}
	s.publish(ctx, realtime.UserTopic(userID), realtime.EventTimeoutUpdated, TimeoutStatus{})
	return nil
}

func (s *Service) ResetAllTimeouts(ctx context.Context) (int, error) {
	ids, err := s.profiles.ClearAllTimeouts(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to clear timeouts: %w", err)
	}
	for _, id := range ids {
		s.publish(ctx, realtime.UserTopic(id), realtime.EventTimeoutUpdated, TimeoutStatus{})
	}
	return len(ids), nil
}

var ErrNoBroker = errors.New("live updates are not configured")

// Subscribe opens a live subscription on topic. The caller must Close it.
func (s *Service) Subscribe(ctx context.Context, topic string) (*realtime.Subscription, error) {
	if s.broker == nil {
		return nil, ErrNoBroker
	}
	return s.broker.Subscribe(ctx, topic)
}

// ReportMessage files a report against a stored message in channelID.
func (s *Service) ReportMessage(ctx context.Context, reporterID uuid.UUID, channelID string, messageID uuid.UUID, reason string) (*models.Report, error) {
	msg, err := s.messages.Get(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.ChannelID != channelID {
		return nil, ErrMessageNotFound
	}
	if msg.AuthorID == reporterID {
		return nil, services.ErrSelfReport
	}
	return s.reporter.CreateReport(reporterID, &dto.CreateReportRequest{
		ContentType: "message",
		ContentID:   msg.ID.String(),
		ChannelID:   msg.ChannelID,
		Reason:      reason,
	})
}

func (s *Service) recordProgress(ctx context.Context, userID uuid.UUID) {
	for _, id := range []string{achievements.FirstMessage, achievements.Chatterbox} {
		if err := s.progress.Increment(ctx, userID, id, 1); err != nil {
			slog.Error("chat achievement progress failed", "user_id", userID.String(), "achievement", id, "error", err)
		}
	}
}

func (s *Service) publish(ctx context.Context, topic, eventType string, payload interface{}) {
	if s.broker == nil {
		return
	}
	if err := s.broker.Publish(ctx, topic, eventType, payload); err != nil {
		slog.Error("realtime publish failed", "topic", topic, "event", eventType, "error", err)
	}
}
