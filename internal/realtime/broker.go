// Package realtime fans out live updates (new chat messages, timeout and
// achievement changes) to websocket subscribers.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	EventMessageNew          = "message.new"
	EventMessagesCleared     = "messages.cleared"
	EventTimeoutUpdated      = "timeout.updated"
	EventAchievementUnlocked = "achievement.unlocked"
	EventXPUpdated           = "xp.updated"
)

// subscriber channels are buffered; a consumer that falls this far behind
// starts losing events instead of stalling publishers.
const subBuffer = 64

type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
	At      time.Time       `json:"at"`
}

// Decode unmarshals the payload into v.
func (e Event) Decode(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

type Broker interface {
	Publish(ctx context.Context, topic, eventType string, payload interface{}) error
	// Subscribe returns a live subscription. It is released by Close or by
	// cancelling ctx, whichever comes first.
	Subscribe(ctx context.Context, topic string) (*Subscription, error)
	Ping(ctx context.Context) error
	Name() string
	Close() error
}

type Subscription struct {
	C <-chan Event

	once    sync.Once
	release func()
}

// Close releases the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(s.release)
}

func ChatTopic(channelID string) string {
	return "chat:" + channelID
}

func UserTopic(userID uuid.UUID) string {
	return "user:" + userID.String()
}

func newEvent(eventType string, payload interface{}) (Event, error) {
	ev := Event{Type: eventType, At: time.Now().UTC()}
	if payload == nil {
		return ev, nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	ev.Payload = b
	return ev, nil
}
