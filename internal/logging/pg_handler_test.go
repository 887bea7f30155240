package logging

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/btechub/portal-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySink struct {
	mu      sync.Mutex
	batches [][]models.SystemLog
}

func (s *memorySink) WriteLogs(batch []models.SystemLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, batch)
	return nil
}

func (s *memorySink) all() []models.SystemLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.SystemLog
	for _, b := range s.batches {
		out = append(out, b...)
	}
	return out
}

func TestPGHandler_OnlyErrors(t *testing.T) {
	h := newPGHandler(&memorySink{}, time.Hour)
	defer h.Stop()

	assert.False(t, h.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}

func TestPGHandler_MapsColumnsAndFlushesOnStop(t *testing.T) {
	sink := &memorySink{}
	h := newPGHandler(sink, time.Hour)

	logger := slog.New(h).With("channel_id", "general")
	logger.Error("message write failed",
		"user_id", "u-1",
		"action", "chat_send",
		"error", errors.New("boom"),
		"attempt", 1,
	)
	h.Stop()

	require.Eventually(t, func() bool { return len(sink.all()) == 1 }, time.Second, 10*time.Millisecond)
	entry := sink.all()[0]
	assert.Equal(t, "general", entry.ChannelID)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, "u-1", *entry.UserID)
	assert.Equal(t, "chat_send", entry.Action)
	assert.Equal(t, "boom", entry.Error)
	assert.JSONEq(t, `{"attempt":1}`, string(entry.Extra))
}

func TestPGHandler_StopIsIdempotent(t *testing.T) {
	h := newPGHandler(&memorySink{}, time.Hour)
	h.Stop()
	assert.NotPanics(t, h.Stop)
}

func TestMultiHandler_RespectsLevels(t *testing.T) {
	sink := &memorySink{}
	pg := newPGHandler(sink, time.Hour)
	m := NewMultiHandler(slog.NewTextHandler(discard{}, nil), pg)

	logger := slog.New(m)
	logger.Info("ignored by pg")
	logger.Error("kept")
	pg.Stop()

	require.Eventually(t, func() bool { return len(sink.all()) == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, "kept", sink.all()[0].Message)
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
