package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DETECTOR_TIMEOUT", "")
	t.Setenv("HF_IMAGE_MODELS", "")
	t.Setenv("CHAT_RATE_PER_SEC", "")

	cfg := Load()

	assert.Equal(t, 15*time.Second, cfg.DetectorTimeout)
	assert.Equal(t, 2, cfg.ChatRatePerSec)
	assert.Len(t, cfg.HFImageModels, 3)
	assert.Equal(t, "black-forest-labs/FLUX.1-schnell", cfg.HFImageModels[0])
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HF_IMAGE_MODELS", " a/one , ,b/two")
	t.Setenv("AI_TIMEOUT", "5s")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := Load()

	assert.Equal(t, []string{"a/one", "b/two"}, cfg.HFImageModels)
	assert.Equal(t, 5*time.Second, cfg.AITimeout)
	assert.Equal(t, 0, cfg.RedisDB)
}

func TestConfig_MailConfigured(t *testing.T) {
	assert.False(t, (&Config{}).MailConfigured())
	assert.True(t, (&Config{SMTPHost: "smtp.example.com"}).MailConfigured())
	assert.True(t, (&Config{SendGridAPIKey: "SG.x"}).MailConfigured())
}

func TestConfig_DSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "n", DBPort: "5432", DBSSLMode: "disable"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5432 sslmode=disable TimeZone=UTC", cfg.DSN())
}
