package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/btechub/portal-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrSettingNotFound = errors.New("setting not found")
	ErrInvalidSetting  = errors.New("invalid setting")
)

const (
	SettingChatEnabled      = "chat_enabled"
	SettingAIToolsEnabled   = "ai_tools_enabled"
	SettingMaxMessageLength = "max_message_length"
	SettingMaintenanceMode  = "maintenance_mode"
)

var defaultSettings = []models.Setting{
	{Key: SettingChatEnabled, Value: "true", Type: "bool"},
	{Key: SettingAIToolsEnabled, Value: "true", Type: "bool"},
	{Key: SettingMaxMessageLength, Value: "1000", Type: "int"},
	{Key: SettingMaintenanceMode, Value: "false", Type: "bool"},
	{Key: "default_language", Value: "ar", Type: "string"},
	{Key: "supported_languages", Value: "ar,en", Type: "string"},
	{Key: "announcement_ar", Value: "", Type: "string"},
	{Key: "announcement_en", Value: "", Type: "string"},
}

type SettingStore interface {
	All() ([]models.Setting, error)
	Upsert(setting *models.Setting) error
	Delete(key string) (bool, error)
	CreateIfMissing(setting *models.Setting) error
}

// SettingsService serves portal-wide flags. Reads go through a short-lived
// cache so hot paths (every chat send) do not hit the database.
type SettingsService struct {
	store SettingStore
	ttl   time.Duration

	mu       sync.RWMutex
	cache    map[string]models.Setting
	loadedAt time.Time
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return NewSettingsServiceWithStore(&gormSettingStore{db: db}, 30*time.Second)
}

func NewSettingsServiceWithStore(store SettingStore, ttl time.Duration) *SettingsService {
	return &SettingsService{store: store, ttl: ttl}
}

// SeedDefaults inserts default keys that do not exist yet. Existing values are kept.
func (s *SettingsService) SeedDefaults() error {
	for i := range defaultSettings {
		setting := defaultSettings[i]
		if err := s.store.CreateIfMissing(&setting); err != nil {
			return fmt.Errorf("seed %s: %w", setting.Key, err)
		}
	}
	s.invalidate()
	return nil
}

// Values returns every setting converted to its declared type.
func (s *SettingsService) Values() (map[string]interface{}, error) {
	settings, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	result := make(map[string]interface{}, len(settings))
	for key, setting := range settings {
		value, err := convertSetting(setting)
		if err != nil {
			slog.Warn("skipping malformed setting", "key", key, "error", err)
			continue
		}
		result[key] = value
	}
	return result, nil
}

func (s *SettingsService) Set(key, value, typ string) (*models.Setting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("%w: key is required", ErrInvalidSetting)
	}
	if typ == "" {
		typ = "string"
	}
	setting := models.Setting{Key: key, Value: value, Type: typ}
	if _, err := convertSetting(setting); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSetting, err)
	}
	if err := s.store.Upsert(&setting); err != nil {
		return nil, fmt.Errorf("failed to save setting: %w", err)
	}
	s.invalidate()
	return &setting, nil
}

func (s *SettingsService) Delete(key string) error {
	found, err := s.store.Delete(key)
	if err != nil {
		return fmt.Errorf("failed to delete setting: %w", err)
	}
	if !found {
		return ErrSettingNotFound
	}
	s.invalidate()
	return nil
}

// Bool reads a bool setting, falling back when missing or unreadable.
func (s *SettingsService) Bool(key string, fallback bool) bool {
	settings, err := s.snapshot()
	if err != nil {
		return fallback
	}
	setting, ok := settings[key]
	if !ok {
		return fallback
	}
	v, err := strconv.ParseBool(setting.Value)
	if err != nil {
		return fallback
	}
	return v
}

// Int reads an int setting, falling back when missing or unreadable.
func (s *SettingsService) Int(key string, fallback int) int {
	settings, err := s.snapshot()
	if err != nil {
		return fallback
	}
	setting, ok := settings[key]
	if !ok {
		return fallback
	}
	v, err := strconv.Atoi(setting.Value)
	if err != nil {
		return fallback
	}
	return v
}

func (s *SettingsService) snapshot() (map[string]models.Setting, error) {
	s.mu.RLock()
	if s.cache != nil && time.Since(s.loadedAt) < s.ttl {
		cache := s.cache
		s.mu.RUnlock()
		return cache, nil
	}
	s.mu.RUnlock()

	rows, err := s.store.All()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	cache := make(map[string]models.Setting, len(rows))
	for _, r := range rows {
		cache[r.Key] = r
	}

	s.mu.Lock()
	s.cache = cache
	s.loadedAt = time.Now()
	s.mu.Unlock()
	return cache, nil
}

func (s *SettingsService) invalidate() {
	s.mu.Lock()
	s.cache = nil
	s.mu.Unlock()
}

func convertSetting(setting models.Setting) (interface{}, error) {
	switch setting.Type {
	case "bool":
		return strconv.ParseBool(setting.Value)
	case "int":
		return strconv.Atoi(setting.Value)
	case "json":
		var value interface{}
		if err := json.Unmarshal([]byte(setting.Value), &value); err != nil {
			return nil, err
		}
		return value, nil
	case "string":
		return setting.Value, nil
	default:
		return nil, fmt.Errorf("unknown type %q", setting.Type)
	}
}

type gormSettingStore struct {
	db *gorm.DB
}

func (s *gormSettingStore) All() ([]models.Setting, error) {
	var settings []models.Setting
	err := s.db.Find(&settings).Error
	return settings, err
}

func (s *gormSettingStore) Upsert(setting *models.Setting) error {
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "type", "updated_at"}),
	}).Create(setting).Error
}

func (s *gormSettingStore) Delete(key string) (bool, error) {
	result := s.db.Where("key = ?", key).Delete(&models.Setting{})
	return result.RowsAffected > 0, result.Error
}

func (s *gormSettingStore) CreateIfMissing(setting *models.Setting) error {
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(setting).Error
}
