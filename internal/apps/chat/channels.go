package chat

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/btechub/portal-backend/internal/i18n"
)

//go:embed channels.json
var defaultChannels []byte

// ChannelDefinition is one entry of the static channel list.
type ChannelDefinition struct {
	ID            string `json:"id"`
	DisplayName   string `json:"display_name"`
	DisplayNameEN string `json:"display_name_en"`
	Icon          string `json:"icon"`
	Description   string `json:"description"`
	Category      string `json:"category"`
}

// Name returns the display name in lang, falling back to Arabic.
func (d *ChannelDefinition) Name(lang i18n.Lang) string {
	if lang == i18n.English && d.DisplayNameEN != "" {
		return d.DisplayNameEN
	}
	return d.DisplayName
}

type channelsFile struct {
	Channels []ChannelDefinition `json:"channels"`
}

// ChannelRegistry holds the channel list in file order.
type ChannelRegistry struct {
	mu    sync.RWMutex
	order []string
	defs  map[string]*ChannelDefinition
}

func NewChannelRegistry() *ChannelRegistry {
	return &ChannelRegistry{defs: make(map[string]*ChannelDefinition)}
}

// LoadChannels reads the channel list from path, or the built-in list when
// path is empty.
func LoadChannels(path string) (*ChannelRegistry, error) {
	if path == "" {
		return ParseChannels(defaultChannels)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read channels config: %w", err)
	}
	return ParseChannels(data)
}

func ParseChannels(data []byte) (*ChannelRegistry, error) {
	var file channelsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse channels config: %w", err)
	}
	if len(file.Channels) == 0 {
		return nil, errors.New("channels config has no channels")
	}

	registry := NewChannelRegistry()
	for i := range file.Channels {
		def := &file.Channels[i]
		def.ID = strings.TrimSpace(def.ID)
		if def.ID == "" {
			return nil, fmt.Errorf("channel %d has no id", i)
		}
		if registry.Exists(def.ID) {
			return nil, fmt.Errorf("duplicate channel id %q", def.ID)
		}
		registry.Register(def)
	}
	return registry, nil
}

func (r *ChannelRegistry) Register(def *ChannelDefinition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.defs[def.ID]; !ok {
		r.order = append(r.order, def.ID)
	}
	r.defs[def.ID] = def
}

func (r *ChannelRegistry) Get(id string) *ChannelDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defs[id]
}

func (r *ChannelRegistry) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.defs[id]
	return ok
}

func (r *ChannelRegistry) All() []*ChannelDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*ChannelDefinition, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.defs[id])
	}
	return result
}
