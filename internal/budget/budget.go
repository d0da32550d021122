// Package budget stores monthly spending limits in a JSON file and
// evaluates spending against them.
package budget

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DefaultWarnRatio is the warning threshold applied when a limit does not
// set its own.
const DefaultWarnRatio = 0.8

// Limit is one category's monthly budget.
type Limit struct {
	Category  string
	Limit     float64
	WarnRatio float64
}

// WarnAmount is the spend level at which the limit starts warning.
func (l Limit) WarnAmount() float64 {
	return l.Limit * l.WarnRatio
}

type limitPayload struct {
	Limit  float64  `json:"limit"`
	WarnAt *float64 `json:"warn_at,omitempty"`
}

type fileConfig struct {
	Monthly  map[string]limitPayload `json:"monthly"`
	Defaults struct {
		WarnAt float64 `json:"warn_at"`
	} `json:"defaults"`
}

func defaultConfig() fileConfig {
	warn := func(v float64) *float64 { return &v }
	cfg := fileConfig{
		Monthly: map[string]limitPayload{
			"food":          {Limit: 10000, WarnAt: warn(0.8)},
			"transport":     {Limit: 4000, WarnAt: warn(0.75)},
			"entertainment": {Limit: 3000, WarnAt: warn(0.8)},
			"utilities":     {Limit: 5000, WarnAt: warn(0.8)},
			"uncategorized": {Limit: 2000, WarnAt: warn(0.9)},
		},
	}
	cfg.Defaults.WarnAt = DefaultWarnRatio
	return cfg
}

// FileStore reads and writes budget limits in a JSON file. A missing file
// is created with sensible defaults on first access; a corrupt file falls
// back to the defaults rather than failing the caller.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) load() fileConfig {
	if err := s.ensureFile(); err != nil {
		return defaultConfig()
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return defaultConfig()
	}
	var cfg fileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return defaultConfig()
	}
	if cfg.Defaults.WarnAt <= 0 {
		cfg.Defaults.WarnAt = DefaultWarnRatio
	}
	if cfg.Monthly == nil {
		cfg.Monthly = make(map[string]limitPayload)
	}
	return cfg
}

func (s *FileStore) ensureFile() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	}
	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return s.write(defaultConfig())
}

// write replaces the file via a temp file and rename, so a crash
// mid-write never leaves a truncated config behind.
func (s *FileStore) write(cfg fileConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal budget config: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write budget config: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace budget config: %w", err)
	}
	return nil
}

// Limits returns every configured limit keyed by lowercase category.
// Limits with a non-positive amount are skipped; warn ratios are clamped
// to [0,1].
func (s *FileStore) Limits() map[string]Limit {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.load()
	limits := make(map[string]Limit, len(cfg.Monthly))
	for category, payload := range cfg.Monthly {
		if payload.Limit <= 0 {
			continue
		}
		warnRatio := cfg.Defaults.WarnAt
		if payload.WarnAt != nil {
			warnRatio = *payload.WarnAt
		}
		warnRatio = clamp01(warnRatio)
		key := strings.ToLower(category)
		limits[key] = Limit{Category: key, Limit: payload.Limit, WarnRatio: warnRatio}
	}
	return limits
}

// Set stores a limit for a category. A nil warnRatio keeps the file's
// default threshold.
func (s *FileStore) Set(category string, limit float64, warnRatio *float64) (Limit, error) {
	if limit <= 0 {
		return Limit{}, fmt.Errorf("budget limit must be positive, got %v", limit)
	}
	key := strings.ToLower(strings.TrimSpace(category))
	if key == "" {
		return Limit{}, fmt.Errorf("budget category cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.load()
	payload := limitPayload{Limit: limit}
	effectiveWarn := cfg.Defaults.WarnAt
	if warnRatio != nil {
		w := clamp01(*warnRatio)
		payload.WarnAt = &w
		effectiveWarn = w
	}
	cfg.Monthly[key] = payload
	if err := s.write(cfg); err != nil {
		return Limit{}, fmt.Errorf("write budget config: %w", err)
	}
	return Limit{Category: key, Limit: limit, WarnRatio: effectiveWarn}, nil
}

// Remove deletes a category's limit. It reports whether one existed.
func (s *FileStore) Remove(category string) (bool, error) {
	key := strings.ToLower(strings.TrimSpace(category))

	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.load()
	if _, ok := cfg.Monthly[key]; !ok {
		return false, nil
	}
	delete(cfg.Monthly, key)
	if err := s.write(cfg); err != nil {
		return false, fmt.Errorf("write budget config: %w", err)
	}
	return true, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
