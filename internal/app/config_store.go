package app

import (
	"fmt"
	"sync"

	"github.com/vscraper/vscraper-go/internal/domain"
	"go.uber.org/zap"
)

// ConfigStore owns the persisted configuration record. Reads never
// fail: a read failure at construction falls back to defaults and is
// logged, not raised. Writes go through Update, which persists the full
// record atomically; last writer wins.
type ConfigStore struct {
	mu     sync.RWMutex
	config *domain.Config
	path   string
	logger *zap.Logger
}

// NewConfigStore loads the record from configPath, or defaults when the
// file is absent or unreadable.
func NewConfigStore(configPath string, logger *zap.Logger) *ConfigStore {
	config, err := LoadConfig(configPath)
	if err != nil {
		logger.Warn("Failed to load configuration, using defaults",
			zap.String("path", configPath),
			zap.Error(err))
		config = domain.DefaultConfig()
	}

	return &ConfigStore{
		config: config,
		path:   configPath,
		logger: logger,
	}
}

// Get returns a snapshot of the current record
func (s *ConfigStore) Get() domain.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.config
}

// Update replaces the record and persists it. The in-memory record is
// updated even when persistence fails, so the running core keeps the
// caller's preference; the persistence failure is returned wrapped in
// ErrPersistence.
func (s *ConfigStore) Update(config domain.Config) error {
	s.mu.Lock()
	s.config = &config
	path := s.path
	s.mu.Unlock()

	if path == "" {
		return nil
	}

	if err := SaveConfig(&config, path); err != nil {
		s.logger.Warn("Failed to persist configuration",
			zap.String("path", path),
			zap.Error(err))
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	return nil
}

// SetSkipHomepage updates only the home-page preference. Kept for
// callers that carry a bare boolean instead of a full record.
func (s *ConfigStore) SetSkipHomepage(skip bool) error {
	config := s.Get()
	config.Preferences.SkipHomepage = skip
	return s.Update(config)
}
