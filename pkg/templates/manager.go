// Package templates manages the cached exclusion templates used to derive
// skip rules: loading them from disk, refreshing them from the remote
// template API when stale, and persisting the refreshed store atomically.
package templates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"flatten/pkg/filelock"
)

// ConfigVersion is the schema version of the persisted config record.
// Records with a different version are discarded in favor of defaults.
const ConfigVersion = 1

// DefaultCacheDuration is the template cache TTL in seconds (24 hours).
const DefaultCacheDuration = 86400

// ErrNoTemplates indicates that no usable template cache exists: the store
// is empty and a refresh could not obtain any templates.
var ErrNoTemplates = errors.New("no usable exclusion templates")

// Template is one cached exclusion template. Immutable once stored; a
// successful refresh replaces the whole store.
type Template struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Contents string `json:"contents"`
}

// Config is the persisted cache bookkeeping record. LastUpdated advances
// only on successful refresh.
type Config struct {
	Version       int   `json:"version"`
	LastUpdated   int64 `json:"last_updated"`
	CacheDuration int64 `json:"cache_duration"`
}

// DefaultConfig returns the compiled-in config used when no valid record
// exists on disk.
func DefaultConfig() Config {
	return Config{
		Version:       ConfigVersion,
		CacheDuration: DefaultCacheDuration,
	}
}

// Manager owns the persisted template store and its staleness clock.
type Manager struct {
	dir           string
	configPath    string
	templatesPath string
	client        *Client
	clock         func() time.Time
	logger        *zap.Logger

	config Config
	store  map[string]Template
}

// DefaultDir returns the per-user cache directory (~/.flatten).
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".flatten"), nil
}

// NewManager creates a manager rooted at dir. The directory is created on
// Load if missing.
func NewManager(dir string, client *Client, logger *zap.Logger) *Manager {
	return &Manager{
		dir:           dir,
		configPath:    filepath.Join(dir, "config.json"),
		templatesPath: filepath.Join(dir, "templates.json"),
		client:        client,
		clock:         time.Now,
		logger:        logger,
		config:        DefaultConfig(),
		store:         make(map[string]Template),
	}
}

// Load reads the persisted config and template store. Corrupt or missing
// records degrade to defaults and an empty store; they never fail startup.
// Only an unusable cache directory is an error.
func (m *Manager) Load() error {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory %s: %w", m.dir, err)
	}
	m.loadConfig()
	m.loadTemplates()
	return nil
}

func (m *Manager) loadConfig() {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			m.logger.Warn("Failed to read cache config, using defaults",
				zap.String("path", m.configPath), zap.Error(err))
		}
		m.config = DefaultConfig()
		return
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		// Corrupt on-disk state: recover with defaults rather than abort.
		m.logger.Warn("Cache config is corrupt, using defaults",
			zap.String("path", m.configPath), zap.Error(err))
		m.config = DefaultConfig()
		return
	}
	if cfg.Version != ConfigVersion {
		m.logger.Warn("Cache config has unsupported schema version, using defaults",
			zap.Int("version", cfg.Version), zap.Int("supported", ConfigVersion))
		m.config = DefaultConfig()
		return
	}
	if cfg.CacheDuration <= 0 {
		cfg.CacheDuration = DefaultCacheDuration
	}
	m.config = cfg
}

func (m *Manager) loadTemplates() {
	data, err := os.ReadFile(m.templatesPath)
	if err != nil {
		if !os.IsNotExist(err) {
			m.logger.Warn("Failed to read template store, starting empty",
				zap.String("path", m.templatesPath), zap.Error(err))
		}
		m.store = make(map[string]Template)
		return
	}

	var store map[string]Template
	if err := json.Unmarshal(data, &store); err != nil {
		m.logger.Warn("Template store is corrupt, starting empty",
			zap.String("path", m.templatesPath), zap.Error(err))
		m.store = make(map[string]Template)
		return
	}
	m.store = store
}

// IsStale reports whether the store needs a refresh. An empty store is
// always stale, independent of the TTL math.
func (m *Manager) IsStale(now time.Time) bool {
	if len(m.store) == 0 {
		return true
	}
	return now.Unix()-m.config.LastUpdated > m.config.CacheDuration
}

// Refresh performs one logical fetch of the full template set, replaces the
// store wholesale, and persists templates then config. The write order
// guarantees a crash can never leave a fresh timestamp next to old
// templates.
func (m *Manager) Refresh(ctx context.Context) error {
	fetched, err := m.client.FetchAll(ctx, m.logger)
	if err != nil {
		return err
	}

	m.store = fetched
	m.config.LastUpdated = m.clock().Unix()
	m.config.Version = ConfigVersion

	if err := m.persist(); err != nil {
		return err
	}

	m.logger.Info("Exclusion templates updated", zap.Int("count", len(m.store)))
	return nil
}

func (m *Manager) persist() error {
	lock := filelock.New(filepath.Join(m.dir, "cache.lock"))
	if err := lock.Lock(); err != nil {
		return err
	}
	defer lock.Unlock()

	storeData, err := json.MarshalIndent(m.store, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize template store: %w", err)
	}
	configData, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize cache config: %w", err)
	}

	// Templates before config: an interrupted write leaves a stale
	// timestamp with fresh templates, which only costs an extra refresh.
	if err := filelock.AtomicWrite(m.templatesPath, storeData); err != nil {
		return err
	}
	return filelock.AtomicWrite(m.configPath, configData)
}

// UpdateIfNeeded refreshes the store when it is stale (or force is set).
// A refresh failure with a non-empty store is soft: the run proceeds on
// cached templates. With an empty store it returns ErrNoTemplates.
func (m *Manager) UpdateIfNeeded(ctx context.Context, force bool) error {
	if force {
		m.config.LastUpdated = 0
	}
	if !m.IsStale(m.clock()) {
		return nil
	}

	if err := m.Refresh(ctx); err != nil {
		if len(m.store) > 0 {
			m.logger.Warn("Template refresh failed, using cached templates", zap.Error(err))
			return nil
		}
		return fmt.Errorf("%w: %v", ErrNoTemplates, err)
	}
	return nil
}

// Get returns the template for key, if cached.
func (m *Manager) Get(key string) (Template, bool) {
	tmpl, ok := m.store[key]
	return tmpl, ok
}

// Keys returns all cached template keys, sorted.
func (m *Manager) Keys() []string {
	keys := make([]string, 0, len(m.store))
	for key := range m.store {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Count returns the number of cached templates.
func (m *Manager) Count() int {
	return len(m.store)
}
