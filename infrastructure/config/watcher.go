package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	domaincfg "retro-backend/domain/config"
)

// DynamicConfig represents runtime-changeable configuration loaded from a
// JSON file and reloaded on change without a restart.
type DynamicConfig struct {
	Limits    Limits          `json:"limits"`
	WebSocket WebSocketConfig `json:"websocket"`
	Metadata  ConfigMetadata  `json:"metadata"`
}

// Limits holds tunable domain limits
type Limits struct {
	MaxNoteTextLength    int `json:"maxNoteTextLength"`
	MaxDisplayNameLength int `json:"maxDisplayNameLength"`
	SubscriberBuffer     int `json:"subscriberBuffer"`
}

// WebSocketConfig holds WebSocket tuning
type WebSocketConfig struct {
	HeartbeatInterval int `json:"heartbeatInterval"` // seconds
	WriteTimeout      int `json:"writeTimeout"`      // seconds
	MaxMessageSize    int `json:"maxMessageSize"`    // bytes
}

// ConfigMetadata holds metadata about the configuration
type ConfigMetadata struct {
	Version   string    `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DefaultDynamicConfig returns the built-in defaults, used when no config
// file is configured.
func DefaultDynamicConfig() *DynamicConfig {
	base := domaincfg.DefaultDomainConfig()
	return &DynamicConfig{
		Limits: Limits{
			MaxNoteTextLength:    base.MaxNoteTextLength,
			MaxDisplayNameLength: base.MaxDisplayNameLength,
			SubscriberBuffer:     32,
		},
		WebSocket: WebSocketConfig{
			HeartbeatInterval: 54,
			WriteTimeout:      10,
			MaxMessageSize:    4096,
		},
		Metadata: ConfigMetadata{Version: "builtin"},
	}
}

// Watcher watches the dynamic configuration file for changes
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	current  *DynamicConfig
	mu       sync.RWMutex
	onChange []func(*DynamicConfig)
	logger   *zap.Logger
	stopCh   chan struct{}
}

// NewWatcher creates a watcher over the given config file. The file must
// exist and parse at startup.
func NewWatcher(configPath string, logger *zap.Logger) (*Watcher, error) {
	cfg, err := loadConfigFromFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load initial config: %w", err)
	}
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid initial config: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fw.Add(configPath); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch config file: %w", err)
	}
	// Watch the directory too, for atomic saves done via rename.
	if err := fw.Add(filepath.Dir(configPath)); err != nil {
		logger.Warn("failed to watch config directory", zap.Error(err))
	}

	return &Watcher{
		path:    configPath,
		watcher: fw,
		current: cfg,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}, nil
}

// Start begins watching for configuration changes
func (w *Watcher) Start() {
	go w.watchLoop()
	w.logger.Info("configuration watcher started", zap.String("path", w.path))
}

// Stop stops watching for configuration changes
func (w *Watcher) Stop() {
	close(w.stopCh)
	w.watcher.Close()
}

func (w *Watcher) watchLoop() {
	var debounce *time.Timer
	const debounceDuration = 100 * time.Millisecond

	for {
		select {
		case <-w.stopCh:
			if debounce != nil {
				debounce.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(debounceDuration, w.reload)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	newCfg, err := loadConfigFromFile(w.path)
	if err != nil {
		w.logger.Error("failed to reload configuration", zap.Error(err))
		return
	}
	if err := validateConfig(newCfg); err != nil {
		w.logger.Error("invalid configuration, keeping current", zap.Error(err))
		return
	}

	w.mu.Lock()
	w.current = newCfg
	handlers := w.onChange
	w.mu.Unlock()

	for _, handler := range handlers {
		go handler(newCfg)
	}

	w.logger.Info("configuration reloaded",
		zap.String("version", newCfg.Metadata.Version),
		zap.Int("max_note_text_length", newCfg.Limits.MaxNoteTextLength))
}

func validateConfig(cfg *DynamicConfig) error {
	if cfg.Limits.MaxNoteTextLength <= 0 {
		return fmt.Errorf("maxNoteTextLength must be positive")
	}
	if cfg.Limits.MaxDisplayNameLength <= 0 {
		return fmt.Errorf("maxDisplayNameLength must be positive")
	}
	if cfg.Limits.SubscriberBuffer <= 0 {
		return fmt.Errorf("subscriberBuffer must be positive")
	}
	if cfg.WebSocket.HeartbeatInterval <= 0 {
		return fmt.Errorf("heartbeatInterval must be positive")
	}
	return nil
}

// OnChange registers a callback for configuration changes
func (w *Watcher) OnChange(handler func(*DynamicConfig)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, handler)
}

// GetCurrent returns the current configuration
func (w *Watcher) GetCurrent() *DynamicConfig {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// DomainConfig maps the current limits into the domain's config type.
func (w *Watcher) DomainConfig() *domaincfg.DomainConfig {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return &domaincfg.DomainConfig{
		MaxNoteTextLength:    w.current.Limits.MaxNoteTextLength,
		MaxDisplayNameLength: w.current.Limits.MaxDisplayNameLength,
		JoinCodeLength:       domaincfg.DefaultDomainConfig().JoinCodeLength,
	}
}

func loadConfigFromFile(path string) (*DynamicConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultDynamicConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if config.Metadata.Version == "" {
		config.Metadata.Version = "1.0.0"
	}
	config.Metadata.UpdatedAt = time.Now()
	return config, nil
}
