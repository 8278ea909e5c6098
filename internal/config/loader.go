package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

const (
	serviceFile    = "service.yaml"
	cloudinaryFile = "cloudinary.yaml"
)

var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:default} patterns in a string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		submatch := envVarPattern.FindStringSubmatch(match)
		if len(submatch) < 2 {
			return match
		}
		varName := submatch[1]
		defaultVal := ""
		if len(submatch) >= 3 {
			defaultVal = submatch[2]
		}
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return defaultVal
	})
}

// LoadFile reads a YAML file, expands env vars, and unmarshals into dest.
func LoadFile(path string, dest interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	expanded := expandEnvVars(string(data))
	if err := yaml.Unmarshal([]byte(expanded), dest); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// LoadCloudinary builds the provider configuration from defaults, the
// optional YAML file at path, and CLOUDINARY_* environment variables, in
// that order of precedence.
func LoadCloudinary(path string) (*CloudinaryConfig, error) {
	cfg := DefaultCloudinaryConfig()
	if path != "" {
		if err := LoadFile(path, cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Loader manages configuration loading and hot-reload via fsnotify.
type Loader struct {
	configDir  string
	mu         sync.RWMutex
	cfg        *Config
	cloudinary *CloudinaryConfig
	watchers   []func()
	logger     *slog.Logger
}

func NewLoader(configDir string, logger *slog.Logger) *Loader {
	return &Loader{
		configDir: configDir,
		logger:    logger,
	}
}

// Load reads service.yaml (required) and cloudinary.yaml (optional) and
// swaps both snapshots in at once.
func (l *Loader) Load() error {
	cfg := DefaultConfig()
	if err := LoadFile(filepath.Join(l.configDir, serviceFile), cfg); err != nil {
		return fmt.Errorf("load service config: %w", err)
	}

	cloudinary, err := LoadCloudinary(filepath.Join(l.configDir, cloudinaryFile))
	if err != nil {
		return fmt.Errorf("load cloudinary config: %w", err)
	}

	l.mu.Lock()
	l.cfg = cfg
	l.cloudinary = cloudinary
	l.mu.Unlock()

	l.logger.Info("configuration loaded",
		"dir", l.configDir,
		"cloudinary_configured", cloudinary.IsConfigured(),
	)
	return nil
}

func (l *Loader) Config() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg
}

// Cloudinary returns the current provider configuration. Callers must treat
// the snapshot as read-only; a reload replaces it rather than mutating it.
func (l *Loader) Cloudinary() *CloudinaryConfig {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cloudinary
}

// OnReload registers a callback that fires after config is reloaded.
func (l *Loader) OnReload(fn func()) {
	l.watchers = append(l.watchers, fn)
}

// Watch starts watching the config directory for changes and reloads on modification.
func (l *Loader) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := watcher.Add(l.configDir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch config dir %s: %w", l.configDir, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					l.logger.Info("config file changed, reloading", "file", event.Name)
					if err := l.Load(); err != nil {
						l.logger.Error("failed to reload config", "error", err)
						continue
					}
					for _, fn := range l.watchers {
						fn()
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				l.logger.Error("fsnotify error", "error", err)
			}
		}
	}()

	return nil
}
