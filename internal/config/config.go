// ABOUTME: fixtrack configuration management and component factories
// ABOUTME: Loads and validates config.json and builds store, settings, provider and sinks

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/harper/fixtrack/internal/location"
	"github.com/harper/fixtrack/internal/notify"
	"github.com/harper/fixtrack/internal/settings"
	"github.com/harper/fixtrack/internal/storage"
	"go.uber.org/zap"
)

const (
	// SourceFixed reports one constant position.
	SourceFixed = "fixed"
	// SourceReplay replays a YAML track file.
	SourceReplay = "replay"

	defaultDBFilename  = "fixtrack.db"
	settingsDirname    = "settings"
	defaultNotifyAfter = 10 * time.Second
)

// Config stores fixtrack configuration.
type Config struct {
	// DataDir is the root directory for data storage. The fix database and
	// the settings store live here. Supports ~ expansion. Defaults to
	// ~/.local/share/fixtrack.
	DataDir string `json:"data_dir,omitempty"`

	// PageSize is the number of fixes per page in list views.
	PageSize int `json:"page_size,omitempty" validate:"gte=0,lte=1000"`

	Location LocationConfig `json:"location"`
	Notify   NotifyConfig   `json:"notify"`
}

// LocationConfig selects where positions come from.
type LocationConfig struct {
	Source    string  `json:"source,omitempty" validate:"omitempty,oneof=fixed replay"`
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
	TrackFile string  `json:"track_file,omitempty" validate:"required_if=Source replay"`
	Loop      bool    `json:"loop,omitempty"`
}

// NotifyConfig selects notification targets.
type NotifyConfig struct {
	// Console prints alerts to the terminal.
	Console bool `json:"console"`
	// URLs are shoutrrr service URLs such as ntfy://ntfy.sh/topic.
	URLs []string `json:"urls,omitempty" validate:"dive,required,contains=://"`
	// Timeout bounds delivery to each URL, as a Go duration string.
	Timeout string `json:"timeout,omitempty"`
}

// Default returns the configuration written on first run.
func Default() *Config {
	return &Config{
		PageSize: 10,
		Location: LocationConfig{Source: SourceFixed},
		Notify:   NotifyConfig{Console: true},
	}
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Notify.Timeout != "" {
		if _, err := time.ParseDuration(c.Notify.Timeout); err != nil {
			return fmt.Errorf("invalid config: notify.timeout: %w", err)
		}
	}
	return nil
}

// GetPageSize returns the configured page size, defaulting to 10.
func (c *Config) GetPageSize() int {
	if c.PageSize <= 0 {
		return 10
	}
	return c.PageSize
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return defaultDataDir()
	}
	return ExpandPath(c.DataDir)
}

// defaultDataDir returns the default XDG data directory for fixtrack.
func defaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "fixtrack")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// DBPath returns the location of the fix database.
func (c *Config) DBPath() string {
	return filepath.Join(c.GetDataDir(), defaultDBFilename)
}

// OpenStorage opens the fix database under the data directory.
func (c *Config) OpenStorage() (*storage.SQLiteDB, error) {
	return storage.NewSQLiteDB(c.DBPath())
}

// OpenSettings opens the settings store under the data directory.
func (c *Config) OpenSettings(logger *zap.Logger) (*settings.Store, error) {
	return settings.Open(filepath.Join(c.GetDataDir(), settingsDirname), logger)
}

// LocationProvider builds the configured position source.
func (c *Config) LocationProvider() (location.Provider, error) {
	switch c.Location.Source {
	case "", SourceFixed:
		return location.NewFixedProvider(c.Location.Latitude, c.Location.Longitude), nil
	case SourceReplay:
		if c.Location.TrackFile == "" {
			return nil, errors.New("replay source needs location.track_file")
		}
		return location.NewReplayProvider(ExpandPath(c.Location.TrackFile), c.Location.Loop), nil
	default:
		return nil, fmt.Errorf("unknown location source: %q", c.Location.Source)
	}
}

// NotificationSink builds the configured sinks. Console alerts go to out.
// With nothing configured the sink discards everything.
func (c *Config) NotificationSink(out io.Writer) (notify.Sink, error) {
	var sinks notify.Multi
	if c.Notify.Console {
		sinks = append(sinks, notify.NewConsoleSink(out))
	}
	if len(c.Notify.URLs) > 0 {
		timeout := defaultNotifyAfter
		if c.Notify.Timeout != "" {
			d, err := time.ParseDuration(c.Notify.Timeout)
			if err != nil {
				return nil, fmt.Errorf("notify.timeout: %w", err)
			}
			timeout = d
		}
		s, err := notify.NewShoutrrrSink(c.Notify.URLs, timeout)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s)
	}

	switch len(sinks) {
	case 0:
		return notify.Nop{}, nil
	case 1:
		return sinks[0], nil
	default:
		return sinks, nil
	}
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "fixtrack", "config.json")
}

// Load reads config from disk. A missing file is replaced by the default
// config, which is saved for next time.
func Load() (*Config, error) {
	path := GetConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			if saveErr := cfg.Save(); saveErr != nil {
				fmt.Fprintf(os.Stderr, "warning: could not save default config: %v\n", saveErr)
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return atomicWrite(GetConfigPath(), data)
}

// atomicWrite writes data to a temp file in the target directory and
// renames it into place.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".config-*.json")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
