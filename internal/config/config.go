package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// DefaultBaseURL is the library site.
const DefaultBaseURL = "https://sacredcommunityproject.org"

// Duration is a time.Duration that reads "1m30s" style strings from TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the full configuration.
type Config struct {
	Discord DiscordConfig `toml:"discord"`
	Storage StorageConfig `toml:"storage"`
	Site    SiteConfig    `toml:"site"`
	Admin   AdminConfig   `toml:"admin"`
	Browse  BrowseConfig  `toml:"browse"`
	Sync    SyncConfig    `toml:"sync"`
	Log     LogConfig     `toml:"log"`
	Metrics MetricsConfig `toml:"metrics"`

	// path is the file this config was read from.
	path string
}

// DiscordConfig holds the chat platform credentials.
type DiscordConfig struct {
	Token string `toml:"token"`
	AppID string `toml:"app_id"`

	// GuildID registers commands on one guild only, which is instant.
	// Empty registers them globally.
	GuildID string `toml:"guild_id"`
}

// StorageConfig locates the catalog database.
type StorageConfig struct {
	// Path is the data directory holding library.db.
	Path string `toml:"path"`
}

// SiteConfig describes the remote site.
type SiteConfig struct {
	BaseURL     string `toml:"base_url"`
	ContentPath string `toml:"content_path"`
	UserAgent   string `toml:"user_agent"`
}

// AdminConfig lists the roles allowed to run admin commands.
type AdminConfig struct {
	Roles []string `toml:"roles"`
}

// BrowseConfig tunes browsing sessions.
type BrowseConfig struct {
	PageSize      int      `toml:"page_size"`
	ResultLimit   int      `toml:"result_limit"`
	MaxOptions    int      `toml:"max_options"`
	TopTags       int      `toml:"top_tags"`
	IdleTimeout   Duration `toml:"idle_timeout"`
	SweepInterval Duration `toml:"sweep_interval"`
}

// SyncConfig tunes the reconciler and its HTTP client.
type SyncConfig struct {
	RequestDelay     Duration `toml:"request_delay"`
	MaxAttempts      int      `toml:"max_attempts"`
	RetryDelay       Duration `toml:"retry_delay"`
	ArchiveMaxPages  int      `toml:"archive_max_pages"`
	HTTPTimeout      Duration `toml:"http_timeout"`
	UpdateBudget     Duration `toml:"update_budget"`
	RebuildBudget    Duration `toml:"rebuild_budget"`
	ScheduleInterval Duration `toml:"schedule_interval"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `toml:"level"`
	File   string `toml:"file"`
	Format string `toml:"format"`
}

// MetricsConfig configures the prometheus endpoint. Empty Addr disables it.
type MetricsConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Site: SiteConfig{
			BaseURL:     DefaultBaseURL,
			ContentPath: "/digital-library",
			UserAgent:   "Mozilla/5.0 (compatible; LibraryBot/1.0)",
		},
		Admin: AdminConfig{
			Roles: []string{"Admin", "Moderator", "Library Manager"},
		},
		Browse: BrowseConfig{
			PageSize:      5,
			ResultLimit:   20,
			MaxOptions:    25,
			TopTags:       24,
			IdleTimeout:   Duration{10 * time.Minute},
			SweepInterval: Duration{30 * time.Second},
		},
		Sync: SyncConfig{
			RequestDelay:    Duration{1500 * time.Millisecond},
			MaxAttempts:     3,
			RetryDelay:      Duration{2 * time.Second},
			ArchiveMaxPages: 50,
			HTTPTimeout:     Duration{30 * time.Second},
			UpdateBudget:    Duration{5 * time.Minute},
			RebuildBudget:   Duration{10 * time.Minute},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Dir returns the default configuration directory, ~/.librarian.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".librarian"), nil
}

// Load reads the configuration. An empty path selects the default file.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return nil, fmt.Errorf("locate config dir: %w", err)
		}
		path = filepath.Join(dir, "config.toml")
	}

	cfg := Default()
	cfg.path = path
	if err := cfg.readFile(path); err != nil {
		return nil, err
	}

	loadDotEnv(".env", filepath.Join(filepath.Dir(path), ".env"))
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if cfg.Storage.Path == "" {
		dir, err := Dir()
		if err != nil {
			return nil, fmt.Errorf("locate data dir: %w", err)
		}
		cfg.Storage.Path = filepath.Join(dir, "data")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the file the configuration was loaded from.
func (c *Config) Path() string {
	return c.path
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// loadDotEnv loads the first .env files found. Existing variables win.
func loadDotEnv(paths ...string) {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		_ = godotenv.Load(p)
	}
}

// Validate checks ranges that would otherwise fail later.
func (c *Config) Validate() error {
	var errs []error
	if c.Site.BaseURL == "" {
		errs = append(errs, errors.New("site.base_url is required"))
	}
	if c.Browse.PageSize <= 0 {
		errs = append(errs, errors.New("browse.page_size must be positive"))
	}
	if c.Browse.ResultLimit <= 0 {
		errs = append(errs, errors.New("browse.result_limit must be positive"))
	}
	if c.Browse.MaxOptions < 2 || c.Browse.MaxOptions > 25 {
		errs = append(errs, errors.New("browse.max_options must be between 2 and 25"))
	}
	if c.Sync.MaxAttempts <= 0 {
		errs = append(errs, errors.New("sync.max_attempts must be positive"))
	}
	if c.Sync.ScheduleInterval.Duration < 0 {
		errs = append(errs, errors.New("sync.schedule_interval must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// RequireDiscord reports a missing bot token or application ID.
func (c *Config) RequireDiscord() error {
	if c.Discord.Token == "" {
		return errors.New("discord token is required (set DISCORD_TOKEN or discord.token)")
	}
	return nil
}

// MaxOptionValues is the number of real values a dropdown can show
// beside its "All" entry.
func (c *Config) MaxOptionValues() int {
	return c.Browse.MaxOptions - 1
}
