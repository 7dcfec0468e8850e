package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// lookupFunc matches os.LookupEnv.
type lookupFunc func(key string) (string, bool)

type envBinding struct {
	name  string
	apply func(c *Config, v string) error
}

func str(dst func(c *Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*dst(c) = v
		return nil
	}
}

func integer(dst func(c *Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		*dst(c) = n
		return nil
	}
}

func duration(dst func(c *Config) *Duration) func(*Config, string) error {
	return func(c *Config, v string) error {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		dst(c).Duration = d
		return nil
	}
}

var envBindings = []envBinding{
	{"DISCORD_TOKEN", str(func(c *Config) *string { return &c.Discord.Token })},
	{"LIBRARIAN_DISCORD_TOKEN", str(func(c *Config) *string { return &c.Discord.Token })},
	{"LIBRARIAN_DISCORD_APP_ID", str(func(c *Config) *string { return &c.Discord.AppID })},
	{"LIBRARIAN_DISCORD_GUILD_ID", str(func(c *Config) *string { return &c.Discord.GuildID })},
	{"LIBRARIAN_STORAGE_PATH", str(func(c *Config) *string { return &c.Storage.Path })},
	{"LIBRARIAN_SITE_BASE_URL", str(func(c *Config) *string { return &c.Site.BaseURL })},
	{"LIBRARIAN_SITE_CONTENT_PATH", str(func(c *Config) *string { return &c.Site.ContentPath })},
	{"LIBRARIAN_SITE_USER_AGENT", str(func(c *Config) *string { return &c.Site.UserAgent })},
	{"LIBRARIAN_ADMIN_ROLES", func(c *Config, v string) error {
		c.Admin.Roles = splitList(v)
		return nil
	}},
	{"LIBRARIAN_BROWSE_PAGE_SIZE", integer(func(c *Config) *int { return &c.Browse.PageSize })},
	{"LIBRARIAN_BROWSE_RESULT_LIMIT", integer(func(c *Config) *int { return &c.Browse.ResultLimit })},
	{"LIBRARIAN_BROWSE_IDLE_TIMEOUT", duration(func(c *Config) *Duration { return &c.Browse.IdleTimeout })},
	{"LIBRARIAN_SYNC_REQUEST_DELAY", duration(func(c *Config) *Duration { return &c.Sync.RequestDelay })},
	{"LIBRARIAN_SYNC_SCHEDULE_INTERVAL", duration(func(c *Config) *Duration { return &c.Sync.ScheduleInterval })},
	{"LIBRARIAN_LOG_LEVEL", str(func(c *Config) *string { return &c.Log.Level })},
	{"LIBRARIAN_LOG_FILE", str(func(c *Config) *string { return &c.Log.File })},
	{"LIBRARIAN_METRICS_ADDR", str(func(c *Config) *string { return &c.Metrics.Addr })},
}

// applyEnv overrides fields from the environment. Later bindings win, so
// LIBRARIAN_DISCORD_TOKEN beats DISCORD_TOKEN.
func (c *Config) applyEnv(lookup lookupFunc) error {
	for _, b := range envBindings {
		v, ok := lookup(b.name)
		if !ok || v == "" {
			continue
		}
		if err := b.apply(c, v); err != nil {
			return fmt.Errorf("%s: %w", b.name, err)
		}
	}
	return nil
}

// splitList splits a comma-separated list, dropping blanks.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
