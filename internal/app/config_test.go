package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	coreconfig "github.com/m3rciful/cinebot/core/config"
	coredatabase "github.com/m3rciful/cinebot/core/database"
	"github.com/m3rciful/cinebot/core/telegram/state"
	"github.com/m3rciful/cinebot/internal/health"
)

func baseConfig() Config {
	return Config{Config: coreconfig.Config{Telegram: coreconfig.TelegramConfig{Token: "t", SuperAdminID: 42}}}
}

func TestNormalizeFillsDefaults(t *testing.T) {
	cfg := baseConfig()
	if err := Normalize(&cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Bot.PageSize != 10 {
		t.Fatalf("page size = %d, want 10", cfg.Bot.PageSize)
	}
	if cfg.Dialog.TTL != state.DefaultTTL {
		t.Fatalf("ttl = %s, want %s", cfg.Dialog.TTL, state.DefaultTTL)
	}
	if cfg.Dialog.SweepInterval != time.Minute {
		t.Fatalf("sweep = %s, want 1m", cfg.Dialog.SweepInterval)
	}
	if cfg.Database.Driver != coredatabase.DriverSQLite {
		t.Fatalf("driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.Health.Path != health.DefaultPath {
		t.Fatalf("health path = %q", cfg.Health.Path)
	}
}

func TestNormalizeRejectsBadSettings(t *testing.T) {
	cases := map[string]func(*Config){
		"seed without chat": func(c *Config) {
			c.Bot.RequiredChannels = []ChannelSeed{{Handle: "movies"}}
		},
		"seed without link": func(c *Config) {
			c.Bot.RequiredChannels = []ChannelSeed{{ChatID: -100, Handle: " @ "}}
		},
		"negative ttl":      func(c *Config) { c.Dialog.TTL = -time.Second },
		"negative burst":    func(c *Config) { c.Broadcast.Burst = -1 },
		"missing super id":  func(c *Config) { c.Telegram.SuperAdminID = 0 },
		"unknown db driver": func(c *Config) { c.Database.Driver = "oracle" },
		"postgres no host":  func(c *Config) { c.Database.Driver = "postgres" },
	}
	for name, mutate := range cases {
		cfg := baseConfig()
		mutate(&cfg)
		if err := Normalize(&cfg); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestNormalizeTrimsSeedHandles(t *testing.T) {
	cfg := baseConfig()
	cfg.Bot.RequiredChannels = []ChannelSeed{{ChatID: -100, Handle: " @movies "}}
	if err := Normalize(&cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got := cfg.Bot.RequiredChannels[0].Handle; got != "movies" {
		t.Fatalf("handle = %q, want movies", got)
	}
}

func TestLoadReadsSectionsAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `telegram:
  token: from-file
  super_admin_id: 7
database:
  driver: sqlite
  path: /tmp/x.db
bot:
  distribution_channel_id: -1001
  page_size: 5
  required_channels:
    - chat_id: -1002
      handle: "@news"
broadcast:
  concurrency: 4
  per_second: 20
dialog:
  ttl: 10m
health:
  listen: ":9000"
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("DISTRIBUTION_CHANNEL_ID", "-1009")
	t.Setenv("DIALOG_TTL", "45m")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Bot.DistributionChannelID != -1009 {
		t.Fatalf("distribution = %d, want env override", cfg.Bot.DistributionChannelID)
	}
	if cfg.Dialog.TTL != 45*time.Minute {
		t.Fatalf("ttl = %s, want 45m", cfg.Dialog.TTL)
	}
	if cfg.Bot.PageSize != 5 || cfg.Broadcast.Concurrency != 4 || cfg.Broadcast.PerSecond != 20 {
		t.Fatalf("unexpected bot/broadcast: %+v %+v", cfg.Bot, cfg.Broadcast)
	}
	if len(cfg.Bot.RequiredChannels) != 1 || cfg.Bot.RequiredChannels[0].Handle != "news" {
		t.Fatalf("required = %+v", cfg.Bot.RequiredChannels)
	}
	if cfg.Health.Listen != ":9000" {
		t.Fatalf("health listen = %q", cfg.Health.Listen)
	}
	if cfg.CoreConfig().Telegram.SuperAdminID != 7 {
		t.Fatalf("core config not shared")
	}
}
