package app

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/cinebot/core/config"
	coredatabase "github.com/m3rciful/cinebot/core/database"
	"github.com/m3rciful/cinebot/core/telegram/state"
	"github.com/m3rciful/cinebot/internal/health"
)

// ChannelSeed is a required channel declared in the config file.
type ChannelSeed struct {
	ChatID     int64  `yaml:"chat_id"`
	Handle     string `yaml:"handle"`
	Title      string `yaml:"title"`
	InviteLink string `yaml:"invite_link"`
}

// BotConfig holds catalog bot settings.
type BotConfig struct {
	// DistributionChannelID receives a post for every new item. Zero disables it.
	DistributionChannelID int64 `yaml:"distribution_channel_id" envconfig:"DISTRIBUTION_CHANNEL_ID"`
	// RequiredChannels are inserted at startup when missing. Channels added
	// from the panel are kept.
	RequiredChannels []ChannelSeed `yaml:"required_channels"`
	// PageSize is the number of items per /top and /list page.
	PageSize int `yaml:"page_size" envconfig:"PAGE_SIZE"`
}

// BroadcastConfig paces the fan-out.
type BroadcastConfig struct {
	Concurrency int     `yaml:"concurrency" envconfig:"BROADCAST_CONCURRENCY"`
	PerSecond   float64 `yaml:"per_second" envconfig:"BROADCAST_PER_SECOND"`
	Burst       int     `yaml:"burst" envconfig:"BROADCAST_BURST"`
}

// DialogConfig controls conversation state expiry.
type DialogConfig struct {
	TTL           time.Duration `yaml:"ttl" envconfig:"DIALOG_TTL"`
	SweepInterval time.Duration `yaml:"sweep_interval" envconfig:"DIALOG_SWEEP_INTERVAL"`
}

// Config is the full application configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database  coredatabase.Config `yaml:"database"`
	Bot       BotConfig           `yaml:"bot"`
	Broadcast BroadcastConfig     `yaml:"broadcast"`
	Dialog    DialogConfig        `yaml:"dialog"`
	Health    health.Config       `yaml:"health"`
}

// CoreConfig returns the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// Load reads path, overlays the environment and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates cfg and fills defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return err
	}
	if err := cfg.Database.Normalize(); err != nil {
		return err
	}
	cfg.Health.Normalize()

	if cfg.Bot.PageSize <= 0 {
		cfg.Bot.PageSize = 10
	}
	for i, ch := range cfg.Bot.RequiredChannels {
		if ch.ChatID == 0 {
			return fmt.Errorf("bot.required_channels[%d].chat_id is required", i)
		}
		cfg.Bot.RequiredChannels[i].Handle = strings.TrimPrefix(strings.TrimSpace(ch.Handle), "@")
		if cfg.Bot.RequiredChannels[i].Handle == "" && strings.TrimSpace(ch.InviteLink) == "" {
			return fmt.Errorf("bot.required_channels[%d] needs a handle or an invite_link", i)
		}
	}

	if cfg.Broadcast.Concurrency < 0 || cfg.Broadcast.PerSecond < 0 || cfg.Broadcast.Burst < 0 {
		return fmt.Errorf("broadcast settings must be >= 0")
	}

	if cfg.Dialog.TTL < 0 {
		return fmt.Errorf("dialog.ttl must be >= 0")
	}
	if cfg.Dialog.TTL == 0 {
		cfg.Dialog.TTL = state.DefaultTTL
	}
	if cfg.Dialog.SweepInterval <= 0 {
		cfg.Dialog.SweepInterval = time.Minute
	}
	return nil
}
