package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeDefaults(t *testing.T) {
	cfg := &Config{Telegram: TelegramConfig{Token: "t", SuperAdminID: 42, RunMode: "polling"}}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run mode = %q, want %q", cfg.Telegram.RunMode, RunModeLongpoll)
	}
}

func TestNormalizeRejects(t *testing.T) {
	cases := map[string]Config{
		"no token":       {Telegram: TelegramConfig{SuperAdminID: 1}},
		"no super admin": {Telegram: TelegramConfig{Token: "t"}},
		"bad mode":       {Telegram: TelegramConfig{Token: "t", SuperAdminID: 1, RunMode: "carrier-pigeon"}},
		"webhook no url": {Telegram: TelegramConfig{Token: "t", SuperAdminID: 1, RunMode: "webhook"}},
		"bad exclusion": {
			Telegram:  TelegramConfig{Token: "t", SuperAdminID: 1},
			RateLimit: RateLimitConfig{ExcludeUpdates: []string{"inline_query"}},
		},
	}
	for name, cfg := range cases {
		cfg := cfg
		if err := Normalize(&cfg); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadOverlaysEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "telegram:\n  token: from-file\n  super_admin_id: 7\nrate_limit:\n  exclude_updates: [\" Callback \"]\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("BOT_TOKEN", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.Token != "from-env" {
		t.Fatalf("token = %q, want env override", cfg.Telegram.Token)
	}
	if cfg.Telegram.SuperAdminID != 7 {
		t.Fatalf("super admin = %d, want 7", cfg.Telegram.SuperAdminID)
	}
	if got := cfg.RateLimit.ExcludeUpdates[0]; got != UpdateCallback {
		t.Fatalf("exclude = %q, want %q", got, UpdateCallback)
	}
}

func TestLoadDotEnvMissingFileIsFine(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("expected missing file to be ignored, got %v", err)
	}
}

func TestLoadDotEnvReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("CINEBOT_DOTENV_PROBE=yes\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CINEBOT_DOTENV_PROBE", "")
	os.Unsetenv("CINEBOT_DOTENV_PROBE")
	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := os.Getenv("CINEBOT_DOTENV_PROBE"); got != "yes" {
		t.Fatalf("probe = %q, want yes", got)
	}
}
