package rollbot

import (
	"flag"
	"reflect"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("rollbot", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("expected default http addr, got %q", cfg.HTTPAddr)
	}
	if cfg.GRPCAddr != ":8081" {
		t.Fatalf("expected default grpc addr, got %q", cfg.GRPCAddr)
	}
	if cfg.Game != "Shadowrun" || cfg.Allocator != "seventeen" {
		t.Fatalf("expected default pool config, got %q/%q", cfg.Game, cfg.Allocator)
	}
	if cfg.MaxAttempts != 5 || cfg.MaxDice != 100 {
		t.Fatalf("expected default limits, got %d/%d", cfg.MaxAttempts, cfg.MaxDice)
	}
	if cfg.StoreDriver != "sqlite" || cfg.DBPath != "data/rollbot.db" {
		t.Fatalf("expected default store, got %q %q", cfg.StoreDriver, cfg.DBPath)
	}
	if cfg.SlackAPIURL != "https://slack.com/api" {
		t.Fatalf("expected default slack api url, got %q", cfg.SlackAPIURL)
	}
}

func TestParseConfigEnv(t *testing.T) {
	t.Setenv("ROLLBOT_SLACK_TOKENS", "one,two")
	t.Setenv("ROLLBOT_POOL_GAME", "Fate")
	t.Setenv("ROLLBOT_STORE_DRIVER", "memory")

	fs := flag.NewFlagSet("rollbot", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if !reflect.DeepEqual(cfg.SlackTokens, []string{"one", "two"}) {
		t.Fatalf("expected env tokens, got %v", cfg.SlackTokens)
	}
	if cfg.Game != "Fate" || cfg.StoreDriver != "memory" {
		t.Fatalf("expected env overrides, got %q %q", cfg.Game, cfg.StoreDriver)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("ROLLBOT_HTTP_ADDR", "env-http")
	t.Setenv("ROLLBOT_POOL_ALLOCATOR", "env-gm")

	fs := flag.NewFlagSet("rollbot", flag.ContinueOnError)
	args := []string{
		"-http-addr", "flag-http",
		"-allocator", "flag-gm",
		"-slack-tokens", "a, b ,",
		"-max-dice", "30",
	}
	cfg, err := ParseConfig(fs, args)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTPAddr != "flag-http" {
		t.Fatalf("expected flag http addr, got %q", cfg.HTTPAddr)
	}
	if cfg.Allocator != "flag-gm" {
		t.Fatalf("expected flag allocator, got %q", cfg.Allocator)
	}
	if !reflect.DeepEqual(cfg.SlackTokens, []string{"a", "b"}) {
		t.Fatalf("expected flag tokens, got %v", cfg.SlackTokens)
	}
	if cfg.MaxDice != 30 {
		t.Fatalf("expected flag max dice, got %d", cfg.MaxDice)
	}
}

func TestParseConfigRejectsNonPositiveMaxDice(t *testing.T) {
	fs := flag.NewFlagSet("rollbot", flag.ContinueOnError)
	if _, err := ParseConfig(fs, []string{"-max-dice", "0"}); err == nil {
		t.Fatal("expected error for zero max dice")
	}
}
