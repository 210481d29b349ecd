package config

import (
	"strings"
	"testing"
)

type envTestConfig struct {
	Port  int      `env:"ROLLBOT_TEST_PORT" envDefault:"123"`
	Names []string `env:"ROLLBOT_TEST_NAMES" envSeparator:","`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
	if len(cfg.Names) != 0 {
		t.Fatalf("expected no names, got %v", cfg.Names)
	}
}

func TestParseEnvSplitsLists(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("ROLLBOT_TEST_NAMES", "alpha,beta")

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if len(cfg.Names) != 2 || cfg.Names[0] != "alpha" || cfg.Names[1] != "beta" {
		t.Fatalf("names = %v, want [alpha beta]", cfg.Names)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("ROLLBOT_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" a, ,b ,, c ")
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("split list = %v, want [a b c]", got)
	}
	if got := SplitList("   "); len(got) != 0 {
		t.Fatalf("expected empty list, got %v", got)
	}
}
