package session

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("session", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "scoundrel.db" {
		t.Fatalf("db path = %q", cfg.DBPath)
	}
}

func TestParseConfigFlagOverridesEnv(t *testing.T) {
	t.Setenv("SCOUNDREL_DB_PATH", "env.db")

	fs := flag.NewFlagSet("session", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-db", "flag.db"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "flag.db" {
		t.Fatalf("db path = %q, want flag override", cfg.DBPath)
	}
}

func TestParseConfigEnv(t *testing.T) {
	t.Setenv("SCOUNDREL_DB_PATH", "env.db")

	fs := flag.NewFlagSet("session", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "env.db" {
		t.Fatalf("db path = %q, want env value", cfg.DBPath)
	}
}
