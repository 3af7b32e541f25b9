package auth

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("auth", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 8083 {
		t.Fatalf("expected default port 8083, got %d", cfg.Port)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("PREPRINT_REVIEW_AUTH_PORT", "9083")

	fs := flag.NewFlagSet("auth", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-port", "9084"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 9084 {
		t.Fatalf("expected port override 9084, got %d", cfg.Port)
	}
}
