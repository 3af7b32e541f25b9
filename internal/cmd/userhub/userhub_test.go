package userhub

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("userhub", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 8092 {
		t.Fatalf("expected default port 8092, got %d", cfg.Port)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("PREPRINT_REVIEW_USERHUB_PORT", "9092")

	fs := flag.NewFlagSet("userhub", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-port", "9093"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 9093 {
		t.Fatalf("expected port override 9093, got %d", cfg.Port)
	}
}
