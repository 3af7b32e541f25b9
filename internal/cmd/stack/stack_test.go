package stack

import (
	"flag"
	"testing"

	"github.com/openpreview/preprint.review/internal/platform/discovery"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("stack", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	want := Config{
		ReviewPort:        discovery.DefaultGRPCPort(discovery.ServiceReview),
		AuthPort:          discovery.DefaultGRPCPort(discovery.ServiceAuth),
		PreprintPort:      discovery.DefaultGRPCPort(discovery.ServicePreprint),
		NotificationsPort: discovery.DefaultGRPCPort(discovery.ServiceNotifications),
		CommunityPort:     discovery.DefaultGRPCPort(discovery.ServiceCommunity),
		UserHubPort:       discovery.DefaultGRPCPort(discovery.ServiceUserHub),
	}
	if cfg != want {
		t.Fatalf("config = %+v, want %+v", cfg, want)
	}
	if cfg.ReviewPort == 0 || cfg.UserHubPort == 0 {
		t.Fatalf("expected nonzero default ports, got %+v", cfg)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("PREPRINT_REVIEW_REVIEW_PORT", "9082")

	fs := flag.NewFlagSet("stack", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-userhub-port", "9092"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.ReviewPort != 9082 {
		t.Fatalf("expected review port from env 9082, got %d", cfg.ReviewPort)
	}
	if cfg.UserHubPort != 9092 {
		t.Fatalf("expected userhub port override 9092, got %d", cfg.UserHubPort)
	}
}
