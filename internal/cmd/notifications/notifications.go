// Package notifications parses notifications service flags and launches the service.
package notifications

import (
	"context"
	"flag"

	entrypoint "github.com/openpreview/preprint.review/internal/platform/cmd"
	"github.com/openpreview/preprint.review/internal/platform/discovery"
	server "github.com/openpreview/preprint.review/internal/services/notifications/app"
)

// Config holds notifications command configuration.
type Config struct {
	Port int `env:"PREPRINT_REVIEW_NOTIFICATIONS_PORT"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Port == 0 {
		cfg.Port = discovery.DefaultGRPCPort(discovery.ServiceNotifications)
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The notifications gRPC server port")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the notifications gRPC API service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceNotifications, func(context.Context) error {
		return server.Run(ctx, cfg.Port)
	})
}
