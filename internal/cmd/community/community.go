// Package community parses community service flags and launches the service.
package community

import (
	"context"
	"flag"

	entrypoint "github.com/openpreview/preprint.review/internal/platform/cmd"
	"github.com/openpreview/preprint.review/internal/platform/discovery"
	server "github.com/openpreview/preprint.review/internal/services/community/app"
)

// Config holds community command configuration.
type Config struct {
	Port int `env:"PREPRINT_REVIEW_COMMUNITY_PORT"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Port == 0 {
		cfg.Port = discovery.DefaultGRPCPort(discovery.ServiceCommunity)
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The community gRPC server port")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the community gRPC API service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceCommunity, func(context.Context) error {
		return server.Run(ctx, cfg.Port)
	})
}
