// Package stack launches every platform service in one process.
//
// It exists for single-container deployments and local development. Each
// service keeps its own listener and SQLite database, and the review
// service publishes its events straight into the notifications inbox
// instead of logging them.
package stack

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	entrypoint "github.com/openpreview/preprint.review/internal/platform/cmd"
	"github.com/openpreview/preprint.review/internal/platform/discovery"
	platformgrpc "github.com/openpreview/preprint.review/internal/platform/grpc"
	authserver "github.com/openpreview/preprint.review/internal/services/auth/app"
	communityserver "github.com/openpreview/preprint.review/internal/services/community/app"
	notificationsserver "github.com/openpreview/preprint.review/internal/services/notifications/app"
	preprintserver "github.com/openpreview/preprint.review/internal/services/preprint/app"
	reviewserver "github.com/openpreview/preprint.review/internal/services/review/app"
	userhubserver "github.com/openpreview/preprint.review/internal/services/userhub/app"
)

// readinessTimeout bounds the startup health probe for each service.
const readinessTimeout = 30 * time.Second

// Config holds one port per hosted service.
type Config struct {
	ReviewPort        int `env:"PREPRINT_REVIEW_REVIEW_PORT"`
	AuthPort          int `env:"PREPRINT_REVIEW_AUTH_PORT"`
	PreprintPort      int `env:"PREPRINT_REVIEW_PREPRINT_PORT"`
	NotificationsPort int `env:"PREPRINT_REVIEW_NOTIFICATIONS_PORT"`
	CommunityPort     int `env:"PREPRINT_REVIEW_COMMUNITY_PORT"`
	UserHubPort       int `env:"PREPRINT_REVIEW_USERHUB_PORT"`
}

// ParseConfig parses environment and flags into Config. Unset ports fall
// back to the discovery conventions.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	defaultPort(&cfg.ReviewPort, discovery.ServiceReview)
	defaultPort(&cfg.AuthPort, discovery.ServiceAuth)
	defaultPort(&cfg.PreprintPort, discovery.ServicePreprint)
	defaultPort(&cfg.NotificationsPort, discovery.ServiceNotifications)
	defaultPort(&cfg.CommunityPort, discovery.ServiceCommunity)
	defaultPort(&cfg.UserHubPort, discovery.ServiceUserHub)
	fs.IntVar(&cfg.ReviewPort, "review-port", cfg.ReviewPort, "The review gRPC server port")
	fs.IntVar(&cfg.AuthPort, "auth-port", cfg.AuthPort, "The auth gRPC server port")
	fs.IntVar(&cfg.PreprintPort, "preprint-port", cfg.PreprintPort, "The preprint gRPC server port")
	fs.IntVar(&cfg.NotificationsPort, "notifications-port", cfg.NotificationsPort, "The notifications gRPC server port")
	fs.IntVar(&cfg.CommunityPort, "community-port", cfg.CommunityPort, "The community gRPC server port")
	fs.IntVar(&cfg.UserHubPort, "userhub-port", cfg.UserHubPort, "The userhub gRPC server port")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func defaultPort(port *int, service string) {
	if *port == 0 {
		*port = discovery.DefaultGRPCPort(service)
	}
}

type hostedService struct {
	name  string
	addr  string
	serve func(context.Context) error
	close func()
}

// Run starts all services and supervises them until context cancellation
// or the first service failure.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceStack, func(context.Context) error {
		return runServices(ctx, cfg)
	})
}

func runServices(ctx context.Context, cfg Config) error {
	notifications, err := notificationsserver.New(cfg.NotificationsPort)
	if err != nil {
		return fmt.Errorf("start notifications: %w", err)
	}
	review, err := reviewserver.New(cfg.ReviewPort, notifications.ReviewSink())
	if err != nil {
		notifications.Close()
		return fmt.Errorf("start review: %w", err)
	}

	services := []hostedService{
		{name: entrypoint.ServiceNotifications, addr: notifications.Addr(), serve: notifications.Serve, close: notifications.Close},
		{name: entrypoint.ServiceReview, addr: review.Addr(), serve: review.Serve, close: review.Close},
	}
	for _, boot := range []struct {
		name string
		port int
		init func(int) (hostedService, error)
	}{
		{entrypoint.ServiceAuth, cfg.AuthPort, newAuthService},
		{entrypoint.ServicePreprint, cfg.PreprintPort, newPreprintService},
		{entrypoint.ServiceCommunity, cfg.CommunityPort, newCommunityService},
		{entrypoint.ServiceUserHub, cfg.UserHubPort, newUserHubService},
	} {
		svc, err := boot.init(boot.port)
		if err != nil {
			closeServices(services)
			return fmt.Errorf("start %s: %w", boot.name, err)
		}
		services = append(services, svc)
	}

	return superviseServices(ctx, services)
}

func newAuthService(port int) (hostedService, error) {
	srv, err := authserver.New(port)
	if err != nil {
		return hostedService{}, err
	}
	return hostedService{name: entrypoint.ServiceAuth, addr: srv.Addr(), serve: srv.Serve, close: srv.Close}, nil
}

func newPreprintService(port int) (hostedService, error) {
	srv, err := preprintserver.New(port)
	if err != nil {
		return hostedService{}, err
	}
	return hostedService{name: entrypoint.ServicePreprint, addr: srv.Addr(), serve: srv.Serve, close: srv.Close}, nil
}

func newCommunityService(port int) (hostedService, error) {
	srv, err := communityserver.New(port)
	if err != nil {
		return hostedService{}, err
	}
	return hostedService{name: entrypoint.ServiceCommunity, addr: srv.Addr(), serve: srv.Serve, close: srv.Close}, nil
}

func newUserHubService(port int) (hostedService, error) {
	srv, err := userhubserver.New(port)
	if err != nil {
		return hostedService{}, err
	}
	return hostedService{name: entrypoint.ServiceUserHub, addr: srv.Addr(), serve: srv.Serve, close: srv.Close}, nil
}

type serviceExit struct {
	name string
	err  error
}

// superviseServices serves all services until the context is canceled or
// one of them fails. The first failure cancels the rest.
func superviseServices(ctx context.Context, services []hostedService) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	exitCh := make(chan serviceExit, len(services))
	for _, svc := range services {
		go func(svc hostedService) {
			exitCh <- serviceExit{name: svc.name, err: svc.serve(runCtx)}
		}(svc)
	}
	go probeReadiness(runCtx, services)

	var errs []error
	for remaining := len(services); remaining > 0; remaining-- {
		exit := <-exitCh
		if exit.err != nil {
			log.Printf("%s exited: %v", exit.name, exit.err)
			errs = append(errs, fmt.Errorf("%s: %w", exit.name, exit.err))
		}
		cancel()
	}
	return errors.Join(errs...)
}

// probeReadiness waits for every service health check and logs the result.
// Failures are logged only; supervision decides process exit.
func probeReadiness(ctx context.Context, services []hostedService) {
	for _, svc := range services {
		conn, err := platformgrpc.DialWithHealth(ctx, nil, svc.addr, readinessTimeout, nil, platformgrpc.DefaultClientDialOptions()...)
		if err != nil {
			log.Printf("readiness probe for %s at %s failed: %v", svc.name, svc.addr, err)
			return
		}
		_ = conn.Close()
	}
	log.Printf("all services serving")
}

func closeServices(services []hostedService) {
	for _, svc := range services {
		if svc.close != nil {
			svc.close()
		}
	}
}
