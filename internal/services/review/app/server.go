// Package server wires the review runtime and gRPC lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/openpreview/preprint.review/internal/platform/config"
	platformgrpc "github.com/openpreview/preprint.review/internal/platform/grpc"
	"github.com/openpreview/preprint.review/internal/services/review/domain"
	reviewsqlite "github.com/openpreview/preprint.review/internal/services/review/storage/sqlite"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

type serverEnv struct {
	DBPath string `env:"PREPRINT_REVIEW_REVIEW_DB_PATH"`
}

func loadServerEnv() serverEnv {
	var cfg serverEnv
	_ = config.ParseEnv(&cfg)
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = filepath.Join("data", "review.db")
	}
	return cfg
}

// Server hosts the review gRPC lifecycle and storage.
type Server struct {
	listener   net.Listener
	grpcServer *grpc.Server
	health     *health.Server
	store      *reviewsqlite.Store
	domain     *domain.Service
}

// New creates a configured review server listening on the provided port.
func New(port int, sink domain.Sink) (*Server, error) {
	return NewWithAddr(fmt.Sprintf(":%d", port), sink)
}

// NewWithAddr creates a configured review server for the provided address.
func NewWithAddr(addr string, sink domain.Sink) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	srvEnv := loadServerEnv()
	store, err := openReviewStore(srvEnv.DBPath)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	if sink == nil {
		sink = eventLogger{}
	}
	storeAdapter := newDomainStoreAdapter(store, store, store, store)
	domainService := domain.NewService(storeAdapter, sink, nil, nil)
	if os.Getenv("PREPRINT_REVIEW_INVITE_GRANT_PUBLIC_KEY") != "" {
		grantCfg, err := domain.LoadInviteGrantConfigFromEnv(nil)
		if err != nil {
			_ = listener.Close()
			_ = store.Close()
			return nil, err
		}
		domainService = domainService.WithInviteGrants(grantCfg)
		log.Printf("review invite grants enabled issuer=%s", grantCfg.Issuer)
	}

	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(platformgrpc.UnaryErrorInterceptor()),
	)
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	return &Server{
		listener:   listener,
		grpcServer: grpcServer,
		health:     healthServer,
		store:      store,
		domain:     domainService,
	}, nil
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Domain exposes the review use-cases backed by this server's storage.
func (s *Server) Domain() *domain.Service {
	if s == nil {
		return nil
	}
	return s.domain
}

// Run creates and serves a review server until context cancellation.
func Run(ctx context.Context, port int, sink domain.Sink) error {
	server, err := New(port, sink)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the gRPC server until context cancellation.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	log.Printf("review server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.grpcServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		if s.health != nil {
			s.health.Shutdown()
		}
		s.grpcServer.GracefulStop()
		err := <-serveErr
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	case err := <-serveErr:
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	}
}

// Close releases review server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.health != nil {
		s.health.Shutdown()
	}
	if s.grpcServer != nil {
		s.grpcServer.Stop()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close review store: %v", err)
		}
	}
}

// eventLogger is the fallback sink when no delivery integration is wired.
type eventLogger struct{}

func (eventLogger) Publish(_ context.Context, event domain.Event) error {
	log.Printf("review event %s review=%s persona=%s", event.Type, event.ReviewID, event.PersonaID)
	return nil
}

func openReviewStore(path string) (*reviewsqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := reviewsqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open review sqlite store: %w", err)
	}
	return store, nil
}
