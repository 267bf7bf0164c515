package rpc

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/matzehuels/talklike/pkg/pipeline"
)

// DefaultAddr is the gRPC listen address.
const DefaultAddr = ":9090"

// Server hosts the Transformer and health services.
type Server struct {
	grpc   *grpc.Server
	health *health.Server
	logger *log.Logger
}

// NewServer registers the services on a new gRPC server traced with otelgrpc.
func NewServer(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	gs := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	hs := health.NewServer()
	RegisterTransformerServer(gs, NewService(runner))
	grpc_health_v1.RegisterHealthServer(gs, hs)
	hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	return &Server{grpc: gs, health: hs, logger: logger}
}

// ListenAndServe serves on addr until ctx ends.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx ends, then stops gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("grpc listening", "addr", ln.Addr().String())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.grpc.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		s.health.Shutdown()
		s.grpc.GracefulStop()
		err := <-serveErr
		if err == nil || stderrors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	case err := <-serveErr:
		if err == nil || stderrors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	}
}
