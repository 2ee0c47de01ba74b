// Package grpc exposes presence, the roster and direct messages as the
// rosterhub.v1.Roster gRPC service.
package grpc

import (
	"context"
	"net"

	"github.com/ISTE-SCTCE/Admin/internal/logging"
	"github.com/ISTE-SCTCE/Admin/internal/server/metrics"
	"github.com/ISTE-SCTCE/Admin/internal/server/presence"
	"github.com/ISTE-SCTCE/Admin/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type GRPCServer struct {
	address   string
	users     *services.UserService
	directory *services.DirectoryService
	messages  *services.MessageService
	presence  *presence.Tracker
	metrics   *metrics.Metrics
	logger    logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, us *services.UserService, ds *services.DirectoryService,
	ms *services.MessageService, pt *presence.Tracker, met *metrics.Metrics) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		users:     us,
		directory: ds,
		messages:  ms,
		presence:  pt,
		metrics:   met,
	}
}

func (s *GRPCServer) newServer() (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.metricsInterceptor, s.accessTokenInterceptor))

	srv.RegisterService(&RosterServiceDesc, s)

	hs := health.NewServer()
	hs.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	return srv, hs
}

func (s *GRPCServer) Run(ctx context.Context) error {
	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on listen until ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {
	srv, hs := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping gRPC server...")
		hs.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	return srv.Serve(listen)
}
