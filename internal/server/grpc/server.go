// Package grpc exposes the standard gRPC health service so orchestrators can
// probe the bot.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/kinogate/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the service name reported alongside the overall status.
const ServiceName = "kinogate.Bot"

// ProbeFunc reports whether the bot's dependencies are usable.
type ProbeFunc func(ctx context.Context) error

type GRPCServer struct {
	address  string
	health   *health.Server
	probe    ProbeFunc
	interval time.Duration
	logger   logging.Logger
}

func NewGRPCServer(a string, probe ProbeFunc, interval time.Duration, l logging.Logger) *GRPCServer {
	return &GRPCServer{
		address:  a,
		health:   health.NewServer(),
		probe:    probe,
		interval: interval,
		logger:   l.With("module", "grpc_server"),
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	// creates gRPC-server
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))

	// registers service
	healthpb.RegisterHealthServer(srv, s.health)

	s.refresh(ctx)

	go func() {
		t := time.NewTicker(s.interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				s.logger.Info(ctx, "Stopping gPRC server...")
				s.health.Shutdown()
				srv.GracefulStop()
				return
			case <-t.C:
				s.refresh(ctx)
			}
		}
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}

// refresh runs the probe and publishes the result.
func (s *GRPCServer) refresh(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if s.probe != nil {
		if err := s.probe(ctx); err != nil {
			s.logger.Warn(ctx, "health probe failed", "error", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}
