package grpc

import (
	"context"
	"net"
	"time"

	"github.com/desmin2102/HostelApp/pkg/internal/database"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the name reported next to the overall "" status.
const ServiceName = "hostel.Rentals"

var HealthInterval = 30 * time.Second

type App struct {
	srv    *grpc.Server
	health *health.Server
}

func NewGrpc() *App {
	server := &App{
		srv:    grpc.NewServer(),
		health: health.NewServer(),
	}

	healthpb.RegisterHealthServer(server.srv, server.health)
	reflection.Register(server.srv)

	return server
}

// RefreshStatus reports NOT_SERVING while the database cannot be reached.
func (v *App) RefreshStatus(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING

	if database.C == nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	} else if raw, err := database.C.DB(); err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	} else if err := raw.PingContext(ctx); err != nil {
		log.Warn().Err(err).Msg("Database is unreachable, report not serving...")
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}

	v.health.SetServingStatus("", status)
	v.health.SetServingStatus(ServiceName, status)
	return status
}

func (v *App) watch(ctx context.Context) {
	ticker := time.NewTicker(HealthInterval)
	defer ticker.Stop()

	for {
		probe, cancel := context.WithTimeout(ctx, 5*time.Second)
		v.RefreshStatus(probe)
		cancel()

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (v *App) Listen() error {
	listener, err := net.Listen("tcp", viper.GetString("grpc_bind"))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go v.watch(ctx)

	return v.srv.Serve(listener)
}

func (v *App) Stop() {
	v.health.Shutdown()
	v.srv.GracefulStop()
}
