// Package server holds the daemon-side surfaces: the gRPC documents
// service, database health reporting and the pending-document poller.
package server

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Pinger is satisfied by *repository.DB.
type Pinger interface {
	HealthCheck(ctx context.Context, timeout time.Duration, logger *slog.Logger) error
}

// HealthMonitor flips the overall gRPC health status with database reachability.
type HealthMonitor struct {
	db       Pinger
	hs       *health.Server
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

func NewHealthMonitor(db Pinger, hs *health.Server, interval time.Duration, logger *slog.Logger) *HealthMonitor {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &HealthMonitor{db: db, hs: hs, interval: interval, timeout: 3 * time.Second, logger: logger}
}

// Check pings once and updates the serving status.
func (m *HealthMonitor) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if err := m.db.HealthCheck(ctx, m.timeout, m.logger); err != nil {
		m.logger.Warn("database unhealthy", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	m.hs.SetServingStatus("", status)
	return status
}

// Run checks until ctx is done.
func (m *HealthMonitor) Run(ctx context.Context) {
	m.Check(ctx)
	t := time.NewTicker(m.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Check(ctx)
		}
	}
}
