// Package grpc – служебный gRPC-интерфейс: стандартный health-сервис,
// статус которого следит за БД и Redis.
package grpc

import (
	"context"
	"time"

	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/infra/health"
	"go.uber.org/zap"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName – имя, под которым публикуется статус в grpc.health.v1.
const ServiceName = "rfi.v1.RFIService"

type HealthProber struct {
	srv      *grpchealth.Server
	checker  *health.Checker
	interval time.Duration
	log      *zap.Logger
}

func NewHealthProber(srv *grpchealth.Server, checker *health.Checker, interval time.Duration, log *zap.Logger) *HealthProber {
	return &HealthProber{srv: srv, checker: checker, interval: interval, log: log}
}

// Probe выполняет одну проверку и выставляет статус.
func (p *HealthProber) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	results, ok := p.checker.Run(ctx)

	st := healthpb.HealthCheckResponse_SERVING
	if !ok {
		st = healthpb.HealthCheckResponse_NOT_SERVING
		for name, err := range results {
			if err != nil {
				p.log.Warn("dependency unhealthy", zap.String("check", name), zap.Error(err))
			}
		}
	}
	p.srv.SetServingStatus("", st)
	p.srv.SetServingStatus(ServiceName, st)
	return st
}

// Run опрашивает зависимости до отмены ctx, затем переводит сервер в NOT_SERVING.
func (p *HealthProber) Run(ctx context.Context) {
	p.Probe(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			p.srv.Shutdown()
			return
		case <-ticker.C:
			p.Probe(ctx)
		}
	}
}
