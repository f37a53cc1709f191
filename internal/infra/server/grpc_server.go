package server

import (
	"context"
	"errors"
	"net"
	"time"

	myGrpc "github.com/Miraines/MoonyAndStarry/rfi-service/internal/adapters/transport/grpc"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/adapters/transport/grpc/middleware"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/infra/config"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/infra/health"
	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const probeInterval = 10 * time.Second

// NewGRPCServer собирает служебный gRPC-сервер: health, reflection, метрики.
func NewGRPCServer(
	ctx context.Context,
	cfg *config.Config,
	reg prometheus.Registerer,
	logger *zap.Logger,
) (*grpc.Server, *grpchealth.Server, error) {
	// 1. Цепочка Unary-interceptor'ов
	opts := []grpc.ServerOption{
		grpc.UnaryInterceptor(middleware.ChainUnaryServer(ctx, logger, cfg.RateLimitRPS, cfg.RateLimitBurst)),
	}

	// 2. TLS – только если заданы сертификат и ключ
	if cfg.TLSEnabled() {
		creds, err := credentials.NewServerTLSFromFile(cfg.HTTPSCertFile, cfg.HTTPSKeyFile)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, grpc.Creds(creds))
	}

	grpcServer := grpc.NewServer(opts...)

	// 3. Сервисы и метрики
	hs := grpchealth.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	reflection.Register(grpcServer)

	grpc_prometheus.EnableHandlingTimeHistogram()
	grpc_prometheus.Register(grpcServer)
	if err := reg.Register(grpc_prometheus.DefaultServerMetrics); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, nil, err
		}
	}
	return grpcServer, hs, nil
}

// StartGRPCServer поднимает gRPC-сервер и пробер здоровья; возвращается после отмены ctx.
func StartGRPCServer(
	ctx context.Context,
	cfg *config.Config,
	checker *health.Checker,
	reg prometheus.Registerer,
	logger *zap.Logger,
) error {
	// 1. Открыть порт
	lis, err := net.Listen("tcp", cfg.GRPCAddress)
	if err != nil {
		return err
	}

	grpcServer, hs, err := NewGRPCServer(ctx, cfg, reg, logger)
	if err != nil {
		_ = lis.Close()
		return err
	}

	prober := myGrpc.NewHealthProber(hs, checker, probeInterval, logger)
	go prober.Run(ctx)

	// 2. Запустить в горутине
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddress))
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// 3. Ждём сигнала на остановку
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}
	logger.Info("ctx cancelled, stopping gRPC server…")

	// 4. Graceful stop с 5-секундным таймаутом
	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(done)
	}()

	select {
	case <-stopCtx.Done():
		grpcServer.Stop()
	case <-done:
	}
	logger.Info("gRPC server stopped")
	return nil
}
