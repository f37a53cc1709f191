package middleware

import (
	"context"
	"time"

	grpc_middleware "github.com/grpc-ecosystem/go-grpc-middleware"
	grpc_zap "github.com/grpc-ecosystem/go-grpc-middleware/logging/zap"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/recovery"
	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ChainUnaryServer: recovery → логирование → метрики → лимит по IP.
func ChainUnaryServer(ctx context.Context, logger *zap.Logger, limit, burst int) grpc.UnaryServerInterceptor {
	return grpc_middleware.ChainUnaryServer(
		grpc_recovery.UnaryServerInterceptor(grpc_recovery.WithRecoveryHandler(func(p any) error {
			logger.Error("grpc panic recovered", zap.Any("panic", p))
			return status.Error(codes.Internal, "internal server error")
		})),
		grpc_zap.UnaryServerInterceptor(logger, grpc_zap.WithDecider(skipHealth)),
		grpc_prometheus.UnaryServerInterceptor,
		NewRateLimitPerIP(ctx, limit, burst, 10_000, time.Hour),
	)
}

// skipHealth не пишет в лог частые пробы здоровья без ошибок.
func skipHealth(fullMethod string, err error) bool {
	return err != nil || fullMethod != "/grpc.health.v1.Health/Check"
}
