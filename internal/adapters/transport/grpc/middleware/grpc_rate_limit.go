package middleware

import (
	"context"
	"net"
	"time"

	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/infra/ratelimit"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// NewRateLimitPerIP – тот же лимитер для unary-вызовов; ключ берётся из peer.
// Вызовы без peer отклоняются.
func NewRateLimitPerIP(
	ctx context.Context,
	limit, burst int,
	cacheSize int,
	ttl time.Duration,
) grpc.UnaryServerInterceptor {
	l := ratelimit.New(ctx, limit, burst, cacheSize, ttl)

	return func(
		ctx context.Context,
		req any,
		_ *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		host, ok := peerHost(ctx)
		if !ok || !l.Allow(host) {
			return nil, status.Error(codes.ResourceExhausted, "rate limit exceeded")
		}
		return handler(ctx, req)
	}
}

// peerHost отрезает порт; для bufconn и unix-сокетов адрес берётся целиком.
func peerHost(ctx context.Context) (string, bool) {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return "", false
	}
	host, _, err := net.SplitHostPort(p.Addr.String())
	if err != nil {
		return p.Addr.String(), true
	}
	return host, true
}
