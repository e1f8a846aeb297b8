package server

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// authExemptMethods are gRPC method prefixes callable without a token.
var authExemptMethods = []string{
	"/grpc.health.v1.Health/",
	"/grpc.reflection.v1.ServerReflection/",
	"/grpc.reflection.v1alpha.ServerReflection/",
}

// LoggingInterceptor logs the method, status code and duration of every
// unary RPC.
func LoggingInterceptor(
	ctx context.Context,
	req any,
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	attrs := []any{
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration", time.Since(start),
	}
	if err != nil {
		slog.Error("rpc completed", append(attrs, "error", err)...)
	} else {
		slog.Info("rpc completed", attrs...)
	}
	return resp, err
}

// RecoveryInterceptor catches panics in downstream handlers, logs the stack
// trace, and returns codes.Internal instead of crashing the server.
func RecoveryInterceptor(
	ctx context.Context,
	req any,
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic recovered in gRPC handler",
				"method", info.FullMethod,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
			err = status.Errorf(codes.Internal, "internal server error")
		}
	}()
	return handler(ctx, req)
}

// checkBearer validates an Authorization header value against token and
// returns a non-empty reason when it is rejected.
func checkBearer(header, token string) string {
	if header == "" {
		return "missing authorization header"
	}
	provided, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "invalid authorization scheme"
	}
	if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
		return "invalid token"
	}
	return ""
}

// AuthInterceptor returns a unary interceptor that checks the
// "authorization" metadata for a valid Bearer token. An empty token
// disables auth. Health and reflection are always exempt.
func AuthInterceptor(token string) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if token == "" {
			return handler(ctx, req)
		}
		for _, prefix := range authExemptMethods {
			if strings.HasPrefix(info.FullMethod, prefix) {
				return handler(ctx, req)
			}
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}
		var header string
		if vals := md.Get("authorization"); len(vals) > 0 {
			header = vals[0]
		}
		if reason := checkBearer(header, token); reason != "" {
			return nil, status.Error(codes.Unauthenticated, reason)
		}
		return handler(ctx, req)
	}
}

// AuthMiddleware wraps an http.Handler and checks the Authorization header
// for a valid Bearer token. An empty token disables auth. GET /v1/health is
// always exempt.
func AuthMiddleware(token string, next http.Handler) http.Handler {
	if token == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Path == "/v1/health" {
			next.ServeHTTP(w, r)
			return
		}
		if reason := checkBearer(r.Header.Get("Authorization"), token); reason != "" {
			writeError(w, http.StatusUnauthorized, reason)
			return
		}
		next.ServeHTTP(w, r)
	})
}
