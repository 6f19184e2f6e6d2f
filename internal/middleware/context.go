package middleware

import (
	"context"
	"net/http"

	"pingplatform/internal/auth"
	"pingplatform/internal/models"
)

type ctxKey string

const (
	ctxRequestID ctxKey = "request_id"
	ctxDevice    ctxKey = "device"
	ctxClaims    ctxKey = "claims"
)

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxRequestID, id)
}

func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(ctxRequestID).(string)
	return v
}

func WithDevice(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxDevice, id)
}

// Device is the id that namespaces this client's persisted session.
func Device(ctx context.Context) string {
	v, _ := ctx.Value(ctxDevice).(string)
	return v
}

func WithClaims(ctx context.Context, c *auth.Claims) context.Context {
	return context.WithValue(ctx, ctxClaims, c)
}

func Claims(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(ctxClaims).(*auth.Claims)
	return c, ok && c != nil
}

// Role is the caller's role, empty for guests.
func Role(ctx context.Context) models.Role {
	if c, ok := Claims(ctx); ok {
		return c.Role
	}
	return ""
}

func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "same-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'; base-uri 'none'")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
