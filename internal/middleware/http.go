package middleware

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"pingplatform/internal/auth"
	"pingplatform/internal/authz"
	"pingplatform/internal/rate"
	"pingplatform/internal/util"
)

const DeviceHeader = "X-Device-ID"

func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := uuid.NewString()
		r = r.WithContext(WithRequestID(r.Context(), rid))
		w.Header().Set("X-Request-ID", rid)
		next.ServeHTTP(w, r)
	})
}

// DeviceCookie identifies the client. The cookie wins over the header; a
// client with neither gets a fresh id and cookie.
func DeviceCookie(name string, secure func(*http.Request) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(name); err == nil {
				id = strings.TrimSpace(c.Value)
			}
			if id == "" {
				id = strings.TrimSpace(r.Header.Get(DeviceHeader))
			}
			if id == "" || len(id) > 64 {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     name,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					Secure:   secure(r),
					SameSite: http.SameSiteLaxMode,
					MaxAge:   int((365 * 24 * time.Hour).Seconds()),
				})
			}
			next.ServeHTTP(w, r.WithContext(WithDevice(r.Context(), id)))
		})
	}
}

type TokenValidator interface {
	ValidateToken(ctx context.Context, raw string) (*auth.Claims, error)
}

// Authn reads an optional bearer token. Requests without one continue as
// guests; an invalid or revoked token is rejected.
func Authn(v TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if h == "" {
				next.ServeHTTP(w, r)
				return
			}
			raw, ok := strings.CutPrefix(h, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				util.WriteError(w, http.StatusUnauthorized, "unauthorized", "bearer token required", RequestID(r.Context()))
				return
			}
			claims, err := v.ValidateToken(r.Context(), strings.TrimSpace(raw))
			if err != nil {
				if !errors.Is(err, auth.ErrInvalidToken) {
					log.Printf("token validation failed request_id=%s err=%v", RequestID(r.Context()), err)
				}
				util.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid or revoked session token", RequestID(r.Context()))
				return
			}
			ctx := WithClaims(r.Context(), claims)
			ctx = WithDevice(ctx, claims.DeviceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Authorize checks the caller's role against the path and method.
func Authorize(e *authz.Enforcer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := Role(r.Context())
			ok, err := e.Allow(role, r.URL.Path, authz.Action(r.Method))
			if err != nil {
				util.WriteError(w, http.StatusInternalServerError, "internal_error", "authorization check failed", RequestID(r.Context()))
				return
			}
			if !ok {
				if role == "" {
					util.WriteError(w, http.StatusUnauthorized, "unauthorized", "authentication required", RequestID(r.Context()))
					return
				}
				util.WriteError(w, http.StatusForbidden, "forbidden", "not allowed for role "+string(role), RequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func RateLimit(l *rate.Limiter, route string, limit int, window time.Duration, trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := route + ":" + ClientIP(r, trustProxy)
			if !l.Allow(key, limit, window) {
				util.WriteError(w, http.StatusTooManyRequests, "rate_limited", "too many requests", RequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			parts := strings.Split(xff, ",")
			return strings.TrimSpace(parts[0])
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func RequestLogger(trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sr, r)
			log.Printf("request method=%s path=%s status=%d duration_ms=%d request_id=%s remote_ip=%s",
				r.Method, r.URL.Path, sr.status, time.Since(start).Milliseconds(), RequestID(r.Context()), ClientIP(r, trustProxy))
		})
	}
}
