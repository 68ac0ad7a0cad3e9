package httpapi

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/assetledger/backend/internal/apierrors"
	"github.com/assetledger/backend/internal/auth"
	"github.com/assetledger/backend/internal/domain"
	"github.com/assetledger/backend/internal/logging"
)

type ctxKey string

const claimsCtxKey ctxKey = "claims"

// Authenticate parses the bearer token into domain.UserClaims and stores
// them on the request context; it never rejects a missing token itself,
// leaving that decision to rbac.Middleware.Enforce so public routes still
// pass through.
func Authenticate(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if strings.HasPrefix(header, "Bearer ") {
				raw := strings.TrimPrefix(header, "Bearer ")
				if claims, err := tokens.Validate(raw); err == nil {
					if userClaims, err := claims.ToUserClaims(); err == nil {
						ctx := context.WithValue(r.Context(), claimsCtxKey, userClaims)
						r = r.WithContext(ctx)
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClaimsFromContext implements rbac.ClaimsFromContext.
func ClaimsFromContext(r *http.Request) (domain.UserClaims, bool) {
	claims, ok := r.Context().Value(claimsCtxKey).(domain.UserClaims)
	return claims, ok
}

// RequestLogger logs each request's method, path, status, and duration.
func RequestLogger(log *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			log.WithFields(map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      rec.status,
				"duration_ms": time.Since(start).Milliseconds(),
			}).Info("http request")
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// limiterStore keeps one token bucket per client IP, matching the
// per-client throttling SPEC_FULL's ambient stack calls for (§7).
type limiterStore struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	r        rate.Limit
	burst    int
}

func newLimiterStore(requestsPerSecond float64, burst int) *limiterStore {
	return &limiterStore{limiters: make(map[string]*rate.Limiter), r: rate.Limit(requestsPerSecond), burst: burst}
}

func (s *limiterStore) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.limiters[key]
	if !ok {
		l = rate.NewLimiter(s.r, s.burst)
		s.limiters[key] = l
	}
	return l
}

// RateLimit caps each remote address to requestsPerSecond with the given
// burst, returning 429 once exhausted.
func RateLimit(requestsPerSecond float64, burst int) func(http.Handler) http.Handler {
	store := newLimiterStore(requestsPerSecond, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)
			if !store.get(key).Allow() {
				writeError(w, r, apierrors.RateLimited("too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	return r.RemoteAddr
}
