package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL  = 10 * time.Minute
	limiterSweepGap = time.Minute
)

// RateLimiter guarda um token bucket por chave (IP ou usuário).
type RateLimiter struct {
	limit     rate.Limit
	burst     int
	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(reqPerSec float64, burst int) *RateLimiter {
	return &RateLimiter{
		limit:     rate.Limit(reqPerSec),
		burst:     burst,
		buckets:   make(map[string]*bucket),
		lastSweep: time.Now(),
	}
}

func (l *RateLimiter) allow(key string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now

	if now.Sub(l.lastSweep) > limiterSweepGap {
		for k, other := range l.buckets {
			if now.Sub(other.lastSeen) > limiterIdleTTL {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}

	return b.limiter.AllowN(now, 1)
}

// retryAfter estima em segundos quando o próximo token fica disponível.
func (l *RateLimiter) retryAfter() string {
	if l.limit <= 0 {
		return "60"
	}
	secs := math.Ceil(1 / float64(l.limit))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(int(secs))
}

func (l *RateLimiter) middleware(scope string, keyFunc func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFunc(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			if !l.allow(scope + ":" + key) {
				log.Warn().Str("escopo", scope).Str("chave", key).Str("path", r.URL.Path).Msg("limite de requisições excedido")
				w.Header().Set("Retry-After", l.retryAfter())
				writeError(w, http.StatusTooManyRequests, "RATE_LIMIT", "Muitas requisições. Tente novamente em instantes.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IPRateLimit protege rotas públicas (login, visão compartilhada) por IP de origem.
func IPRateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return limiter.middleware("ip", realIPFromRequest)
}

// UserRateLimit limita por usuário autenticado; depende de Auth antes na cadeia.
func UserRateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return limiter.middleware("usuario", func(r *http.Request) string {
		if a, ok := GetAtor(r.Context()); ok {
			return a.ID.String()
		}
		return GetSubject(r.Context())
	})
}

func realIPFromRequest(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
