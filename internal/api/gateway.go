package api

import (
	"context"
	"crypto/subtle"
	"io"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/cakedek/myitemlibrary/internal/config"
	"github.com/cakedek/myitemlibrary/internal/ratelimit"
)

// APIKeyHeader carries the shared secret on every request.
const APIKeyHeader = "X-API-Key"

const recordTimeout = 500 * time.Millisecond

// Gateway guards API routes. Checks run in a fixed order: request size,
// rate limit, API key. Only then is the route handler called.
type Gateway struct {
	Key            string
	DoSProtection  bool
	MaxRequestSize int64
	Limiter        *ratelimit.Limiter
	Recorder       ratelimit.Recorder
}

// NewGateway builds a gateway from cfg. recorder may be nil.
func NewGateway(cfg *config.Config, limiter *ratelimit.Limiter, recorder ratelimit.Recorder) *Gateway {
	return &Gateway{
		Key:            cfg.API.Key,
		DoSProtection:  cfg.DoS.Enabled,
		MaxRequestSize: cfg.DoS.MaxRequestSizeBytes,
		Limiter:        limiter,
		Recorder:       recorder,
	}
}

// Protect wraps next for the given route name.
func (g *Gateway) Protect(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := &onceCloser{ReadCloser: r.Body}
		r.Body = body
		defer body.Close()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			p := recover()
			if p == nil {
				return
			}
			if p == http.ErrAbortHandler {
				panic(p)
			}
			slog.Error("handler panic", "route", route, "panic", p, "stack", string(debug.Stack()))
			if !rec.wroteHeader {
				sendResponse(rec, http.StatusInternalServerError, "Internal Server Error")
			}
		}()

		key := clientKey(r)

		if g.DoSProtection {
			if r.Method == http.MethodPost && r.ContentLength > g.MaxRequestSize {
				g.record(r, route, key, ratelimit.OutcomeTooLarge)
				sendResponse(rec, http.StatusRequestEntityTooLarge, "Request Entity Too Large")
				return
			}
			if g.Limiter != nil && !g.Limiter.Allow(key) {
				g.record(r, route, key, ratelimit.OutcomeRateLimited)
				sendResponse(rec, http.StatusTooManyRequests, "Too Many Requests")
				return
			}
		}

		if !g.authorized(r) {
			g.record(r, route, key, ratelimit.OutcomeUnauthorized)
			sendResponse(rec, http.StatusUnauthorized, "Unauthorized")
			return
		}

		if g.DoSProtection && r.Method == http.MethodPost {
			r.Body = http.MaxBytesReader(rec, body, g.MaxRequestSize)
		}

		g.record(r, route, key, ratelimit.OutcomeAllowed)
		next.ServeHTTP(rec, r)
	})
}

// authorized compares the presented key in constant time. An empty
// configured key never matches.
func (g *Gateway) authorized(r *http.Request) bool {
	if g.Key == "" {
		return false
	}
	presented := r.Header.Get(APIKeyHeader)
	return subtle.ConstantTimeCompare([]byte(presented), []byte(g.Key)) == 1
}

func (g *Gateway) record(r *http.Request, route, key, outcome string) {
	if g.Recorder == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), recordTimeout)
	defer cancel()

	err := g.Recorder.Record(ctx, ratelimit.Event{
		Key:     key,
		Outcome: outcome,
		Method:  recordedMethod(r.Method),
		Path:    route,
		At:      time.Now(),
	})
	if err != nil {
		slog.Warn("recording gateway decision", "error", err, "outcome", outcome)
	}
}

// recordedMethod folds client-chosen methods into a fixed set so decision
// counters keyed by method stay bounded.
func recordedMethod(method string) string {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodDelete:
		return method
	default:
		return "OTHER"
	}
}

// clientKey identifies the caller by the host part of its remote address.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// onceCloser makes Close idempotent so the body is released exactly once.
type onceCloser struct {
	io.ReadCloser
	once sync.Once
	err  error
}

func (c *onceCloser) Close() error {
	c.once.Do(func() {
		if c.ReadCloser != nil {
			c.err = c.ReadCloser.Close()
		}
	})
	return c.err
}
