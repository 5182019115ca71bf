package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/Elahizes/spin-wheel/internal/domain"
	"github.com/Elahizes/spin-wheel/internal/feed"
	"github.com/Elahizes/spin-wheel/internal/platform/correlation"
	apperrors "github.com/Elahizes/spin-wheel/internal/platform/errors"
)

const (
	readLimit      = 4096
	shutdownReason = "server shutting down"
)

type gatekeeper interface {
	Authenticate(ctx context.Context, credential string) (*domain.Principal, error)
	Authorize(principal *domain.Principal) error
}

// Metrics records connection and frame counts.
type Metrics interface {
	ConnectionOpened()
	ConnectionClosed()
	FrameSent(frameType string)
	FrameDropped()
	ConnectionRejected(reason string)
}

type noopMetrics struct{}

func (noopMetrics) ConnectionOpened()         {}
func (noopMetrics) ConnectionClosed()         {}
func (noopMetrics) FrameSent(string)          {}
func (noopMetrics) FrameDropped()             {}
func (noopMetrics) ConnectionRejected(string) {}

type Config struct {
	AllowedOrigins []string
	Development    bool
	DefaultLimit   int
	MaxConnections int
}

// Handler upgrades authenticated admin requests on /ws/dashboard and runs
// one dashboard session per connection.
type Handler struct {
	gate     gatekeeper
	source   feed.Source
	observer feed.Observer
	metrics  Metrics
	clock    clockwork.Clock

	upgrader     websocket.Upgrader
	limiter      *connLimiter
	defaultLimit int

	mu       sync.Mutex
	closing  bool
	sessions map[*session]struct{}
	wg       sync.WaitGroup
}

// NewHandler creates a Handler. observer and metrics may be nil.
func NewHandler(gate gatekeeper, source feed.Source, observer feed.Observer, metrics Metrics, clock clockwork.Clock, cfg Config) *Handler {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Handler{
		gate:     gate,
		source:   source,
		observer: observer,
		metrics:  metrics,
		clock:    clock,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     NewCheckOrigin(cfg.AllowedOrigins, cfg.Development),
		},
		limiter:      newConnLimiter(cfg.MaxConnections),
		defaultLimit: cfg.DefaultLimit,
		sessions:     make(map[*session]struct{}),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.limiter.acquire() {
		h.metrics.ConnectionRejected("capacity")
		writeError(w, apperrors.ExternalError("too many dashboard connections", nil), http.StatusServiceUnavailable)
		return
	}
	defer h.limiter.release()

	ctx := r.Context()
	p, err := h.gate.Authenticate(ctx, credentialFrom(r))
	if err != nil {
		h.metrics.ConnectionRejected("unauthenticated")
		slog.InfoContext(ctx, "Dashboard connection unauthenticated", "error", err)
		writeError(w, apperrors.UnauthenticatedError("authentication required", err), 0)
		return
	}
	if err := h.gate.Authorize(p); err != nil {
		h.metrics.ConnectionRejected("permission-denied")
		slog.WarnContext(ctx, "Dashboard connection denied", "principal_id", p.ID)
		writeError(w, apperrors.PermissionDeniedError("admin capability required"), 0)
		return
	}

	limit, err := h.parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		h.metrics.ConnectionRejected("invalid-limit")
		writeError(w, apperrors.ValidationError("limit must be an integer"), 0)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.metrics.ConnectionRejected("upgrade")
		slog.WarnContext(ctx, "WebSocket upgrade failed", "error", err)
		return
	}

	ctx = correlation.WithActor(ctx, p.ID)
	sess := newSession(conn, p, limit, h.source, h.observer, h.metrics, h.clock)
	if !h.register(sess) {
		sess.close(shutdownReason)
		return
	}
	defer h.unregister(sess)

	sess.run(ctx)
}

// Shutdown closes every open session and waits until they have released
// their feeds.
func (h *Handler) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.closing = true
	for s := range h.sessions {
		s.close(shutdownReason)
	}
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ActiveConnections returns the number of admitted connections.
func (h *Handler) ActiveConnections() int {
	return h.limiter.count()
}

func (h *Handler) register(s *session) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closing {
		return false
	}
	h.sessions[s] = struct{}{}
	h.wg.Add(1)
	return true
}

func (h *Handler) unregister(s *session) {
	h.mu.Lock()
	delete(h.sessions, s)
	h.mu.Unlock()
	h.wg.Done()
}

func (h *Handler) parseLimit(raw string) (int, error) {
	if raw == "" {
		return h.defaultLimit, nil
	}
	return strconv.Atoi(raw)
}

// credentialFrom reads the bearer header, falling back to the token query
// parameter for browsers that cannot set headers on upgrade requests.
func credentialFrom(r *http.Request) string {
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return r.URL.Query().Get("token")
}

func writeError(w http.ResponseWriter, err *apperrors.Error, status int) {
	if status == 0 {
		status = err.HTTPStatus()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(err.ToResponse())
}
