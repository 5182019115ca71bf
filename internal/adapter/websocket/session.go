package websocket

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/Elahizes/spin-wheel/internal/domain"
	"github.com/Elahizes/spin-wheel/internal/feed"
)

// session is one dashboard activation: both feeds subscribed on connect,
// torn down when the connection ends.
type session struct {
	conn      *websocket.Conn
	principal *domain.Principal
	limit     int
	writer    *clientWriter
	manager   *feed.Manager
	metrics   Metrics
}

func newSession(conn *websocket.Conn, p *domain.Principal, limit int, source feed.Source, observer feed.Observer, metrics Metrics, clock clockwork.Clock) *session {
	conn.SetReadLimit(readLimit)
	return &session{
		conn:      conn,
		principal: p,
		limit:     limit,
		writer:    newClientWriter(conn, clock, metrics),
		manager:   feed.NewManager(source, observer),
		metrics:   metrics,
	}
}

// run blocks until the client disconnects or the session is closed.
func (s *session) run(ctx context.Context) {
	s.metrics.ConnectionOpened()
	defer s.metrics.ConnectionClosed()

	slog.InfoContext(ctx, "Dashboard connected", "principal_id", s.principal.ID, "limit", s.limit)
	defer func() {
		s.manager.TeardownAll()
		s.writer.stop("session closed")
		slog.InfoContext(ctx, "Dashboard disconnected", "principal_id", s.principal.ID)
	}()

	if err := s.manager.OnRecentEvents(s.limit, s.onRecent); err != nil {
		return
	}
	if err := s.manager.OnDistributionStats(s.onDistribution); err != nil {
		return
	}

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.DebugContext(ctx, "Dashboard read ended", "error", err)
			}
			return
		}
		s.writer.updateReadDeadline()
		s.handleFrame(ctx, data)
	}
}

func (s *session) close(reason string) {
	s.writer.stop(reason)
}

func (s *session) handleFrame(ctx context.Context, data []byte) {
	var frame clientFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		s.sendError("", errors.New("malformed frame"))
		return
	}
	if frame.Type != frameRefresh {
		s.sendError(domain.FeedName(frame.Feed), errors.New("unsupported frame type"))
		return
	}

	var err error
	if frame.Feed == "" {
		err = s.manager.RefreshAll()
	} else {
		err = s.manager.Refresh(domain.FeedName(frame.Feed))
	}
	if err != nil {
		slog.DebugContext(ctx, "Dashboard refresh rejected", "feed", frame.Feed, "error", err)
		s.sendError(domain.FeedName(frame.Feed), err)
	}
}

func (s *session) onRecent(ev domain.Event[[]domain.SpinEvent]) {
	if ev.Err != nil {
		s.sendError(domain.FeedRecentEvents, ev.Err)
		return
	}
	payload, err := encodeRecent(ev.Data)
	if err != nil {
		slog.Error("Failed to encode recent events", "error", err)
		return
	}
	s.writer.send(string(domain.FeedRecentEvents), payload)
}

func (s *session) onDistribution(ev domain.Event[domain.PrizeDistribution]) {
	if ev.Err != nil {
		s.sendError(domain.FeedDistributionStats, ev.Err)
		return
	}
	payload, err := encodeDistribution(ev.Data)
	if err != nil {
		slog.Error("Failed to encode distribution", "error", err)
		return
	}
	s.writer.send(string(domain.FeedDistributionStats), payload)
}

func (s *session) sendError(name domain.FeedName, cause error) {
	payload, err := encodeError(name, cause)
	if err != nil {
		return
	}
	s.writer.send(frameError, payload)
}
