package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Elahizes/spin-wheel/internal/domain"
	"github.com/Elahizes/spin-wheel/internal/platform/config"
)

// ErrorRecorder counts structured error responses by type.
type ErrorRecorder interface {
	RecordError(errType string)
}

// Services bundles what the HTTP surface dispatches to. Dashboard, Metrics
// and HTTPMetrics are optional.
type Services struct {
	Deleter     domain.SpinDeleter
	Gate        domain.Gatekeeper
	Catalog     domain.CatalogService
	Dashboard   http.Handler
	Metrics     http.Handler
	HTTPMetrics HTTPMetrics
}

// HTTPMetrics is the request instrumentation installed on every route.
type HTTPMetrics interface {
	ErrorRecorder
	Middleware() echo.MiddlewareFunc
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	deleter domain.SpinDeleter
	gate    domain.Gatekeeper
	catalog domain.CatalogService

	dashboardHandler http.Handler
	metricsHandler   http.Handler
	httpMetrics      HTTPMetrics

	healthChecks []HealthCheck
	startTime    time.Time
}

func NewServer(cfg *config.Config, svc Services, healthChecks []HealthCheck) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = jsonSerializer{}

	srv := &Server{
		echo:             e,
		config:           cfg,
		deleter:          svc.Deleter,
		gate:             svc.Gate,
		catalog:          svc.Catalog,
		dashboardHandler: svc.Dashboard,
		metricsHandler:   svc.Metrics,
		httpMetrics:      svc.HTTPMetrics,
		healthChecks:     healthChecks,
		startTime:        time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// jsonSerializer routes echo's bind and render paths through jsoniter, so
// request types may hold jsoniter.RawMessage fields.
type jsonSerializer struct{}

func (jsonSerializer) Serialize(c echo.Context, i any, indent string) error {
	enc := json.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (jsonSerializer) Deserialize(c echo.Context, i any) error {
	if err := json.NewDecoder(c.Request().Body).Decode(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body").SetInternal(err)
	}
	return nil
}

// ServeHTTP exposes the router, mainly for tests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
