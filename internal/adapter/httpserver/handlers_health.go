package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/Elahizes/spin-wheel/internal/platform/version"
)

// HealthCheck is a named dependency probe.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type probeStatus struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func (s *Server) registerHealthRoutes() {
	s.echo.GET("/health/startup", s.probe(2*time.Second))
	s.echo.GET("/health/ready", s.probe(5*time.Second))
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/version", s.handleVersion)
}

// probe runs every dependency check concurrently within timeout. Any failure
// answers 503 with the outcome of each check.
func (s *Server) probe(timeout time.Duration) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
		defer cancel()

		result := s.checkDependencies(ctx)
		status := http.StatusOK
		if result.Status != "ready" {
			status = http.StatusServiceUnavailable
		}
		if err := c.JSON(status, result); err != nil {
			return fmt.Errorf("failed to write probe response: %w", err)
		}
		return nil
	}
}

func (s *Server) checkDependencies(ctx context.Context) probeStatus {
	var (
		mu     sync.Mutex
		failed bool
	)
	checks := make(map[string]string, len(s.healthChecks))

	var g errgroup.Group
	for _, hc := range s.healthChecks {
		g.Go(func() error {
			err := hc.Check(ctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				checks[hc.Name] = err.Error()
				failed = true
				return nil
			}
			checks[hc.Name] = "ok"
			return nil
		})
	}
	_ = g.Wait()

	if failed {
		return probeStatus{Status: "unhealthy", Checks: checks}
	}
	return probeStatus{Status: "ready", Checks: checks}
}

func (s *Server) handleLiveness(c echo.Context) error {
	err := c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.startTime).Seconds(),
	})
	if err != nil {
		return fmt.Errorf("failed to write liveness response: %w", err)
	}
	return nil
}

func (s *Server) handleVersion(c echo.Context) error {
	if err := c.JSON(http.StatusOK, version.Get()); err != nil {
		return fmt.Errorf("failed to write version response: %w", err)
	}
	return nil
}
