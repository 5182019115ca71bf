package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Elahizes/spin-wheel/internal/domain"
)

const setupSecretHeader = "X-Admin-Setup-Secret"

type setupRequest struct {
	UID    string `json:"uid" form:"uid"`
	Secret string `json:"secret" form:"secret"`
}

type setupResponse struct {
	OK    bool   `json:"ok"`
	UID   string `json:"uid,omitempty"`
	Error string `json:"error,omitempty"`
}

func (s *Server) registerSetupRoutes() {
	cors := middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{s.config.CORSAllowOrigin},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	})
	methods := []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	s.echo.Match(methods, "/setAdminClaim", s.handleSetAdminClaim, cors, newRateLimiter(setupLimit))
}

// handleSetAdminClaim answers in its own {ok, error} shape rather than the
// structured error body, and never reports partial success.
func (s *Server) handleSetAdminClaim(c echo.Context) error {
	if c.Request().Method == http.MethodOptions {
		return c.NoContent(http.StatusNoContent)
	}

	var body setupRequest
	if c.Request().Method == http.MethodPost {
		if err := (&echo.DefaultBinder{}).BindBody(c, &body); err != nil {
			slog.DebugContext(c.Request().Context(), "Ignoring unreadable setup body", "error", err)
		}
	}

	secret := firstNonEmpty(c.QueryParam("secret"), body.Secret, c.Request().Header.Get(setupSecretHeader))
	uid := strings.TrimSpace(firstNonEmpty(c.QueryParam("uid"), body.UID))

	p, err := s.gate.GrantAdmin(c.Request().Context(), uid, secret)
	if err != nil {
		status, msg := setupFailure(err)
		if status == http.StatusInternalServerError {
			slog.ErrorContext(c.Request().Context(), "setAdminClaim failed", "uid", uid, "error", err)
		} else {
			slog.WarnContext(c.Request().Context(), "setAdminClaim rejected", "status", status, "ip", c.RealIP())
		}
		return writeSetup(c, status, setupResponse{Error: msg})
	}

	return writeSetup(c, http.StatusOK, setupResponse{OK: true, UID: p.ID})
}

func setupFailure(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrSecretNotConfigured):
		return http.StatusInternalServerError, "Missing server secret (ADMIN_SETUP_SECRET)."
	case errors.Is(err, domain.ErrInvalidSecret):
		return http.StatusForbidden, "Forbidden: invalid secret"
	case errors.Is(err, domain.ErrMissingUID):
		return http.StatusBadRequest, "uid is required"
	case errors.Is(err, domain.ErrPrincipalNotFound):
		return http.StatusNotFound, "user not found"
	default:
		return http.StatusInternalServerError, "failed to set admin claim"
	}
}

func writeSetup(c echo.Context, status int, resp setupResponse) error {
	if err := c.JSON(status, resp); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
