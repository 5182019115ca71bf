package httpserver

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Elahizes/spin-wheel/internal/domain"
	apperrors "github.com/Elahizes/spin-wheel/internal/platform/errors"
)

type prizeResponse struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Weight    int       `json:"weight"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

type userResponse struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"displayName"`
	Admin       bool      `json:"admin"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (s *Server) registerAPIRoutes() {
	api := s.echo.Group("/api", s.requireAdmin)
	api.GET("/prizes", s.handleListPrizes)
	api.GET("/users/:id", s.handleGetUser)
}

func (s *Server) handleListPrizes(c echo.Context) error {
	prizes, err := s.catalog.ListPrizes(c.Request().Context())
	if err != nil {
		return apperrors.InternalError("failed to load prizes", err)
	}

	resp := make([]prizeResponse, 0, len(prizes))
	for _, p := range prizes {
		resp = append(resp, prizeResponse{
			ID:        p.ID,
			Label:     p.Label,
			Weight:    p.Weight,
			Active:    p.Active,
			CreatedAt: p.CreatedAt,
		})
	}

	if err := c.JSON(http.StatusOK, map[string]any{"prizes": resp}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleGetUser(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return apperrors.ValidationError("user id is required")
	}

	p, err := s.catalog.GetUserDetails(c.Request().Context(), id)
	if err != nil {
		return toStructuredError(err).WithField("user_id", id)
	}

	if err := c.JSON(http.StatusOK, toUserResponse(p)); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func toUserResponse(p *domain.Principal) userResponse {
	return userResponse{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		Admin:       p.Admin,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
