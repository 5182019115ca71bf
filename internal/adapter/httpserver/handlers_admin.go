package httpserver

import (
	"fmt"
	"net/http"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	apperrors "github.com/Elahizes/spin-wheel/internal/platform/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const deleteBodyLimit = "2M"

type deleteSpinsRequest struct {
	IDs jsoniter.RawMessage `json:"ids"`
}

type deleteSpinsResponse struct {
	Deleted int `json:"deleted"`
}

func (s *Server) registerAdminRoutes() {
	admin := s.echo.Group("/api/admin", middleware.BodyLimit(deleteBodyLimit), s.requireAdmin)
	admin.POST("/delete-spins", s.handleDeleteSpins)
}

func (s *Server) handleDeleteSpins(c echo.Context) error {
	var req deleteSpinsRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("request body must be a JSON object")
	}

	deleted, err := s.deleter.DeleteSpins(c.Request().Context(), parseIDs(req.IDs))
	if err != nil {
		return err
	}

	if err := c.JSON(http.StatusOK, deleteSpinsResponse{Deleted: deleted}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

// parseIDs keeps the truthy elements of an array as ids: non-empty strings,
// non-zero numbers and true. Anything that is not an array yields no ids.
// Objects and nested arrays are dropped.
func parseIDs(raw jsoniter.RawMessage) []string {
	var items []jsoniter.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return nil
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		v := jsoniter.Get(item)
		switch v.ValueType() {
		case jsoniter.StringValue:
			if id := v.ToString(); id != "" {
				ids = append(ids, id)
			}
		case jsoniter.NumberValue:
			if n := v.ToFloat64(); n != 0 {
				ids = append(ids, strconv.FormatFloat(n, 'f', -1, 64))
			}
		case jsoniter.BoolValue:
			if v.ToBool() {
				ids = append(ids, "true")
			}
		}
	}
	return ids
}
