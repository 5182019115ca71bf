package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Elahizes/spin-wheel/internal/app"
	"github.com/Elahizes/spin-wheel/internal/domain"
	"github.com/Elahizes/spin-wheel/internal/platform/correlation"
	apperrors "github.com/Elahizes/spin-wheel/internal/platform/errors"
)

const principalKey = "principal"

func correlationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := correlation.FromHeader(c.Request().Header.Get(correlation.Header))
		c.Response().Header().Set(correlation.Header, id)
		ctx := correlation.WithID(c.Request().Context(), id)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// ErrorHandlingMiddleware renders returned errors as structured JSON. A nil
// recorder disables error metrics.
func ErrorHandlingMiddleware(recorder ErrorRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			if _, ok := errors.AsType[*echo.HTTPError](err); ok {
				return err
			}

			structuredErr := toStructuredError(err)
			logError(c, structuredErr)
			if recorder != nil {
				recorder.RecordError(string(structuredErr.Type))
			}

			if err := c.JSON(structuredErr.HTTPStatus(), structuredErr.ToResponse()); err != nil {
				return fmt.Errorf("failed to write error response: %w", err)
			}
			return nil
		}
	}
}

// toStructuredError maps domain failures onto the HTTP error taxonomy.
func toStructuredError(err error) *apperrors.Error {
	if structuredErr, ok := errors.AsType[*apperrors.Error](err); ok {
		return structuredErr
	}

	if commitErr, ok := errors.AsType[*app.CommitError](err); ok {
		return apperrors.StoreCommitError("failed to commit delete chunk", err).
			WithField("deleted", commitErr.Deleted).
			WithField("chunk", commitErr.Chunk)
	}

	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return apperrors.UnauthenticatedError("authentication required", err)
	case errors.Is(err, domain.ErrPermissionDenied):
		return apperrors.PermissionDeniedError("admin capability required")
	case errors.Is(err, domain.ErrPrincipalNotFound):
		return apperrors.NotFoundError("principal not found")
	case errors.Is(err, domain.ErrUnknownFeed):
		return apperrors.ValidationError(err.Error())
	}

	return apperrors.AsStructuredError(err)
}

func logError(c echo.Context, err *apperrors.Error) {
	attrs := []any{
		"error_type", err.Type,
		"message", err.Message,
		"path", c.Request().URL.Path,
		"method", c.Request().Method,
		"status", err.HTTPStatus(),
	}

	for k, v := range err.Context {
		attrs = append(attrs, k, v)
	}

	if p, ok := c.Get(principalKey).(*domain.Principal); ok {
		attrs = append(attrs, "principal_id", p.ID)
	}

	ctx := c.Request().Context()
	switch err.Type {
	case apperrors.TypeValidation:
		slog.InfoContext(ctx, "Validation error", attrs...)
	case apperrors.TypeNotFound:
		slog.InfoContext(ctx, "Not found", attrs...)
	case apperrors.TypeUnauthenticated:
		if err.Cause != nil {
			attrs = append(attrs, "cause", err.Cause)
		}
		slog.InfoContext(ctx, "Unauthenticated", attrs...)
	case apperrors.TypePermissionDenied:
		slog.WarnContext(ctx, "Permission denied", attrs...)
	case apperrors.TypeConflict:
		slog.WarnContext(ctx, "Conflict", attrs...)
	case apperrors.TypeInternal, apperrors.TypeExternal, apperrors.TypeStoreCommit:
		if err.Cause != nil {
			attrs = append(attrs, "cause", err.Cause)
		}
		slog.ErrorContext(ctx, "Request failed", attrs...)
	default:
		slog.ErrorContext(ctx, "Unknown error type", attrs...)
	}
}

// requireAdmin authenticates the bearer credential and requires the admin
// capability. The principal is stored on the echo and request contexts.
func (s *Server) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		p, err := s.gate.Authenticate(ctx, bearerToken(c))
		if err != nil {
			return err
		}
		if err := s.gate.Authorize(p); err != nil {
			c.Set(principalKey, p)
			return err
		}

		ctx = domain.WithPrincipal(ctx, p)
		ctx = correlation.WithActor(ctx, p.ID)
		c.SetRequest(c.Request().WithContext(ctx))
		c.Set(principalKey, p)
		return next(c)
	}
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}
