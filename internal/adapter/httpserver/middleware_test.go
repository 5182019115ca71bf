package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Elahizes/spin-wheel/internal/app"
	"github.com/Elahizes/spin-wheel/internal/domain"
	"github.com/Elahizes/spin-wheel/internal/platform/correlation"
	apperrors "github.com/Elahizes/spin-wheel/internal/platform/errors"
)

func runErrorMiddleware(t *testing.T, recorder ErrorRecorder, handlerErr error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/test", nil), rec)

	err := ErrorHandlingMiddleware(recorder)(func(c echo.Context) error {
		return handlerErr
	})(c)
	require.NoError(t, err)
	return rec
}

func TestErrorMiddleware_Mapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   apperrors.ErrorType
	}{
		{"structured", apperrors.ValidationError("invalid"), http.StatusBadRequest, apperrors.TypeValidation},
		{"plain", errors.New("boom"), http.StatusInternalServerError, apperrors.TypeInternal},
		{"unauthenticated", fmt.Errorf("%w: expired", domain.ErrUnauthenticated), http.StatusUnauthorized, apperrors.TypeUnauthenticated},
		{"permission denied", domain.ErrPermissionDenied, http.StatusForbidden, apperrors.TypePermissionDenied},
		{"not found", fmt.Errorf("load: %w", domain.ErrPrincipalNotFound), http.StatusNotFound, apperrors.TypeNotFound},
		{"unknown feed", domain.ErrUnknownFeed, http.StatusBadRequest, apperrors.TypeValidation},
		{"commit", &app.CommitError{Chunk: 1, Err: errors.New("x")}, http.StatusBadGateway, apperrors.TypeStoreCommit},
		{"external", apperrors.ExternalError("api failed", errors.New("timeout")), http.StatusBadGateway, apperrors.TypeExternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := runErrorMiddleware(t, nil, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var resp apperrors.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantType, resp.Type)
		})
	}
}

func TestErrorMiddleware_HidesInternalCause(t *testing.T) {
	rec := runErrorMiddleware(t, nil, errors.New("password=hunter2"))

	assert.NotContains(t, rec.Body.String(), "hunter2")
}

func TestErrorMiddleware_RecordsErrorType(t *testing.T) {
	recorder := &mockErrorRecorder{}

	runErrorMiddleware(t, recorder, domain.ErrPermissionDenied)
	runErrorMiddleware(t, recorder, nil)

	assert.Equal(t, []string{"permission-denied"}, recorder.types)
}

func TestErrorMiddleware_PassesHTTPErrors(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/test", nil), httptest.NewRecorder())

	err := ErrorHandlingMiddleware(nil)(func(c echo.Context) error {
		return echo.ErrMethodNotAllowed
	})(c)

	assert.ErrorIs(t, err, echo.ErrMethodNotAllowed)
}

func TestCorrelationMiddleware(t *testing.T) {
	e := echo.New()

	var seen string
	handler := correlationMiddleware(func(c echo.Context) error {
		seen, _ = correlation.ID(c.Request().Context())
		return nil
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(correlation.Header, "abc-123")
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(correlation.Header))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(correlation.Header, "bad id!")
	rec = httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))
	assert.Len(t, seen, 8)
	assert.NotEqual(t, "bad id!", seen)
}

func TestRequireAdmin_StoresPrincipal(t *testing.T) {
	srv := newTestServer(t)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer admin-token")
	c := e.NewContext(req, httptest.NewRecorder())

	var fromCtx *domain.Principal
	var actor string
	err := srv.requireAdmin(func(c echo.Context) error {
		fromCtx, _ = domain.PrincipalFromContext(c.Request().Context())
		actor, _ = correlation.Actor(c.Request().Context())
		return nil
	})(c)

	require.NoError(t, err)
	require.NotNil(t, fromCtx)
	assert.Equal(t, "admin-1", fromCtx.ID)
	assert.Equal(t, "admin-1", actor)
	assert.Same(t, fromCtx, c.Get(principalKey))
}

func TestRequireAdmin_Rejections(t *testing.T) {
	srv := newTestServer(t, withGate(&mockGate{
		authenticateFn: func(_ context.Context, credential string) (*domain.Principal, error) {
			if credential == "" {
				return nil, domain.ErrUnauthenticated
			}
			return &domain.Principal{ID: "user-1"}, nil
		},
	}))
	e := echo.New()
	next := func(c echo.Context) error { return nil }

	for header, want := range map[string]error{
		"":               domain.ErrUnauthenticated,
		"Basic abc":      domain.ErrUnauthenticated,
		"Bearer user-tk": domain.ErrPermissionDenied,
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, header)
		err := srv.requireAdmin(next)(e.NewContext(req, httptest.NewRecorder()))
		assert.ErrorIs(t, err, want, header)
	}
}
