package httpserver

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Elahizes/spin-wheel/internal/domain"
)

func TestListPrizes(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	srv := newTestServer(t, withCatalog(&mockCatalog{
		listPrizesFn: func(_ context.Context) ([]domain.Prize, error) {
			return []domain.Prize{{ID: "p1", Label: "Cap", Weight: 2, Active: true, CreatedAt: created}}, nil
		},
	}))

	rec := serve(srv, http.MethodGet, "/api/prizes", "", bearer("admin-token"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"prizes":[{"id":"p1","label":"Cap","weight":2,"active":true,"createdAt":"2026-01-02T03:04:05Z"}]}`, rec.Body.String())
}

func TestListPrizes_EmptyIsArray(t *testing.T) {
	srv := newTestServer(t)

	rec := serve(srv, http.MethodGet, "/api/prizes", "", bearer("admin-token"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"prizes":[]}`, rec.Body.String())
}

func TestListPrizes_RequiresAdmin(t *testing.T) {
	srv := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, serve(srv, http.MethodGet, "/api/prizes", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, serve(srv, http.MethodGet, "/api/prizes", "", bearer("user-token")).Code)
}

func TestListPrizes_StoreError(t *testing.T) {
	srv := newTestServer(t, withCatalog(&mockCatalog{
		listPrizesFn: func(_ context.Context) ([]domain.Prize, error) {
			return nil, errors.New("db down")
		},
	}))

	rec := serve(srv, http.MethodGet, "/api/prizes", "", bearer("admin-token"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetUser(t *testing.T) {
	srv := newTestServer(t, withCatalog(&mockCatalog{
		getUserDetailsFn: func(_ context.Context, id string) (*domain.Principal, error) {
			return &domain.Principal{ID: id, DisplayName: "Alice", Admin: true}, nil
		},
	}))

	rec := serve(srv, http.MethodGet, "/api/users/uid-7", "", bearer("admin-token"))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp userResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "uid-7", resp.ID)
	assert.Equal(t, "Alice", resp.DisplayName)
	assert.True(t, resp.Admin)
}

func TestGetUser_NotFound(t *testing.T) {
	srv := newTestServer(t)

	rec := serve(srv, http.MethodGet, "/api/users/missing", "", bearer("admin-token"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user_id":"missing"`)
}
