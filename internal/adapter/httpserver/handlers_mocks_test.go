package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Elahizes/spin-wheel/internal/domain"
	"github.com/Elahizes/spin-wheel/internal/platform/config"
)

// --- Mock implementations ---

type mockDeleter struct {
	deleteSpinsFn func(ctx context.Context, ids []string) (int, error)
}

func (m *mockDeleter) DeleteSpins(ctx context.Context, ids []string) (int, error) {
	if m.deleteSpinsFn != nil {
		return m.deleteSpinsFn(ctx, ids)
	}
	return len(ids), nil
}

type mockGate struct {
	authenticateFn func(ctx context.Context, credential string) (*domain.Principal, error)
	grantAdminFn   func(ctx context.Context, uid, secret string) (*domain.Principal, error)
}

func (m *mockGate) Authenticate(ctx context.Context, credential string) (*domain.Principal, error) {
	if m.authenticateFn != nil {
		return m.authenticateFn(ctx, credential)
	}
	switch credential {
	case "admin-token":
		return &domain.Principal{ID: "admin-1", Admin: true}, nil
	case "user-token":
		return &domain.Principal{ID: "user-1"}, nil
	}
	return nil, domain.ErrUnauthenticated
}

func (m *mockGate) Authorize(p *domain.Principal) error {
	if p == nil {
		return domain.ErrUnauthenticated
	}
	if !p.Admin {
		return domain.ErrPermissionDenied
	}
	return nil
}

func (m *mockGate) GrantAdmin(ctx context.Context, uid, secret string) (*domain.Principal, error) {
	if m.grantAdminFn != nil {
		return m.grantAdminFn(ctx, uid, secret)
	}
	return nil, errors.New("not implemented")
}

type mockCatalog struct {
	listPrizesFn     func(ctx context.Context) ([]domain.Prize, error)
	getUserDetailsFn func(ctx context.Context, id string) (*domain.Principal, error)
}

func (m *mockCatalog) ListPrizes(ctx context.Context) ([]domain.Prize, error) {
	if m.listPrizesFn != nil {
		return m.listPrizesFn(ctx)
	}
	return nil, nil
}

func (m *mockCatalog) GetUserDetails(ctx context.Context, id string) (*domain.Principal, error) {
	if m.getUserDetailsFn != nil {
		return m.getUserDetailsFn(ctx, id)
	}
	return nil, domain.ErrPrincipalNotFound
}

type mockErrorRecorder struct {
	types []string
}

func (m *mockErrorRecorder) RecordError(errType string) {
	m.types = append(m.types, errType)
}

// --- Test helpers ---

type testDeps struct {
	deleter *mockDeleter
	gate    *mockGate
	catalog *mockCatalog
	checks  []HealthCheck
	cfg     *config.Config
}

func newTestServer(t *testing.T, opts ...func(*testDeps)) *Server {
	t.Helper()

	deps := &testDeps{
		deleter: &mockDeleter{},
		gate:    &mockGate{},
		catalog: &mockCatalog{},
		cfg:     &config.Config{Port: "0", CORSAllowOrigin: "*"},
	}
	for _, opt := range opts {
		opt(deps)
	}

	return NewServer(deps.cfg, Services{
		Deleter: deps.deleter,
		Gate:    deps.gate,
		Catalog: deps.catalog,
	}, deps.checks)
}

func withDeleter(d *mockDeleter) func(*testDeps) {
	return func(deps *testDeps) { deps.deleter = d }
}

func withGate(g *mockGate) func(*testDeps) {
	return func(deps *testDeps) { deps.gate = g }
}

func withCatalog(c *mockCatalog) func(*testDeps) {
	return func(deps *testDeps) { deps.catalog = c }
}

func withHealthChecks(checks ...HealthCheck) func(*testDeps) {
	return func(deps *testDeps) { deps.checks = checks }
}

// serve runs a request through the full router.
func serve(srv *Server, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}
