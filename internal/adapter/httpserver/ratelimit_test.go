package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLimit = limitPolicy{scope: "test", perSecond: 0.01, burst: 2, idleExpiry: time.Minute}

func limitedCall(t *testing.T, e *echo.Echo, handler echo.HandlerFunc, method, remoteAddr string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, "/setAdminClaim", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))
	return rec
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestRateLimiter(t *testing.T) {
	e := echo.New()
	handler := newRateLimiter(testLimit)(okHandler)

	assert.Equal(t, http.StatusOK, limitedCall(t, e, handler, http.MethodGet, "1.2.3.4:1234").Code)
	assert.Equal(t, http.StatusOK, limitedCall(t, e, handler, http.MethodPost, "1.2.3.4:1234").Code)

	rec := limitedCall(t, e, handler, http.MethodGet, "1.2.3.4:1234")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "100", rec.Header().Get("Retry-After"))
	var resp setupResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.OK)
	assert.Equal(t, "rate limit exceeded", resp.Error)

	// Other clients keep their own budget.
	assert.Equal(t, http.StatusOK, limitedCall(t, e, handler, http.MethodGet, "5.6.7.8:5678").Code)
}

func TestRateLimiter_PreflightNotCounted(t *testing.T) {
	e := echo.New()
	handler := newRateLimiter(testLimit)(okHandler)

	for range 5 {
		assert.Equal(t, http.StatusOK, limitedCall(t, e, handler, http.MethodOptions, "1.2.3.4:1234").Code)
	}
	assert.Equal(t, http.StatusOK, limitedCall(t, e, handler, http.MethodGet, "1.2.3.4:1234").Code)
}

func TestRetryAfter(t *testing.T) {
	assert.Equal(t, "1", retryAfter(1))
	assert.Equal(t, "2", retryAfter(0.5))
	assert.Equal(t, "60", retryAfter(0))
}
