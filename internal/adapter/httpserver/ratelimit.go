package httpserver

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// setupLimit bounds capability-issuance attempts per client IP. Secret
// guessing is the concern, so the budget is small.
var setupLimit = limitPolicy{scope: "setup", perSecond: 1, burst: 5, idleExpiry: 5 * time.Minute}

type limitPolicy struct {
	scope      string
	perSecond  float64
	burst      int
	idleExpiry time.Duration
}

// newRateLimiter applies p per client IP. CORS preflights are not counted
// and denials use the {ok, error} body of the setup endpoint.
func newRateLimiter(p limitPolicy) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(p.perSecond),
		Burst:     p.burst,
		ExpiresIn: p.idleExpiry,
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().Method == http.MethodOptions
		},
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return p.scope + ":" + c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			c.Response().Header().Set("Retry-After", retryAfter(p.perSecond))
			return c.JSON(http.StatusTooManyRequests, setupResponse{Error: "rate limit exceeded"})
		},
	})
}

// retryAfter is the delay in whole seconds until one more token is available.
func retryAfter(perSecond float64) string {
	if perSecond <= 0 {
		return "60"
	}
	return strconv.Itoa(int(math.Ceil(1 / perSecond)))
}
