package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestAllow_BurstThenLimit(t *testing.T) {
	rl := NewRateLimiter(1, 3)

	for i := 0; i < 3; i++ {
		if !rl.Allow("client") {
			t.Fatalf("request %d within burst must be allowed", i+1)
		}
	}
	if rl.Allow("client") {
		t.Error("request beyond burst must be rejected")
	}
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(1, 1)

	if !rl.Allow("a") {
		t.Fatal("first request for a must be allowed")
	}
	if rl.Allow("a") {
		t.Error("second request for a must be rejected")
	}
	if !rl.Allow("b") {
		t.Error("a separate client must have its own bucket")
	}
}

func TestMiddleware_TooManyRequests(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	e := echo.New()
	handler := rl.Middleware()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	call := func() error {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
		rec := httptest.NewRecorder()
		return handler(e.NewContext(req, rec))
	}

	if err := call(); err != nil {
		t.Fatalf("first request must pass: %v", err)
	}

	err := call()
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %v", err)
	}
}

func TestMiddleware_KeyedByRemoteIP(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	e := echo.New()
	handler := rl.Middleware()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	call := func(ip string) error {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderXRealIP, ip)
		rec := httptest.NewRecorder()
		return handler(e.NewContext(req, rec))
	}

	if err := call("10.0.0.1"); err != nil {
		t.Fatalf("first request must pass: %v", err)
	}
	if err := call("10.0.0.1"); err == nil {
		t.Error("second request from the same IP must be limited")
	}
	if err := call("10.0.0.2"); err != nil {
		t.Errorf("a different IP must have its own bucket: %v", err)
	}
}
