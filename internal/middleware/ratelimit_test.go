package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newLimitedRouter(maxRequests int, window time.Duration, done <-chan struct{}) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/export", RateLimiter(maxRequests, window, done), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func doRequest(router *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/export", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_UnderLimit(t *testing.T) {
	done := make(chan struct{})
	defer close(done)
	router := newLimitedRouter(3, time.Minute, done)

	for i := 0; i < 3; i++ {
		if w := doRequest(router, "10.0.0.1:1234"); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, w.Code)
		}
	}
}

func TestRateLimiter_OverLimit(t *testing.T) {
	done := make(chan struct{})
	defer close(done)
	router := newLimitedRouter(2, time.Minute, done)

	doRequest(router, "10.0.0.1:1234")
	doRequest(router, "10.0.0.1:1234")

	w := doRequest(router, "10.0.0.1:1234")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("429 response missing Retry-After header")
	}
}

func TestRateLimiter_PerIP(t *testing.T) {
	done := make(chan struct{})
	defer close(done)
	router := newLimitedRouter(1, time.Minute, done)

	doRequest(router, "10.0.0.1:1234")

	// A different client is unaffected by the first one's quota.
	if w := doRequest(router, "10.0.0.2:1234"); w.Code != http.StatusOK {
		t.Errorf("second IP: status = %d, want 200", w.Code)
	}
}

func TestRateLimiter_WindowResets(t *testing.T) {
	done := make(chan struct{})
	defer close(done)
	router := newLimitedRouter(1, 50*time.Millisecond, done)

	doRequest(router, "10.0.0.1:1234")
	if w := doRequest(router, "10.0.0.1:1234"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429 inside window", w.Code)
	}

	time.Sleep(60 * time.Millisecond)

	if w := doRequest(router, "10.0.0.1:1234"); w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 after window reset", w.Code)
	}
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	// Generated when absent.
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing generated X-Request-ID")
	}

	// Honored when supplied.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "upstream-id")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "upstream-id" {
		t.Errorf("X-Request-ID = %q, want upstream-id", got)
	}
}
