package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wellfield/rigops/internal/analytics"
	"github.com/wellfield/rigops/internal/auth"
	"github.com/wellfield/rigops/internal/config"
	"github.com/wellfield/rigops/internal/domain"
	"github.com/wellfield/rigops/internal/handler"
	"github.com/wellfield/rigops/internal/logger"
	"github.com/wellfield/rigops/internal/metrics"
)

const testSecret = "routes-test-secret"

type emptySource struct{}

func (emptySource) Ping(_ context.Context) error { return nil }
func (emptySource) JobRecords(_ context.Context, _ domain.FilterContext) ([]domain.JobRecord, error) {
	return nil, nil
}
func (emptySource) JobRecordsBetween(_ context.Context, _, _ time.Time) ([]domain.JobRecord, error) {
	return nil, nil
}
func (emptySource) ActiveRigs(_ context.Context) ([]domain.Rig, error) { return nil, nil }
func (emptySource) Clients(_ context.Context, _ int) ([]domain.Client, error) {
	return nil, nil
}
func (emptySource) FinancePosition(_ context.Context) (domain.FinancePosition, error) {
	return domain.FinancePosition{}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{}
	cfg.Service.Name = "rigops-analytics"
	cfg.Service.Port = 0
	cfg.Service.JWTSecret = testSecret
	cfg.Export.MaxPerMinute = 100
	cfg.Export.WindowSeconds = 60

	log := logger.NewNop()
	source := emptySource{}
	engine := analytics.NewEngine(source, log, analytics.Options{QueryTimeout: time.Second, TopLimit: 5})

	dashboard := handler.NewDashboardHandler(engine, nil, log, 5, nil)
	health := handler.NewHealthHandler(source, cfg.Service.Name, "test")
	met := metrics.New(prometheus.NewRegistry())

	srv := NewServer(cfg, dashboard, health, met, log)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func serve(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func bearerToken(t *testing.T, caps domain.Capabilities) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &auth.Claims{
		Sub:         "tester",
		Financial:   caps.Financial,
		Operational: caps.Operational,
		CRM:         caps.CRM,
		HR:          caps.HR,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func TestRoutes_PublicEndpoints(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/health", "/ready", "/metrics", "/api/v1/dashboard/presets"} {
		w := serve(srv, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestRoutes_ProtectedRequireToken(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{
		"/api/v1/dashboard/snapshot",
		"/api/v1/dashboard/rigs",
		"/api/v1/dashboard/top",
		"/api/v1/dashboard/alerts",
		"/api/v1/dashboard/export",
	} {
		w := serve(srv, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestRoutes_AuthenticatedSnapshot(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/snapshot?preset=month", nil)
	req.Header.Set("Authorization", bearerToken(t, domain.Capabilities{Financial: true}))

	w := serve(srv, req)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestRoutes_RequestIDHeader(t *testing.T) {
	srv := newTestServer(t)

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRoutes_UnknownPath(t *testing.T) {
	srv := newTestServer(t)

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
