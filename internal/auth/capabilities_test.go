package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wellfield/rigops/internal/domain"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims *Claims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware(testSecret))
	router.GET("/probe", func(c *gin.Context) {
		c.JSON(http.StatusOK, CapabilitiesFrom(c))
	})
	return router
}

func TestMiddleware_ValidToken(t *testing.T) {
	router := newAuthRouter()

	token := signToken(t, &Claims{
		Sub:         "user-1",
		Financial:   true,
		Operational: true,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, testSecret)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"financial":true,"operational":true,"crm":false,"hr":false}`, w.Body.String())
}

func TestMiddleware_Rejections(t *testing.T) {
	router := newAuthRouter()

	expired := signToken(t, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}, testSecret)
	wrongKey := signToken(t, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, "other-secret")

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"malformed token", "Bearer not.a.jwt"},
		{"expired token", "Bearer " + expired},
		{"wrong signing key", "Bearer " + wrongKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/probe", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestCapabilitiesFrom_Absent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	caps := CapabilitiesFrom(c)
	assert.True(t, caps.None(), "missing middleware must resolve to no capabilities")
}

func TestClaimsCapabilities(t *testing.T) {
	claims := &Claims{Financial: true, HR: true}
	caps := claims.Capabilities()
	assert.Equal(t, domain.Capabilities{Financial: true, HR: true}, caps)
}
