// Package auth resolves caller capabilities from bearer tokens. The
// permission gate itself stays a pure function; this package only decides
// what capability set a request carries.
package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/wellfield/rigops/internal/domain"
)

const capabilitiesKey = "capabilities"

// Claims are the JWT claims issued by the external auth service. The
// capability flags mirror the dashboard permission groups.
type Claims struct {
	Sub         string `json:"sub"`
	Financial   bool   `json:"cap_financial"`
	Operational bool   `json:"cap_operational"`
	CRM         bool   `json:"cap_crm"`
	HR          bool   `json:"cap_hr"`
	jwt.RegisteredClaims
}

// Capabilities converts the claim flags into the domain capability set.
func (c *Claims) Capabilities() domain.Capabilities {
	return domain.Capabilities{
		Financial:   c.Financial,
		Operational: c.Operational,
		CRM:         c.CRM,
		HR:          c.HR,
	}
}

// Middleware validates the bearer token and stores the resolved capability
// set on the request context.
func Middleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("invalid signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(capabilitiesKey, claims.Capabilities())
		c.Next()
	}
}

// CapabilitiesFrom returns the capability set resolved for the request. The
// zero value (no capabilities at all) is returned when the middleware did
// not run, which the gate turns into an explicit no-access response.
func CapabilitiesFrom(c *gin.Context) domain.Capabilities {
	v, exists := c.Get(capabilitiesKey)
	if !exists {
		return domain.Capabilities{}
	}
	caps, ok := v.(domain.Capabilities)
	if !ok {
		return domain.Capabilities{}
	}
	return caps
}
