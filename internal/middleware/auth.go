package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	authsvc "github.com/jeevanrakshak/donor-api/internal/service/auth"
	"github.com/jeevanrakshak/donor-api/pkg/errors"
	"github.com/jeevanrakshak/donor-api/pkg/httputil"
)

const (
	ContextDonorID    = "donorID"
	ContextDonorEmail = "donorEmail"
)

type AuthMiddleware struct {
	authService *authsvc.Service
}

func NewAuthMiddleware(authService *authsvc.Service) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Authenticate verifies the bearer token and sets donor info in context
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httputil.RespondWithError(c, errors.Unauthorized(nil))
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			httputil.RespondWithError(c, errors.Unauthorized(nil))
			c.Abort()
			return
		}

		claims, err := m.authService.ValidateToken(parts[1])
		if err != nil {
			httputil.RespondWithError(c, err)
			c.Abort()
			return
		}

		c.Set(ContextDonorID, claims.DonorID.String())
		c.Set(ContextDonorEmail, claims.Email)
		c.Next()
	}
}
