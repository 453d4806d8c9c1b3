package handlers

import (
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/edupaper/authoring-service/internal/config"
	"github.com/edupaper/authoring-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware verifies Casdoor-issued bearer tokens and places the
// authenticated identity into the request context as "user_id" and "role".
type AuthMiddleware struct {
	logger utils.Logger
}

func NewAuthMiddleware(cfg config.CasdoorConfig, logger utils.Logger) *AuthMiddleware {
	casdoorsdk.InitConfig(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Certificate,
		cfg.OrganizationName,
		cfg.ApplicationName,
	)
	return &AuthMiddleware{logger: logger}
}

// RequireAuth rejects requests without a valid bearer token
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Missing or malformed Authorization header",
			})
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		claims, err := casdoorsdk.ParseJwtToken(token)
		if err != nil {
			m.logger.Warn("Rejected invalid bearer token", "error", err, "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Invalid or expired token",
			})
			return
		}

		role := "teacher"
		if claims.IsAdmin {
			role = "admin"
		}

		c.Set("user_id", claims.Id)
		c.Set("role", role)
		c.Next()
	}
}
