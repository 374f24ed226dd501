package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	customerdomain "github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/customer/domain"
	"github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/customercontext"
)

// customerMiddleware lifts the identity headers set by the upstream
// auth proxy into the request context. Requests without an identity
// pass through; handlers that need a customer reject them.
func (s *Server) customerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader("X-User-Id"))
		if userID != "" {
			ctx := customercontext.NewContext(c.Request.Context(), customerdomain.Customer{
				UserID:      userID,
				Email:       strings.TrimSpace(c.GetHeader("X-User-Email")),
				DisplayName: strings.TrimSpace(c.GetHeader("X-User-Name")),
			})
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}
