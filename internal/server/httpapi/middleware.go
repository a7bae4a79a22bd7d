package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// subjectKey is the gin context key under which the authenticated token
// subject (the user's email) is stored.
const subjectKey = "subject"

// authRequired validates the Authorization bearer token and stores its
// subject in the request context. Requests without a valid token are
// rejected with 401.
func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		claims, err := s.issuer.Verify(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(subjectKey, claims.Subject)
		c.Next()
	}
}
