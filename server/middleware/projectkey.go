package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/geniuslabs/voiceapi/database"
)

// ContextKeyProject is the Gin context key carrying the resolved project.
const ContextKeyProject = "project"

// ProjectResolver resolves a widget public key to its owning project.
// Satisfied by database.ProjectStore.
type ProjectResolver interface {
	GetByPublicKey(ctx context.Context, publicKey string) (*database.Project, error)
}

// ProjectKey returns a Gin middleware that authenticates widget requests via
// the X-Project-Key header and stores the resolved project in the context.
func ProjectKey(resolver ProjectResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-Project-Key")
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "X-Project-Key header required",
			})
			return
		}

		project, err := resolver.GetByPublicKey(c.Request.Context(), key)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid project key",
			})
			return
		}

		c.Set(ContextKeyProject, project)
		c.Next()
	}
}

// ProjectFromContext returns the project stored by ProjectKey, or nil.
func ProjectFromContext(c *gin.Context) *database.Project {
	if v, ok := c.Get(ContextKeyProject); ok {
		if p, ok := v.(*database.Project); ok {
			return p
		}
	}
	return nil
}
