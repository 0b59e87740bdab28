package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/geniuslabs/voiceapi/observability"
)

// Health reports aggregated service health. Returns 503 when any component
// is down so load balancers can take the instance out of rotation.
func (h *Handlers) Health(c *gin.Context) {
	health := observability.NewServiceHealth("voiceapi", h.version)
	for _, checker := range h.checkers {
		health.AddComponent(checker.CheckHealth(c.Request.Context()))
	}

	status := http.StatusOK
	if health.Status == observability.HealthStatusDown {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, health)
}
