package api

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/geniuslabs/voiceapi/database"
	apperrors "github.com/geniuslabs/voiceapi/errors"
	"github.com/geniuslabs/voiceapi/plan"
	"github.com/geniuslabs/voiceapi/server"
	"github.com/geniuslabs/voiceapi/server/middleware"
)

type projectResponse struct {
	ID         string                    `json:"id"`
	Name       string                    `json:"name"`
	Language   string                    `json:"language"`
	Plan       string                    `json:"plan"`
	PlanLimits planLimits                `json:"plan_limits"`
	Recordings *database.RecordingCounts `json:"recordings"`
}

type planLimits struct {
	MaxDurationSeconds int  `json:"max_duration_seconds"`
	MaxResponses       int  `json:"max_responses"`
	Batch              bool `json:"batch"`
}

// GetProject returns a dashboard view of one project: its settings, plan
// limits, and recording counts by status.
func (h *Handlers) GetProject(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		server.RespondWithError(c, apperrors.Validation("invalid project id"))
		return
	}

	project, err := h.projects.Get(c.Request.Context(), projectID)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	if userID := c.GetString(middleware.ContextKeyUserID); userID != project.UserID.String() {
		// Hide other users' projects rather than confirming they exist.
		server.RespondWithError(c, apperrors.NotFound("project", projectID.String()))
		return
	}

	counts, err := h.recordings.CountByProject(c.Request.Context(), projectID)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	p := plan.Get(project.Plan)
	server.RespondOK(c, projectResponse{
		ID:       project.ID.String(),
		Name:     project.Name,
		Language: project.Language,
		Plan:     p.Name,
		PlanLimits: planLimits{
			MaxDurationSeconds: p.MaxDurationSeconds,
			MaxResponses:       p.MaxResponses,
			Batch:              p.Batch,
		},
		Recordings: counts,
	})
}
