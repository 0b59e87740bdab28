package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/geniuslabs/voiceapi/errors"
	"github.com/geniuslabs/voiceapi/logger"
	"github.com/geniuslabs/voiceapi/plan"
	"github.com/geniuslabs/voiceapi/server"
)

type processBatchResponse struct {
	BatchID string `json:"batch_id"`
	Status  string `json:"status"`
}

// ProcessBatch starts batch transcription for the given batch id. The run is
// fire-and-forget: progress and the terminal status are observable through
// the persisted batch record, not through this response.
func (h *Handlers) ProcessBatch(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		server.RespondWithError(c, apperrors.Validation("invalid batch id"))
		return
	}

	batch, err := h.batches.Get(c.Request.Context(), batchID)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	project, err := h.projects.Get(c.Request.Context(), batch.ProjectID)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	if !plan.Get(project.Plan).Batch {
		server.RespondWithError(c, apperrors.Forbidden("batch transcription is not available on this plan"))
		return
	}

	h.log.Info("Starting batch run", map[string]interface{}{
		logger.FieldBatchID:   batchID.String(),
		logger.FieldProjectID: project.ID.String(),
		"total":               batch.TotalCount,
	})

	// The run outlives this request, so it detaches from the request context.
	h.runner.Go(context.Background(), "batch "+batchID.String(), func(ctx context.Context) error {
		return h.coordinator.RunBatch(ctx, batchID)
	})

	server.RespondAccepted(c, processBatchResponse{
		BatchID: batchID.String(),
		Status:  string(batch.Status),
	})
}
