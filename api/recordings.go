package api

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/geniuslabs/voiceapi/database"
	apperrors "github.com/geniuslabs/voiceapi/errors"
	"github.com/geniuslabs/voiceapi/jobs"
	"github.com/geniuslabs/voiceapi/resilience"
	"github.com/geniuslabs/voiceapi/server"
)

type reprocessResponse struct {
	RecordingID string `json:"recording_id"`
	Status      string `json:"status"`
}

// ReprocessRecording re-drives a stored recording through the job processor,
// admitted through the same concurrency limiter as batch work. Used to retry
// safety-net recordings whose inline transcription failed.
func (h *Handlers) ReprocessRecording(c *gin.Context) {
	recID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		server.RespondWithError(c, apperrors.Validation("invalid recording id"))
		return
	}

	rec, err := h.recordings.Get(c.Request.Context(), recID)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	if rec.Status == database.RecordingCompleted {
		server.RespondWithError(c, apperrors.Conflict("recording is already transcribed"))
		return
	}
	if rec.AudioRef == nil || *rec.AudioRef == "" {
		server.RespondWithError(c, apperrors.Validation("recording has no stored audio to reprocess"))
		return
	}

	// Detached from the request context: the job keeps its limiter slot and
	// finishes even if the caller disconnects.
	h.runner.Go(context.Background(), "reprocess "+recID.String(), func(ctx context.Context) error {
		res, err := resilience.RunWith(ctx, h.limiter, func() (*jobs.Result, error) {
			return h.processor.Process(ctx, recID)
		})
		if err != nil {
			return err
		}
		if !res.Success {
			return fmt.Errorf("reprocess %s: %s", recID, res.Error)
		}
		return nil
	})

	server.RespondAccepted(c, reprocessResponse{
		RecordingID: recID.String(),
		Status:      string(database.RecordingProcessing),
	})
}
