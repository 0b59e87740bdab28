package api

import (
	"io"
	"mime/multipart"

	"github.com/gin-gonic/gin"

	apperrors "github.com/geniuslabs/voiceapi/errors"
	"github.com/geniuslabs/voiceapi/ingest"
	"github.com/geniuslabs/voiceapi/logger"
	"github.com/geniuslabs/voiceapi/server"
	"github.com/geniuslabs/voiceapi/server/middleware"
)

type transcribeForm struct {
	Audio           *multipart.FileHeader `form:"audio" binding:"required"`
	SessionID       string                `form:"session_id" binding:"required"`
	QuestionID      string                `form:"question_id" binding:"required"`
	DurationSeconds int                   `form:"duration_seconds" binding:"omitempty,min=0"`
	Language        string                `form:"language" binding:"omitempty,language"`
	Metadata        string                `form:"metadata"`
}

type transcribeResponse struct {
	RecordingID     string `json:"recording_id"`
	Status          string `json:"status"`
	Transcription   string `json:"transcription,omitempty"`
	Language        string `json:"language,omitempty"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
	Error           string `json:"error,omitempty"`
}

// Transcribe handles a live widget submission. Provider failures do not
// surface as HTTP errors: the audio is stored and the response carries a
// failed status instead, so the submission is never lost.
func (h *Handlers) Transcribe(c *gin.Context) {
	project := middleware.ProjectFromContext(c)
	if project == nil {
		server.RespondWithError(c, apperrors.Unauthorized("project key required"))
		return
	}

	var form transcribeForm
	if err := c.ShouldBind(&form); err != nil {
		server.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	audio, err := readUpload(form.Audio)
	if err != nil {
		server.RespondWithError(c, apperrors.Validation("unreadable audio upload"))
		return
	}

	result, err := h.ingest.Submit(c.Request.Context(), ingest.SubmitRequest{
		Project:         project,
		Audio:           audio,
		MimeType:        form.Audio.Header.Get("Content-Type"),
		SessionID:       form.SessionID,
		QuestionID:      form.QuestionID,
		DurationSeconds: form.DurationSeconds,
		Language:        form.Language,
		Metadata:        form.Metadata,
	})
	if err != nil {
		h.log.Warn("Submission rejected", map[string]interface{}{
			logger.FieldProjectID: project.ID.String(),
			logger.FieldSessionID: form.SessionID,
			"error":               err.Error(),
		})
		server.RespondWithError(c, err)
		return
	}

	server.RespondOK(c, transcribeResponse{
		RecordingID:     result.RecordingID.String(),
		Status:          string(result.Status),
		Transcription:   result.Transcription,
		Language:        result.Language,
		DurationSeconds: result.DurationSeconds,
		Error:           result.Error,
	})
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
