package api

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/geniuslabs/voiceapi/transcription"
)

// The widget may request a specific transcription language; "language"
// restricts it to the codes the provider pipeline supports.
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("language", func(fl validator.FieldLevel) bool {
			return transcription.SupportedLanguage(fl.Field().String())
		})
	}
}
