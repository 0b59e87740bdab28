// Package transcription defines the speech-to-text provider interface and the
// retrying client that sits between job processing and the provider.
package transcription

// Request carries one audio clip to a transcription provider.
type Request struct {
	// Audio is the raw audio payload.
	Audio []byte
	// MimeType describes the audio encoding (e.g. audio/webm).
	MimeType string
	// Language is an ISO 639-1 hint for the provider. Empty means auto-detect.
	Language string
}

// Result is a completed transcription.
type Result struct {
	// Text is the transcribed text.
	Text string
	// Language is the language the provider detected or was told to use.
	Language string
	// Duration is the audio duration in seconds as reported by the provider.
	Duration float64
}
