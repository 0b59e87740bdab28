package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// StoredAudio describes an audio object persisted by the safety-net path.
type StoredAudio struct {
	// Ref is the opaque storage path referencing the object.
	Ref string
	// Size is the stored object size in bytes.
	Size int64
}

// AudioStore persists and retrieves raw audio clips for recordings.
// Objects live under projects/<project>/<session>-<uuid>.<ext> so an entire
// project can be swept in one prefix operation.
type AudioStore struct {
	backend Storage
}

// NewAudioStore creates an AudioStore over the given backend.
func NewAudioStore(backend Storage) *AudioStore {
	return &AudioStore{backend: backend}
}

// Store uploads audio bytes and returns the resulting reference and size.
func (a *AudioStore) Store(ctx context.Context, data []byte, projectID, sessionID, mimeType string) (*StoredAudio, error) {
	ref := fmt.Sprintf("projects/%s/%s-%s.%s", projectID, sessionID, uuid.New().String(), ExtensionForMime(mimeType))
	if err := a.backend.Upload(ctx, ref, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("store audio: %w", err)
	}
	return &StoredAudio{Ref: ref, Size: int64(len(data))}, nil
}

// Fetch downloads the audio object at ref.
func (a *AudioStore) Fetch(ctx context.Context, ref string) ([]byte, error) {
	rc, err := a.backend.Download(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("fetch audio: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	return data, nil
}

// DeleteProject removes every stored audio object belonging to a project.
// Individual delete failures are collected; the sweep continues.
func (a *AudioStore) DeleteProject(ctx context.Context, projectID string) error {
	prefix := fmt.Sprintf("projects/%s/", projectID)
	paths, err := a.backend.List(ctx, prefix)
	if err != nil {
		return fmt.Errorf("list project audio: %w", err)
	}

	var failed []string
	for _, p := range paths {
		if err := a.backend.Delete(ctx, p); err != nil {
			failed = append(failed, p)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("delete project audio: %d objects failed", len(failed))
	}
	return nil
}

// mime/extension mapping for the audio formats the widget records.
var mimeToExt = map[string]string{
	"audio/webm": "webm",
	"audio/mpeg": "mp3",
	"audio/wav":  "wav",
	"audio/mp4":  "mp4",
	"audio/ogg":  "ogg",
}

var extToMime = map[string]string{
	"webm": "audio/webm",
	"mp3":  "audio/mpeg",
	"mpeg": "audio/mpeg",
	"wav":  "audio/wav",
	"mp4":  "audio/mp4",
	"ogg":  "audio/ogg",
}

// ExtensionForMime maps a MIME type to a file extension, defaulting to webm.
func ExtensionForMime(mimeType string) string {
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	if ext, ok := mimeToExt[strings.ToLower(strings.TrimSpace(mimeType))]; ok {
		return ext
	}
	return "webm"
}

// MimeForRef derives a MIME type from a storage reference's extension,
// defaulting to audio/webm.
func MimeForRef(ref string) string {
	ext := ""
	if i := strings.LastIndex(ref, "."); i >= 0 {
		ext = strings.ToLower(ref[i+1:])
	}
	if m, ok := extToMime[ext]; ok {
		return m
	}
	return "audio/webm"
}
