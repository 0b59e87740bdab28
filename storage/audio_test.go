package storage

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func newTestAudioStore(t *testing.T) *AudioStore {
	t.Helper()
	backend, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("creating local backend: %v", err)
	}
	return NewAudioStore(backend)
}

func TestAudioStore_StoreAndFetchRoundTrip(t *testing.T) {
	store := newTestAudioStore(t)
	ctx := context.Background()

	data := []byte("fake-webm-bytes")
	stored, err := store.Store(ctx, data, "proj-1", "sess-9", "audio/webm")
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if stored.Size != int64(len(data)) {
		t.Errorf("expected size %d, got %d", len(data), stored.Size)
	}
	if !strings.HasPrefix(stored.Ref, "projects/proj-1/sess-9-") {
		t.Errorf("unexpected ref layout: %s", stored.Ref)
	}
	if !strings.HasSuffix(stored.Ref, ".webm") {
		t.Errorf("expected .webm extension, got %s", stored.Ref)
	}

	got, err := store.Fetch(ctx, stored.Ref)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("fetched bytes differ from stored bytes")
	}
}

func TestAudioStore_DeleteProjectSweepsAllObjects(t *testing.T) {
	store := newTestAudioStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := store.Store(ctx, []byte("clip"), "proj-2", "sess", "audio/mpeg"); err != nil {
			t.Fatalf("store: %v", err)
		}
	}
	other, err := store.Store(ctx, []byte("keep"), "proj-other", "sess", "audio/mpeg")
	if err != nil {
		t.Fatalf("store: %v", err)
	}

	if err := store.DeleteProject(ctx, "proj-2"); err != nil {
		t.Fatalf("delete project: %v", err)
	}

	if _, err := store.Fetch(ctx, other.Ref); err != nil {
		t.Errorf("unrelated project audio was deleted: %v", err)
	}

	paths, err := store.backend.List(ctx, "projects/proj-2/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("expected empty project prefix, got %v", paths)
	}
}

func TestExtensionForMime(t *testing.T) {
	cases := []struct {
		mime string
		want string
	}{
		{"audio/webm", "webm"},
		{"audio/mpeg", "mp3"},
		{"audio/wav", "wav"},
		{"audio/mp4", "mp4"},
		{"audio/ogg", "ogg"},
		{"audio/webm;codecs=opus", "webm"},
		{"application/unknown", "webm"},
		{"", "webm"},
	}
	for _, tc := range cases {
		if got := ExtensionForMime(tc.mime); got != tc.want {
			t.Errorf("ExtensionForMime(%q) = %q, want %q", tc.mime, got, tc.want)
		}
	}
}

func TestMimeForRef(t *testing.T) {
	cases := []struct {
		ref  string
		want string
	}{
		{"projects/p/s-x.mp3", "audio/mpeg"},
		{"projects/p/s-x.wav", "audio/wav"},
		{"projects/p/s-x.ogg", "audio/ogg"},
		{"projects/p/s-x", "audio/webm"},
		{"projects/p/s-x.unknown", "audio/webm"},
	}
	for _, tc := range cases {
		if got := MimeForRef(tc.ref); got != tc.want {
			t.Errorf("MimeForRef(%q) = %q, want %q", tc.ref, got, tc.want)
		}
	}
}
