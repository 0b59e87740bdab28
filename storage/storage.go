// Package storage provides object storage for submitted audio.
// Supported backends: Supabase Storage (production) and local filesystem.
package storage

import (
	"context"
	"io"
)

// Storage defines the interface for object storage operations.
type Storage interface {
	// Upload writes data from reader to the given path.
	Upload(ctx context.Context, path string, reader io.Reader) error

	// Download returns a reader for the object at the given path.
	// The caller is responsible for closing the returned ReadCloser.
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes the object at the given path.
	// Returns nil if the object does not exist.
	Delete(ctx context.Context, path string) error

	// List returns the paths of all objects whose path starts with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Config selects and configures a storage backend.
type Config struct {
	// Provider is "supabase" or "local".
	Provider string `yaml:"provider" mapstructure:"provider"`
	// URL is the Supabase project URL (e.g. https://xyz.supabase.co).
	URL string `yaml:"url" mapstructure:"url"`
	// Bucket is the storage bucket name.
	Bucket string `yaml:"bucket" mapstructure:"bucket"`
	// SecretKey is the service-role key used as Bearer token.
	SecretKey string `yaml:"secret_key" mapstructure:"secret_key"`
	// Dir is the root directory for the local backend.
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// New creates the storage backend selected by cfg.Provider.
func New(cfg Config) (Storage, error) {
	switch cfg.Provider {
	case "local":
		return NewLocal(cfg.Dir)
	default:
		return NewSupabase(cfg)
	}
}
