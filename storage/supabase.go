package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

// Supabase implements Storage using the Supabase Storage REST API.
type Supabase struct {
	baseURL    string
	bucket     string
	secretKey  string
	httpClient *http.Client
}

// NewSupabase creates a new Supabase storage client.
func NewSupabase(cfg Config) (*Supabase, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("storage: supabase url is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage: supabase bucket is required")
	}
	return &Supabase{
		baseURL:   strings.TrimRight(cfg.URL, "/") + "/storage/v1",
		bucket:    cfg.Bucket,
		secretKey: cfg.SecretKey,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}, nil
}

// Upload writes data from reader to Supabase storage.
func (s *Supabase) Upload(ctx context.Context, path string, reader io.Reader) error {
	u := fmt.Sprintf("%s/object/%s/%s", s.baseURL, s.bucket, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, reader)
	if err != nil {
		return fmt.Errorf("storage: supabase create request: %w", err)
	}
	s.setHeaders(req)
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("x-upsert", "true")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("storage: supabase upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("storage: supabase upload failed (status %d): %s", resp.StatusCode, string(body))
	}
	return nil
}

// Download returns a reader for the object at the given path.
func (s *Supabase) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	u := fmt.Sprintf("%s/object/%s/%s", s.baseURL, s.bucket, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("storage: supabase create request: %w", err)
	}
	s.setHeaders(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("storage: supabase download: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, fmt.Errorf("storage: file not found: %s", path)
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("storage: supabase download failed (status %d): %s", resp.StatusCode, string(body))
	}
	return resp.Body, nil
}

// Delete removes an object. Returns nil if the object does not exist.
func (s *Supabase) Delete(ctx context.Context, path string) error {
	u := fmt.Sprintf("%s/object/%s/%s", s.baseURL, s.bucket, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return fmt.Errorf("storage: supabase create request: %w", err)
	}
	s.setHeaders(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("storage: supabase delete: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode != http.StatusNotFound {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("storage: supabase delete failed (status %d): %s", resp.StatusCode, string(body))
	}
	return nil
}

// List returns the paths of all objects whose path starts with prefix.
func (s *Supabase) List(ctx context.Context, prefix string) ([]string, error) {
	u := fmt.Sprintf("%s/object/list/%s", s.baseURL, s.bucket)

	folder := ""
	search := ""
	if prefix != "" {
		if idx := strings.LastIndex(prefix, "/"); idx >= 0 {
			folder = prefix[:idx+1]
			search = prefix[idx+1:]
		} else {
			search = prefix
		}
	}

	reqBody := map[string]interface{}{
		"prefix": folder,
		"limit":  1000,
	}
	if search != "" {
		reqBody["search"] = search
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("storage: supabase marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("storage: supabase create request: %w", err)
	}
	s.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("storage: supabase list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("storage: supabase list failed (status %d): %s", resp.StatusCode, string(body))
	}

	var items []struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("storage: supabase decode response: %w", err)
	}

	paths := make([]string, 0, len(items))
	for _, item := range items {
		paths = append(paths, folder+item.Name)
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *Supabase) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.secretKey))
}

// compile-time check
var _ Storage = (*Supabase)(nil)
