package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/geniuslabs/voiceapi/auth"
	"github.com/geniuslabs/voiceapi/database"
	apperrors "github.com/geniuslabs/voiceapi/errors"
	"github.com/geniuslabs/voiceapi/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	e := gin.New()
	e.Use(mw...)
	e.GET("/ok", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return e
}

func TestRequestID_GeneratesWhenMissing(t *testing.T) {
	e := newEngine(RequestID())

	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

	if id := w.Header().Get("X-Request-Id"); id == "" {
		t.Error("expected a generated request id header")
	}
}

func TestRequestID_PreservesIncoming(t *testing.T) {
	e := newEngine(RequestID())

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("X-Request-Id", "req-abc")
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)

	if id := w.Header().Get("X-Request-Id"); id != "req-abc" {
		t.Errorf("expected incoming id preserved, got %s", id)
	}
}

func TestRecovery_Returns500(t *testing.T) {
	e := gin.New()
	e.Use(Recovery(logger.NewDefault("test")))
	e.GET("/panic", func(*gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

func TestCORS_PreflightShortCircuits(t *testing.T) {
	cfg := &CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
	}
	handler := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("preflight must not reach the handler")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/ok", nil)
	req.Header.Set("Origin", "https://customer.example")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://customer.example" {
		t.Errorf("unexpected allow-origin: %s", got)
	}
}

func TestCORS_DisallowedOriginGetsNoHeaders(t *testing.T) {
	cfg := &CORSConfig{AllowedOrigins: []string{"https://allowed.example"}}
	handler := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no CORS headers, got %s", got)
	}
}

func TestParseSize(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"25MB", 25 << 20},
		{"512KB", 512 << 10},
		{"1GB", 1 << 30},
		{"100B", 100},
		{"100", 100},
		{"garbage", defaultMaxBodySize},
		{"", defaultMaxBodySize},
		{"-5MB", defaultMaxBodySize},
	}
	for _, tc := range cases {
		if got := parseSize(tc.in, defaultMaxBodySize); got != tc.want {
			t.Errorf("parseSize(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestAuth(t *testing.T) {
	svc, err := auth.NewService(auth.Config{Secret: "test-secret"})
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}
	e := newEngine(Auth(svc))

	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ok", nil)
		req.Header.Set("Authorization", "Basic abc")
		w := httptest.NewRecorder()
		e.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := svc.Generate("user-1")
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		req := httptest.NewRequest(http.MethodGet, "/ok", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		e.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", w.Code)
		}
	})
}

type fakeResolver struct {
	project *database.Project
}

func (f *fakeResolver) GetByPublicKey(_ context.Context, key string) (*database.Project, error) {
	if f.project != nil && f.project.PublicKey == key {
		return f.project, nil
	}
	return nil, apperrors.NotFound("project", key)
}

func TestProjectKey(t *testing.T) {
	project := &database.Project{PublicKey: "pk_live_123", Plan: "pro"}
	resolver := &fakeResolver{project: project}

	e := gin.New()
	e.Use(ProjectKey(resolver))
	e.GET("/ok", func(c *gin.Context) {
		p := ProjectFromContext(c)
		if p == nil || p.PublicKey != "pk_live_123" {
			t.Error("expected resolved project in context")
		}
		c.Status(http.StatusOK)
	})

	t.Run("missing key", func(t *testing.T) {
		w := httptest.NewRecorder()
		e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})

	t.Run("unknown key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ok", nil)
		req.Header.Set("X-Project-Key", "pk_wrong")
		w := httptest.NewRecorder()
		e.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})

	t.Run("valid key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ok", nil)
		req.Header.Set("X-Project-Key", "pk_live_123")
		w := httptest.NewRecorder()
		e.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", w.Code)
		}
	})
}
