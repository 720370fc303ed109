package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/domain/chunk"
	"github.com/kailas-cloud/ragdex/internal/domain/corpus"
	"github.com/kailas-cloud/ragdex/internal/domain/session"
	chatuc "github.com/kailas-cloud/ragdex/internal/usecase/chat"
	healthuc "github.com/kailas-cloud/ragdex/internal/usecase/health"
)

type stubRetriever struct {
	matches []corpus.Match
	err     error
}

func (s *stubRetriever) Retrieve(context.Context, string) ([]corpus.Match, error) {
	return s.matches, s.err
}

type stubGenerator struct {
	text string
	err  error
}

func (s *stubGenerator) Generate(context.Context, string) (domain.GenerationResult, error) {
	if s.err != nil {
		return domain.GenerationResult{}, s.err
	}
	return domain.GenerationResult{Text: s.text}, nil
}

type stubSessions struct{}

func (stubSessions) History(string) []session.Message  { return nil }
func (stubSessions) Append(string, ...session.Message) {}

type stubStore struct{ ready bool }

func (s stubStore) Ready() bool { return s.ready }

func testMatch(t *testing.T) []corpus.Match {
	t.Helper()
	e, err := corpus.NewEntry(chunk.Reconstruct("doc", "chunk text", 0), []float32{1}, nil)
	if err != nil {
		t.Fatalf("build entry: %v", err)
	}
	snap, err := corpus.NewSnapshot([]corpus.Entry{e})
	if err != nil {
		t.Fatalf("build snapshot: %v", err)
	}
	matches, err := snap.Search([]float32{1}, 1, 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	return matches
}

func newTestRouter(t *testing.T, retriever *stubRetriever, generator *stubGenerator, storeReady bool) http.Handler {
	t.Helper()
	chat := chatuc.New(retriever, generator, stubSessions{}, zap.NewNop())
	health := healthuc.New(stubStore{ready: storeReady}, nil)
	srv := NewServer(chat, health, zap.NewNop())

	r := chi.NewRouter()
	srv.Register(r)
	return r
}

func postChat(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body["error"]
}

func TestChat_Success(t *testing.T) {
	router := newTestRouter(t,
		&stubRetriever{matches: testMatch(t)},
		&stubGenerator{text: "grounded answer"},
		true,
	)

	rec := postChat(t, router, `{"sessionId":"s1","message":"question"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Reply           string `json:"reply"`
		RetrievedChunks int    `json:"retrievedChunks"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Reply != "grounded answer" {
		t.Errorf("reply = %q", resp.Reply)
	}
	if resp.RetrievedChunks != 1 {
		t.Errorf("retrievedChunks = %d", resp.RetrievedChunks)
	}
}

func TestChat_MissingSessionID(t *testing.T) {
	router := newTestRouter(t, &stubRetriever{}, &stubGenerator{}, true)

	rec := postChat(t, router, `{"message":"question"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decodeError(t, rec); got != "sessionId is required." {
		t.Errorf("error = %q", got)
	}
}

func TestChat_EmptyMessage(t *testing.T) {
	router := newTestRouter(t, &stubRetriever{}, &stubGenerator{}, true)

	rec := postChat(t, router, `{"sessionId":"s1","message":"  "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decodeError(t, rec); got != "message cannot be empty." {
		t.Errorf("error = %q", got)
	}
}

func TestChat_InvalidBody(t *testing.T) {
	router := newTestRouter(t, &stubRetriever{}, &stubGenerator{}, true)

	rec := postChat(t, router, `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decodeError(t, rec); got != "Invalid request body." {
		t.Errorf("error = %q", got)
	}
}

func TestChat_ErrorMapping(t *testing.T) {
	cases := []struct {
		name        string
		retriever   *stubRetriever
		generator   *stubGenerator
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "store not ready",
			retriever:   &stubRetriever{err: domain.ErrStoreNotReady},
			generator:   &stubGenerator{},
			wantStatus:  http.StatusServiceUnavailable,
			wantMessage: "Vector store is unavailable.",
		},
		{
			name:        "provider timeout",
			retriever:   &stubRetriever{err: domain.ErrProviderTimeout},
			generator:   &stubGenerator{},
			wantStatus:  http.StatusGatewayTimeout,
			wantMessage: "Upstream provider timed out.",
		},
		{
			name:        "embedding provider error",
			retriever:   &stubRetriever{err: domain.ErrEmbeddingProviderError},
			generator:   &stubGenerator{},
			wantStatus:  http.StatusBadGateway,
			wantMessage: "Embedding provider error.",
		},
		{
			name:        "generation provider error",
			retriever:   nil,
			generator:   &stubGenerator{err: domain.ErrGenerationProviderError},
			wantStatus:  http.StatusBadGateway,
			wantMessage: "Generation provider error.",
		},
		{
			name:        "empty completion",
			retriever:   nil,
			generator:   &stubGenerator{text: "   "},
			wantStatus:  http.StatusBadGateway,
			wantMessage: "Generation provider error.",
		},
		{
			name:        "unexpected error",
			retriever:   &stubRetriever{err: errors.New("boom")},
			generator:   &stubGenerator{},
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Internal server error.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			retriever := tc.retriever
			if retriever == nil {
				retriever = &stubRetriever{matches: testMatch(t)}
			}
			router := newTestRouter(t, retriever, tc.generator, true)

			rec := postChat(t, router, `{"sessionId":"s1","message":"question"}`)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			if got := decodeError(t, rec); got != tc.wantMessage {
				t.Errorf("error = %q, want %q", got, tc.wantMessage)
			}
		})
	}
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(t, &stubRetriever{}, &stubGenerator{}, false)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// Liveness stays ok even when the store never loaded.
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q", body["status"])
	}
}

func TestReadyCheck(t *testing.T) {
	cases := []struct {
		name       string
		storeReady bool
		wantStatus int
	}{
		{"ready", true, http.StatusOK},
		{"not ready", false, http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(t, &stubRetriever{}, &stubGenerator{}, tc.storeReady)

			req := httptest.NewRequest(http.MethodGet, "/ready", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
		})
	}
}

func TestRoot(t *testing.T) {
	router := newTestRouter(t, &stubRetriever{}, &stubGenerator{}, true)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["message"] != "ragdex is running" {
		t.Errorf("message = %q", body["message"])
	}
	if body["version"] == "" {
		t.Error("version missing")
	}
}
