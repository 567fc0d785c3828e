package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	apperr "github.com/lbricard/stockdesk-backend/pkg/errors"
)

type fakeIdempotencyStore struct {
	records map[string]string
	ttls    map[string]time.Duration
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{
		records: make(map[string]string),
		ttls:    make(map[string]time.Duration),
	}
}

func (s *fakeIdempotencyStore) Get(_ context.Context, key string) (string, error) {
	return s.records[key], nil
}

func (s *fakeIdempotencyStore) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, exists := s.records[key]; exists {
		return false, nil
	}
	s.records[key] = value.(string)
	s.ttls[key] = ttl
	return true, nil
}

func (s *fakeIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "sd:idempotency:" + scope + ":" + id
}

func (s *fakeIdempotencyStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.records, key)
	}
	return nil
}

// newGuardedRouter mirrors how the production router mounts the middleware:
// on the /api/v1 subrouter, where chi's route pattern is still a wildcard
// when the middleware runs.
func newGuardedRouter(store *fakeIdempotencyStore, hits *atomic.Int32) http.Handler {
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(Idempotency(store, nil))
		r.Route("/reservations", func(r chi.Router) {
			r.Post("/", func(w http.ResponseWriter, _ *http.Request) {
				hits.Add(1)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(`{"data":{"groupId":"g1"}}`))
			})
			r.Get("/groups", func(w http.ResponseWriter, _ *http.Request) {
				hits.Add(1)
				w.WriteHeader(http.StatusOK)
			})
		})
	})
	return r
}

func submitRequest(body, key string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(body))
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	return req.WithContext(WithUserID(req.Context(), uuid.New()))
}

func TestIdempotencyRequiresKeyThroughRouter(t *testing.T) {
	var hits atomic.Int32
	router := newGuardedRouter(newFakeIdempotencyStore(), &hits)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, submitRequest(`{}`, ""))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(apperr.CodeValidation) {
		t.Fatalf("expected validation code, got %s", envelope.Error.Code)
	}
	if hits.Load() != 0 {
		t.Fatalf("handler must not run without an idempotency key")
	}
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	var hits atomic.Int32
	store := newFakeIdempotencyStore()
	router := newGuardedRouter(store, &hits)

	first := httptest.NewRecorder()
	req := submitRequest(`{"cart":"a"}`, "key-1")
	router.ServeHTTP(first, req)
	if first.Code != http.StatusOK {
		t.Fatalf("first submit: expected 200 got %d", first.Code)
	}

	replay := httptest.NewRecorder()
	replayReq := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(`{"cart":"a"}`))
	replayReq.Header.Set("Idempotency-Key", "key-1")
	replayReq = replayReq.WithContext(req.Context())
	router.ServeHTTP(replay, replayReq)

	if replay.Code != http.StatusOK {
		t.Fatalf("replay: expected 200 got %d", replay.Code)
	}
	if got := replay.Body.String(); got != first.Body.String() {
		t.Fatalf("replay must return the stored body, got %q", got)
	}
	if hits.Load() != 1 {
		t.Fatalf("replay must not reach the handler, hits=%d", hits.Load())
	}
	for key, ttl := range store.ttls {
		if ttl != criticalIdempotencyTTL {
			t.Fatalf("submit records must keep the long ttl, key=%s ttl=%s", key, ttl)
		}
	}
}

func TestIdempotencyRejectsKeyReuseWithDifferentBody(t *testing.T) {
	var hits atomic.Int32
	router := newGuardedRouter(newFakeIdempotencyStore(), &hits)

	first := httptest.NewRecorder()
	req := submitRequest(`{"cart":"a"}`, "key-1")
	router.ServeHTTP(first, req)

	second := httptest.NewRecorder()
	secondReq := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(`{"cart":"b"}`))
	secondReq.Header.Set("Idempotency-Key", "key-1")
	secondReq = secondReq.WithContext(req.Context())
	router.ServeHTTP(second, secondReq)

	if second.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", second.Code)
	}
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(second.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(apperr.CodeIdempotency) {
		t.Fatalf("expected idempotency code, got %s", envelope.Error.Code)
	}
	if hits.Load() != 1 {
		t.Fatalf("second request must not reach the handler, hits=%d", hits.Load())
	}
}

func TestIdempotencyIgnoresUnguardedRoutes(t *testing.T) {
	var hits atomic.Int32
	router := newGuardedRouter(newFakeIdempotencyStore(), &hits)

	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reservations/groups", nil)
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if hits.Load() != 1 {
		t.Fatalf("unguarded route must pass through, hits=%d", hits.Load())
	}
}
