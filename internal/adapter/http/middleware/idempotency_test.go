package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/mock/gomock"

	"github.com/partyvault/partyvault/internal/adapter/http/middleware"
	redisrepo "github.com/partyvault/partyvault/internal/adapter/repository/redis"
	"github.com/partyvault/partyvault/internal/usecase"
	"github.com/partyvault/partyvault/internal/usecase/mocks"
)

func TestIdempotencyPassThroughWithoutKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIdempotencyStore(ctrl)

	called := false
	handler := middleware.NewIdempotencyMiddleware(store, time.Minute).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/vaults/v1/split", strings.NewReader("{}"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called {
		t.Fatal("handler must run when no key is provided")
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
}

func TestIdempotencySkipsNonMutatingMethods(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIdempotencyStore(ctrl)

	handler := middleware.NewIdempotencyMiddleware(store, time.Minute).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/vaults", nil)
	req.Header.Set(middleware.IdempotencyKeyHeader, "key-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIdempotencyStore(ctrl)

	stored := []byte(`{"ok":true,"data":{"archived_count":3}}`)
	store.EXPECT().
		CheckAndSet(gomock.Any(), "split-key", gomock.Nil(), gomock.Any()).
		Return(true, stored, nil)

	handler := middleware.NewIdempotencyMiddleware(store, time.Minute).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run on replay")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/vaults/v1/split", strings.NewReader("{}"))
	req.Header.Set(middleware.IdempotencyKeyHeader, "split-key")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Header().Get("X-Idempotency-Replay") != "true" {
		t.Error("expected replay header")
	}
	if rec.Body.String() != string(stored) {
		t.Errorf("body = %s, want stored response", rec.Body.String())
	}
}

func TestIdempotencyStoresSuccessfulResponse(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIdempotencyStore(ctrl)

	store.EXPECT().
		CheckAndSet(gomock.Any(), "split-key", gomock.Nil(), gomock.Any()).
		Return(false, nil, nil)
	store.EXPECT().
		Update(gomock.Any(), "split-key", []byte(`{"ok":true}`), gomock.Any()).
		Return(nil)

	handler := middleware.NewIdempotencyMiddleware(store, time.Minute).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/vaults/v1/split", strings.NewReader("{}"))
	req.Header.Set(middleware.IdempotencyKeyHeader, "split-key")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestIdempotencyDoesNotStoreFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIdempotencyStore(ctrl)

	store.EXPECT().
		CheckAndSet(gomock.Any(), "split-key", gomock.Nil(), gomock.Any()).
		Return(false, nil, nil)
	store.EXPECT().
		Release(gomock.Any(), "split-key").
		Return(nil)

	handler := middleware.NewIdempotencyMiddleware(store, time.Minute).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"ok":false}`))
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/vaults/v1/split", strings.NewReader("{}"))
	req.Header.Set(middleware.IdempotencyKeyHeader, "split-key")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestIdempotencyRejectsInFlightDuplicate(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIdempotencyStore(ctrl)

	store.EXPECT().
		CheckAndSet(gomock.Any(), "split-key", gomock.Nil(), gomock.Any()).
		Return(true, []byte(usecase.IdempotencyProcessing), nil)

	handler := middleware.NewIdempotencyMiddleware(store, time.Minute).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run while the first request is in flight")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/vaults/v1/split", strings.NewReader("{}"))
	req.Header.Set(middleware.IdempotencyKeyHeader, "split-key")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

// Runs the middleware against the real Redis store: the first request
// claims the key and a concurrent duplicate is rejected while the claim
// still holds the placeholder.
func TestIdempotencyConcurrentDuplicateAgainstRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	defer client.Close()

	store := redisrepo.NewIdempotencyStore(client)

	// First request claims the key and is still executing.
	exists, _, err := store.CheckAndSet(context.Background(), "split-key", nil, time.Minute)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if exists {
		t.Fatal("fresh key must not exist")
	}

	executions := 0
	handler := middleware.NewIdempotencyMiddleware(store, time.Minute).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		executions++
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/vaults/v1/split", strings.NewReader("{}"))
	req.Header.Set(middleware.IdempotencyKeyHeader, "split-key")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if executions != 0 {
		t.Fatalf("handler ran %d times during an in-flight duplicate, want 0", executions)
	}

	// Once the first request stores its response, the same key replays it.
	stored := []byte(`{"ok":true,"data":{"archived_count":3}}`)
	if err := store.Update(context.Background(), "split-key", stored, time.Minute); err != nil {
		t.Fatalf("update: %v", err)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/vaults/v1/split", strings.NewReader("{}"))
	req.Header.Set(middleware.IdempotencyKeyHeader, "split-key")
	handler.ServeHTTP(rec, req)

	if executions != 0 {
		t.Fatal("handler must not run on replay")
	}
	if rec.Body.String() != string(stored) {
		t.Errorf("body = %s, want stored response", rec.Body.String())
	}
}
