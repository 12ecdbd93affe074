package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dekorhaus/apiserver/internal/services"
	"github.com/dekorhaus/apiserver/internal/storage"
	"github.com/dekorhaus/apiserver/internal/store"
	"github.com/go-chi/chi/v5"
)

type fakeObjectBackend struct {
	objects map[string][]byte
}

func newFakeObjectBackend() *fakeObjectBackend {
	return &fakeObjectBackend{objects: map[string][]byte{}}
}

func (b *fakeObjectBackend) EnsureBucket(ctx context.Context) error { return nil }

func (b *fakeObjectBackend) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	b.objects[key] = data
	return nil
}

func (b *fakeObjectBackend) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := b.objects[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *fakeObjectBackend) Delete(ctx context.Context, key string) error {
	delete(b.objects, key)
	return nil
}

func (b *fakeObjectBackend) Bucket() string { return "test-bucket" }

func newMediaTestEnv(t *testing.T) (*testEnv, *fakeObjectBackend) {
	t.Helper()

	env := newTestEnv(t)
	backend := newFakeObjectBackend()
	userService := services.NewUserService(env.users)
	env.router.Route("/media", func(r chi.Router) {
		MediaRouter(r, storage.NewStorage(backend), "http://localhost:8080", userService, RequireAuth(testJWTSecret))
	})
	return env, backend
}

func uploadFile(t *testing.T, env *testEnv, token, filename, contents string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(contents)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/media/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func TestMediaUploadRequiresAdmin(t *testing.T) {
	env, _ := newMediaTestEnv(t)
	user := env.addRegularUser(t)
	token := env.tokenFor(t, user.ID)

	rec := uploadFile(t, env, token, "plan.png", "not really a png")
	requireStatus(t, rec, http.StatusForbidden)
}

func TestMediaUploadAndServe(t *testing.T) {
	env, backend := newMediaTestEnv(t)
	admin := env.addAdmin(t)
	token := env.tokenFor(t, admin.ID)

	rec := uploadFile(t, env, token, "plan.png", "fake image bytes")
	requireStatus(t, rec, http.StatusCreated)

	resp := decodeBody[MediaResponse](t, rec)
	if resp.Key == "" {
		t.Fatalf("expected a key in the upload response")
	}
	if !strings.HasSuffix(resp.Key, ".png") {
		t.Fatalf("key = %q, want the original extension kept", resp.Key)
	}
	if resp.URL != "http://localhost:8080/media/"+resp.Key {
		t.Fatalf("url = %q, want it built from the base URL and key", resp.URL)
	}
	if _, ok := backend.objects[resp.Key]; !ok {
		t.Fatalf("object %q not stored in the backend", resp.Key)
	}

	serve := env.do(t, http.MethodGet, "/media/"+resp.Key, "", nil)
	requireStatus(t, serve, http.StatusOK)
	if serve.Body.String() != "fake image bytes" {
		t.Fatalf("served body = %q, want the uploaded bytes", serve.Body.String())
	}
	if ct := serve.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content type = %q, want image/png", ct)
	}
}

func TestMediaUploadMissingFile(t *testing.T) {
	env, _ := newMediaTestEnv(t)
	admin := env.addAdmin(t)
	token := env.tokenFor(t, admin.ID)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("unrelated", "value"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/media/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	requireStatus(t, rec, http.StatusBadRequest)
}

func TestMediaServeUnknownKey(t *testing.T) {
	env, _ := newMediaTestEnv(t)

	rec := env.do(t, http.MethodGet, "/media/missing.png", "", nil)
	requireStatus(t, rec, http.StatusNotFound)
}
