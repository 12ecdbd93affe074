package handlers

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"regexp"
	"strings"

	"github.com/dekorhaus/apiserver/internal/services"
	"github.com/dekorhaus/apiserver/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	maxUploadMemory = 32 << 20
	maxUploadBytes  = 32 << 20
	formFieldFile   = "file"
)

var mediaKeyPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// MediaHandler stores uploaded project images in the object store and
// serves them back under stable /media/{key} URLs.
type MediaHandler struct {
	storage *storage.Storage
	baseURL string
}

func NewMediaHandler(store *storage.Storage, baseURL string) *MediaHandler {
	return &MediaHandler{
		storage: store,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// MediaRouter registers media routes on the given router. Upload is
// admin-only; serving is public so stored URLs work unauthenticated.
func MediaRouter(
	r chi.Router,
	store *storage.Storage,
	baseURL string,
	userService *services.UserService,
	authMiddleware func(http.Handler) http.Handler,
) {
	handler := NewMediaHandler(store, baseURL)
	admin := RequireAdmin(userService)

	r.With(authMiddleware, admin).Post("/upload", handler.Upload)
	r.Get("/{key}", handler.Serve)
}

// Upload accepts one multipart image, stores it under a fresh key, and
// returns the stable URL to reference from project records.
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	if r.MultipartForm == nil || len(r.MultipartForm.File[formFieldFile]) == 0 {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	fileHeader := r.MultipartForm.File[formFieldFile][0]

	file, err := fileHeader.Open()
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}
	data, err := readFileLimited(file, maxUploadBytes)
	_ = file.Close()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	key := uuid.NewString()
	if ext := path.Ext(fileHeader.Filename); ext != "" && mediaKeyPattern.MatchString(ext[1:]) {
		key += ext
	}

	if err := h.storage.Put(r.Context(), key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store file")
		return
	}

	writeJSON(w, http.StatusCreated, MediaResponse{
		Key: key,
		URL: h.baseURL + "/media/" + key,
	})
}

// Serve streams a stored object back to the client.
func (h *MediaHandler) Serve(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if !mediaKeyPattern.MatchString(key) {
		writeError(w, http.StatusBadRequest, "invalid media key")
		return
	}

	object, err := h.storage.Get(r.Context(), key)
	if err != nil {
		writeError(w, http.StatusNotFound, "media not found")
		return
	}
	defer object.Close()

	if contentType := mime.TypeByExtension(path.Ext(key)); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}

	if _, err := io.Copy(w, object); err != nil {
		// Headers are already out; nothing useful left to report.
		return
	}
}

type MediaResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

func readFileLimited(reader io.Reader, limit int64) ([]byte, error) {
	limited := io.LimitReader(reader, limit+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, errors.New("failed to read upload")
	}
	if int64(len(data)) > limit {
		return nil, errors.New("uploaded file too large")
	}
	return data, nil
}
