package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dekorhaus/apiserver/internal/services"
	"github.com/dekorhaus/apiserver/internal/store"
	"github.com/go-chi/chi/v5"
)

// FeedbackHandler provides HTTP handlers for project feedback.
type FeedbackHandler struct {
	feedbackService *services.FeedbackService
}

func NewFeedbackHandler(feedbackService *services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

// FeedbackRouter registers the admin feedback-deletion route.
func FeedbackRouter(
	r chi.Router,
	feedbackService *services.FeedbackService,
	userService *services.UserService,
	authMiddleware func(http.Handler) http.Handler,
) {
	handler := NewFeedbackHandler(feedbackService)
	admin := RequireAdmin(userService)

	r.With(authMiddleware, admin).Delete("/{feedbackID}/delete", handler.DeleteFeedback)
}

// ListFeedback returns a project's feedback, newest first. A project
// with no feedback yields an empty array, not an error.
func (h *FeedbackHandler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseIDParam(chi.URLParam(r, "projectID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	feedbacks, err := h.feedbackService.ListByProject(r.Context(), projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "project not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to list feedback")
		return
	}

	writeJSON(w, http.StatusOK, feedbacks)
}

func (h *FeedbackHandler) AddFeedback(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseIDParam(chi.URLParam(r, "projectID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message cannot be empty")
		return
	}

	if _, err := h.feedbackService.Add(r.Context(), projectID, userID, req.Message); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "project not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to submit feedback")
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Success: "feedback submitted"})
}

func (h *FeedbackHandler) DeleteFeedback(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "feedbackID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid feedback id")
		return
	}

	if err := h.feedbackService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "feedback not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete feedback")
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Success: "feedback deleted"})
}

type FeedbackRequest struct {
	Message string `json:"message"`
}
