package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dekorhaus/apiserver/internal/services"
	"github.com/dekorhaus/apiserver/internal/store"
	"github.com/go-chi/chi/v5"
)

// CategoryHandler provides HTTP handlers for categories. Listing is
// public; create and delete are admin tooling.
type CategoryHandler struct {
	categoryService *services.CategoryService
}

func NewCategoryHandler(categoryService *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CategoryRouter registers category routes on the given router.
func CategoryRouter(
	r chi.Router,
	categoryService *services.CategoryService,
	userService *services.UserService,
	authMiddleware func(http.Handler) http.Handler,
) {
	handler := NewCategoryHandler(categoryService)
	admin := RequireAdmin(userService)

	r.Get("/", handler.ListCategories)
	r.With(authMiddleware, admin).Post("/add", handler.CreateCategory)
	r.With(authMiddleware, admin).Delete("/{categoryID}/delete", handler.DeleteCategory)
}

func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	category, err := h.categoryService.Create(r.Context(), req.Name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, category)
}

func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "categoryID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	if err := h.categoryService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete category")
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Success: "category deleted"})
}

type CategoryRequest struct {
	Name string `json:"name"`
}
