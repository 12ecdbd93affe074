package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dekorhaus/apiserver/internal/services"
	"github.com/dekorhaus/apiserver/internal/store"
	"github.com/dekorhaus/apiserver/types"
	"github.com/go-chi/chi/v5"
)

// ProjectHandler provides HTTP handlers for the project catalog and
// admin project mutation.
type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// ProjectRouter registers project routes on the given router. Reads are
// public; mutations require an authenticated admin.
func ProjectRouter(
	r chi.Router,
	projectService *services.ProjectService,
	feedbackService *services.FeedbackService,
	userService *services.UserService,
	authMiddleware func(http.Handler) http.Handler,
) {
	handler := NewProjectHandler(projectService)
	feedbackHandler := NewFeedbackHandler(feedbackService)
	admin := RequireAdmin(userService)

	r.Get("/", handler.ListProjects)
	r.With(authMiddleware, admin).Post("/add", handler.CreateProject)
	r.Route("/{projectID}", func(r chi.Router) {
		r.Get("/", handler.GetProject)
		r.With(authMiddleware, admin).Patch("/update", handler.UpdateProject)
		r.With(authMiddleware, admin).Post("/update", handler.UpdateProject)
		r.With(authMiddleware, admin).Delete("/delete", handler.DeleteProject)

		r.Get("/feedback", feedbackHandler.ListFeedback)
		r.With(authMiddleware).Post("/feedback", feedbackHandler.AddFeedback)
	})
}

// ImageRouter registers gallery-image routes on the given router.
func ImageRouter(
	r chi.Router,
	projectService *services.ProjectService,
	userService *services.UserService,
	authMiddleware func(http.Handler) http.Handler,
) {
	handler := NewProjectHandler(projectService)
	admin := RequireAdmin(userService)

	r.With(authMiddleware, admin).Delete("/{imageID}/delete", handler.DeleteImage)
}

func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projectService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list projects")
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "projectID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	project, err := h.projectService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "project not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch project")
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req ProjectCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	project := types.Project{
		Title:              req.Title,
		Description:        req.Description,
		DesignType:         req.DesignType,
		InteriorOrExterior: req.InteriorOrExterior,
		PlotSize:           req.PlotSize,
		DesignLoc:          req.DesignLoc,
		ContactNumber:      req.ContactNumber,
		WhatsappNumber:     req.WhatsappNumber,
	}

	created, err := h.projectService.Create(r.Context(), project, req.Categories, req.Images)
	if err != nil {
		// Failures in this flow, validation or otherwise, report as a
		// client error with the failure text.
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "projectID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	var req ProjectUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	patch := types.ProjectPatch{
		Title:              req.Title,
		Description:        req.Description,
		DesignType:         req.DesignType,
		InteriorOrExterior: req.InteriorOrExterior,
		PlotSize:           req.PlotSize,
		DesignLoc:          req.DesignLoc,
		ContactNumber:      req.ContactNumber,
		WhatsappNumber:     req.WhatsappNumber,
	}

	// A present-but-empty categories list clears the associations; an
	// absent field leaves them untouched. The two must not alias.
	var categoryIDs []int
	replaceCategories := req.Categories != nil
	if replaceCategories {
		categoryIDs = *req.Categories
	}

	updated, err := h.projectService.Update(r.Context(), id, patch, req.Images, categoryIDs, replaceCategories)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "project not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "projectID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	if err := h.projectService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "project not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete project")
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Success: "project deleted"})
}

func (h *ProjectHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "imageID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid image id")
		return
	}

	if err := h.projectService.DeleteImage(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "image not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete image")
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Success: "image deleted"})
}

// ProjectCreateRequest is the JSON payload for project creation. Images
// carries already-uploaded media URLs; the first becomes the primary
// image.
type ProjectCreateRequest struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	DesignType         string   `json:"design_type"`
	InteriorOrExterior string   `json:"interior_or_exterior"`
	PlotSize           string   `json:"plot_size"`
	DesignLoc          string   `json:"design_loc"`
	ContactNumber      string   `json:"contact_number"`
	WhatsappNumber     string   `json:"whatsapp_number"`
	Categories         []int    `json:"categories"`
	Images             []string `json:"images"`
}

// ProjectUpdateRequest is the JSON payload for partial project updates.
// Pointer fields distinguish absent from empty.
type ProjectUpdateRequest struct {
	Title              *string  `json:"title"`
	Description        *string  `json:"description"`
	DesignType         *string  `json:"design_type"`
	InteriorOrExterior *string  `json:"interior_or_exterior"`
	PlotSize           *string  `json:"plot_size"`
	DesignLoc          *string  `json:"design_loc"`
	ContactNumber      *string  `json:"contact_number"`
	WhatsappNumber     *string  `json:"whatsapp_number"`
	Categories         *[]int   `json:"categories"`
	Images             []string `json:"images"`
}
