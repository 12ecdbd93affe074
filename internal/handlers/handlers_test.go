package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/dekorhaus/apiserver/internal/services"
	"github.com/dekorhaus/apiserver/internal/store"
	"github.com/dekorhaus/apiserver/types"
	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test-secret"

type fakeUserRepo struct {
	nextID int
	users  map[int]types.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: map[int]types.User{}}
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int) (types.User, error) {
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (types.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	for _, user := range r.users {
		if user.Email != "" && user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) GetByEmailFold(ctx context.Context, email string) (types.User, error) {
	for _, user := range r.users {
		if user.Email != "" && strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	for _, existing := range r.users {
		if existing.Username == user.Username {
			return types.User{}, errors.New("duplicate username")
		}
	}
	user.ID = r.nextID
	r.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = user
	return user, nil
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	user, ok := r.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = time.Now()
	r.users[id] = user
	return nil
}

type fakeProjectRepo struct {
	nextID      int
	nextImageID int
	order       []int
	projects    map[int]*types.Project
	categories  map[int]string
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{
		nextID:      1,
		nextImageID: 1,
		projects:    map[int]*types.Project{},
		categories:  map[int]string{},
	}
}

func (r *fakeProjectRepo) List(ctx context.Context) ([]types.Project, error) {
	out := make([]types.Project, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		out = append(out, *r.projects[r.order[i]])
	}
	return out, nil
}

func (r *fakeProjectRepo) Get(ctx context.Context, id int) (types.Project, error) {
	project, ok := r.projects[id]
	if !ok {
		return types.Project{}, store.ErrNotFound
	}
	return *project, nil
}

func (r *fakeProjectRepo) Exists(ctx context.Context, id int) (bool, error) {
	_, ok := r.projects[id]
	return ok, nil
}

func (r *fakeProjectRepo) Create(ctx context.Context, project types.Project, categoryIDs []int, imageURLs []string) (types.Project, error) {
	names, err := r.categoryNames(categoryIDs)
	if err != nil {
		return types.Project{}, err
	}

	project.ID = r.nextID
	r.nextID++
	project.CreatedAt = time.Now()
	project.UpdatedAt = project.CreatedAt
	project.Categories = names
	project.Images = []types.ProjectImage{}
	for i, url := range imageURLs {
		if i == 0 {
			primary := url
			project.Image = &primary
		}
		project.Images = append(project.Images, types.ProjectImage{
			ID:        r.nextImageID,
			ProjectID: project.ID,
			Image:     url,
		})
		r.nextImageID++
	}

	r.projects[project.ID] = &project
	r.order = append(r.order, project.ID)
	return *r.projects[project.ID], nil
}

func (r *fakeProjectRepo) Update(ctx context.Context, id int, patch types.ProjectPatch, imageURLs []string, categoryIDs []int, replaceCategories bool) (types.Project, error) {
	project, ok := r.projects[id]
	if !ok {
		return types.Project{}, store.ErrNotFound
	}

	if patch.Title != nil {
		project.Title = *patch.Title
	}
	if patch.Description != nil {
		project.Description = *patch.Description
	}
	if patch.DesignType != nil {
		project.DesignType = *patch.DesignType
	}
	if patch.InteriorOrExterior != nil {
		project.InteriorOrExterior = *patch.InteriorOrExterior
	}
	if patch.PlotSize != nil {
		project.PlotSize = *patch.PlotSize
	}
	if patch.DesignLoc != nil {
		project.DesignLoc = *patch.DesignLoc
	}
	if patch.ContactNumber != nil {
		project.ContactNumber = *patch.ContactNumber
	}
	if patch.WhatsappNumber != nil {
		project.WhatsappNumber = *patch.WhatsappNumber
	}

	for i, url := range imageURLs {
		if i == 0 && project.Image == nil {
			primary := url
			project.Image = &primary
		}
		project.Images = append(project.Images, types.ProjectImage{
			ID:        r.nextImageID,
			ProjectID: id,
			Image:     url,
		})
		r.nextImageID++
	}

	if replaceCategories {
		names, err := r.categoryNames(categoryIDs)
		if err != nil {
			return types.Project{}, err
		}
		project.Categories = names
	}

	project.UpdatedAt = time.Now()
	return *project, nil
}

func (r *fakeProjectRepo) Delete(ctx context.Context, id int) error {
	if _, ok := r.projects[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.projects, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeProjectRepo) DeleteImage(ctx context.Context, id int) error {
	for _, project := range r.projects {
		for i, image := range project.Images {
			if image.ID == id {
				project.Images = append(project.Images[:i], project.Images[i+1:]...)
				return nil
			}
		}
	}
	return store.ErrNotFound
}

func (r *fakeProjectRepo) categoryNames(ids []int) ([]string, error) {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		name, ok := r.categories[id]
		if !ok {
			return nil, fmt.Errorf("category %d does not exist", id)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

type fakeCategoryRepo struct {
	nextID   int
	order    []int
	names    map[int]string
	projects *fakeProjectRepo
}

func newFakeCategoryRepo(projects *fakeProjectRepo) *fakeCategoryRepo {
	return &fakeCategoryRepo{nextID: 1, names: map[int]string{}, projects: projects}
}

func (r *fakeCategoryRepo) List(ctx context.Context) ([]types.Category, error) {
	out := make([]types.Category, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, types.Category{ID: id, Name: r.names[id]})
	}
	return out, nil
}

func (r *fakeCategoryRepo) Create(ctx context.Context, category types.Category) (types.Category, error) {
	category.ID = r.nextID
	r.nextID++
	r.names[category.ID] = category.Name
	r.order = append(r.order, category.ID)
	r.projects.categories[category.ID] = category.Name
	return category, nil
}

func (r *fakeCategoryRepo) Delete(ctx context.Context, id int) error {
	if _, ok := r.names[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.names, id)
	delete(r.projects.categories, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

type fakeFeedbackRepo struct {
	nextID    int
	feedbacks []types.Feedback
	users     *fakeUserRepo
}

func newFakeFeedbackRepo(users *fakeUserRepo) *fakeFeedbackRepo {
	return &fakeFeedbackRepo{nextID: 1, users: users}
}

func (r *fakeFeedbackRepo) ListByProject(ctx context.Context, projectID int) ([]types.Feedback, error) {
	out := []types.Feedback{}
	for i := len(r.feedbacks) - 1; i >= 0; i-- {
		if r.feedbacks[i].ProjectID == projectID {
			out = append(out, r.feedbacks[i])
		}
	}
	return out, nil
}

func (r *fakeFeedbackRepo) Get(ctx context.Context, id int) (types.Feedback, error) {
	for _, feedback := range r.feedbacks {
		if feedback.ID == id {
			return feedback, nil
		}
	}
	return types.Feedback{}, store.ErrNotFound
}

func (r *fakeFeedbackRepo) Create(ctx context.Context, feedback types.Feedback) (types.Feedback, error) {
	feedback.ID = r.nextID
	r.nextID++
	feedback.CreatedAt = time.Now()
	if user, ok := r.users.users[feedback.UserID]; ok {
		feedback.Username = user.Username
	}
	r.feedbacks = append(r.feedbacks, feedback)
	return feedback, nil
}

func (r *fakeFeedbackRepo) Delete(ctx context.Context, id int) error {
	for i, feedback := range r.feedbacks {
		if feedback.ID == id {
			r.feedbacks = append(r.feedbacks[:i], r.feedbacks[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

type fakePublisher struct {
	published []string
	err       error
}

func (p *fakePublisher) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.published = append(p.published, channel)
	return fmt.Sprintf("msg-%d", len(p.published)), nil
}

// testEnv wires the full router against in-memory repositories, the
// same way the server package does against postgres.
type testEnv struct {
	router     *chi.Mux
	users      *fakeUserRepo
	projects   *fakeProjectRepo
	categories *fakeCategoryRepo
	feedbacks  *fakeFeedbackRepo
	publisher  *fakePublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := newFakeUserRepo()
	projects := newFakeProjectRepo()
	categories := newFakeCategoryRepo(projects)
	feedbacks := newFakeFeedbackRepo(users)
	publisher := &fakePublisher{}

	projectService := services.NewProjectService(projects)
	categoryService := services.NewCategoryService(categories)
	feedbackService := services.NewFeedbackService(feedbacks, projects, publisher)
	userService := services.NewUserService(users)

	authMiddleware := RequireAuth(testJWTSecret)

	router := chi.NewRouter()
	router.Get("/healthz", Healthz)
	router.Route("/projects", func(r chi.Router) {
		ProjectRouter(r, projectService, feedbackService, userService, authMiddleware)
	})
	router.Route("/categories", func(r chi.Router) {
		CategoryRouter(r, categoryService, userService, authMiddleware)
	})
	router.Route("/feedbacks", func(r chi.Router) {
		FeedbackRouter(r, feedbackService, userService, authMiddleware)
	})
	router.Route("/images", func(r chi.Router) {
		ImageRouter(r, projectService, userService, authMiddleware)
	})
	AuthRouter(router, userService, testJWTSecret)

	return &testEnv{
		router:     router,
		users:      users,
		projects:   projects,
		categories: categories,
		feedbacks:  feedbacks,
		publisher:  publisher,
	}
}

func (e *testEnv) addUser(t *testing.T, username, password, role string, staff, superuser bool) types.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user, err := e.users.Create(context.Background(), types.User{
		Username:     username,
		Email:        username + "@example.com",
		Role:         role,
		IsStaff:      staff,
		IsSuperuser:  superuser,
		PasswordHash: string(hashed),
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func (e *testEnv) addAdmin(t *testing.T) types.User {
	t.Helper()
	return e.addUser(t, "admin", "adminpass", types.RoleAdmin, false, false)
}

func (e *testEnv) addRegularUser(t *testing.T) types.User {
	t.Helper()
	return e.addUser(t, "visitor", "visitorpass", types.RoleUser, false, false)
}

func (e *testEnv) tokenFor(t *testing.T, userID int) string {
	t.Helper()

	token, err := issueToken(userID, []byte(testJWTSecret), time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func (e *testEnv) addProject(t *testing.T, title string) types.Project {
	t.Helper()

	project, err := e.projects.Create(context.Background(), types.Project{
		Title:              title,
		Description:        "a finished job",
		DesignType:         types.DesignType3D,
		InteriorOrExterior: types.PlacementInterior,
		PlotSize:           "30x40",
		DesignLoc:          "Indore",
		ContactNumber:      "+911234567890",
		WhatsappNumber:     "+911234567890",
	}, nil, nil)
	if err != nil {
		t.Fatalf("seed project: %v", err)
	}
	return project
}

func (e *testEnv) do(t *testing.T, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return out
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()

	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %q)", rec.Code, want, rec.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/healthz", "", nil)
	requireStatus(t, rec, http.StatusOK)

	body := decodeBody[map[string]string](t, rec)
	if body["status"] != "ok" {
		t.Fatalf("status field = %q, want %q", body["status"], "ok")
	}
}
