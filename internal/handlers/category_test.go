package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/dekorhaus/apiserver/types"
)

func TestListCategoriesPublic(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/categories/", "", nil)
	requireStatus(t, rec, http.StatusOK)

	categories := decodeBody[[]types.Category](t, rec)
	if len(categories) != 0 {
		t.Fatalf("category count = %d, want 0", len(categories))
	}
}

func TestCreateCategoryRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	user := env.addRegularUser(t)
	token := env.tokenFor(t, user.ID)

	rec := env.do(t, http.MethodPost, "/categories/add", token, CategoryRequest{Name: "Residential"})
	requireStatus(t, rec, http.StatusForbidden)
}

func TestCreateCategoryTrimsName(t *testing.T) {
	env := newTestEnv(t)
	admin := env.addAdmin(t)
	token := env.tokenFor(t, admin.ID)

	rec := env.do(t, http.MethodPost, "/categories/add", token, CategoryRequest{Name: "  Residential  "})
	requireStatus(t, rec, http.StatusCreated)

	created := decodeBody[types.Category](t, rec)
	if created.Name != "Residential" {
		t.Fatalf("name = %q, want trimmed %q", created.Name, "Residential")
	}
	if created.ID == 0 {
		t.Fatalf("expected category ID to be set")
	}
}

func TestCreateCategoryRejectsBlankName(t *testing.T) {
	env := newTestEnv(t)
	admin := env.addAdmin(t)
	token := env.tokenFor(t, admin.ID)

	rec := env.do(t, http.MethodPost, "/categories/add", token, CategoryRequest{Name: "   "})
	requireStatus(t, rec, http.StatusBadRequest)
}

func TestDeleteCategory(t *testing.T) {
	env := newTestEnv(t)
	admin := env.addAdmin(t)
	token := env.tokenFor(t, admin.ID)

	rec := env.do(t, http.MethodPost, "/categories/add", token, CategoryRequest{Name: "Residential"})
	requireStatus(t, rec, http.StatusCreated)
	created := decodeBody[types.Category](t, rec)

	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/categories/%d/delete", created.ID), token, nil)
	requireStatus(t, rec, http.StatusOK)

	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/categories/%d/delete", created.ID), token, nil)
	requireStatus(t, rec, http.StatusNotFound)
}
