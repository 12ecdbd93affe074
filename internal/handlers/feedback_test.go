package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/dekorhaus/apiserver/types"
)

func TestListFeedbackEmptyProject(t *testing.T) {
	env := newTestEnv(t)
	project := env.addProject(t, "villa")

	rec := env.do(t, http.MethodGet, fmt.Sprintf("/projects/%d/feedback", project.ID), "", nil)
	requireStatus(t, rec, http.StatusOK)

	feedbacks := decodeBody[[]types.Feedback](t, rec)
	if len(feedbacks) != 0 {
		t.Fatalf("feedback count = %d, want 0", len(feedbacks))
	}
}

func TestListFeedbackMissingProject(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/projects/42/feedback", "", nil)
	requireStatus(t, rec, http.StatusNotFound)

	resp := decodeBody[ErrorResponse](t, rec)
	if resp.Error != "project not found" {
		t.Fatalf("error = %q, want %q", resp.Error, "project not found")
	}
}

func TestAddFeedback(t *testing.T) {
	env := newTestEnv(t)
	user := env.addRegularUser(t)
	token := env.tokenFor(t, user.ID)
	project := env.addProject(t, "villa")

	rec := env.do(t, http.MethodPost, fmt.Sprintf("/projects/%d/feedback", project.ID), token, FeedbackRequest{
		Message: "lovely work",
	})
	requireStatus(t, rec, http.StatusOK)

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/projects/%d/feedback", project.ID), "", nil)
	requireStatus(t, rec, http.StatusOK)
	feedbacks := decodeBody[[]types.Feedback](t, rec)
	if len(feedbacks) != 1 {
		t.Fatalf("feedback count = %d, want 1", len(feedbacks))
	}
	if feedbacks[0].Message != "lovely work" {
		t.Fatalf("message = %q, want %q", feedbacks[0].Message, "lovely work")
	}
	if feedbacks[0].Username != user.Username {
		t.Fatalf("username = %q, want author %q", feedbacks[0].Username, user.Username)
	}

	if len(env.publisher.published) != 1 {
		t.Fatalf("published events = %d, want 1", len(env.publisher.published))
	}
}

func TestAddFeedbackRequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	project := env.addProject(t, "villa")

	rec := env.do(t, http.MethodPost, fmt.Sprintf("/projects/%d/feedback", project.ID), "", FeedbackRequest{
		Message: "lovely work",
	})
	requireStatus(t, rec, http.StatusUnauthorized)
}

func TestAddFeedbackEmptyMessage(t *testing.T) {
	env := newTestEnv(t)
	user := env.addRegularUser(t)
	token := env.tokenFor(t, user.ID)
	project := env.addProject(t, "villa")

	rec := env.do(t, http.MethodPost, fmt.Sprintf("/projects/%d/feedback", project.ID), token, FeedbackRequest{
		Message: "   ",
	})
	requireStatus(t, rec, http.StatusBadRequest)

	resp := decodeBody[ErrorResponse](t, rec)
	if resp.Error != "message cannot be empty" {
		t.Fatalf("error = %q, want %q", resp.Error, "message cannot be empty")
	}
}

func TestAddFeedbackMissingProject(t *testing.T) {
	env := newTestEnv(t)
	user := env.addRegularUser(t)
	token := env.tokenFor(t, user.ID)

	rec := env.do(t, http.MethodPost, "/projects/42/feedback", token, FeedbackRequest{
		Message: "lovely work",
	})
	requireStatus(t, rec, http.StatusNotFound)
}

func TestAddFeedbackSurvivesPublishFailure(t *testing.T) {
	env := newTestEnv(t)
	env.publisher.err = errors.New("broker down")
	user := env.addRegularUser(t)
	token := env.tokenFor(t, user.ID)
	project := env.addProject(t, "villa")

	rec := env.do(t, http.MethodPost, fmt.Sprintf("/projects/%d/feedback", project.ID), token, FeedbackRequest{
		Message: "lovely work",
	})
	requireStatus(t, rec, http.StatusOK)

	if len(env.feedbacks.feedbacks) != 1 {
		t.Fatalf("feedback count = %d, want 1 despite broker failure", len(env.feedbacks.feedbacks))
	}
}

func TestDeleteFeedbackRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	user := env.addRegularUser(t)
	token := env.tokenFor(t, user.ID)

	rec := env.do(t, http.MethodDelete, "/feedbacks/1/delete", token, nil)
	requireStatus(t, rec, http.StatusForbidden)
}

func TestDeleteFeedback(t *testing.T) {
	env := newTestEnv(t)
	admin := env.addAdmin(t)
	user := env.addRegularUser(t)
	adminToken := env.tokenFor(t, admin.ID)
	userToken := env.tokenFor(t, user.ID)
	project := env.addProject(t, "villa")

	rec := env.do(t, http.MethodPost, fmt.Sprintf("/projects/%d/feedback", project.ID), userToken, FeedbackRequest{
		Message: "lovely work",
	})
	requireStatus(t, rec, http.StatusOK)

	id := env.feedbacks.feedbacks[0].ID
	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/feedbacks/%d/delete", id), adminToken, nil)
	requireStatus(t, rec, http.StatusOK)

	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/feedbacks/%d/delete", id), adminToken, nil)
	requireStatus(t, rec, http.StatusNotFound)
}
