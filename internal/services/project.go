package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dekorhaus/apiserver/types"
)

// ProjectRepository defines persistence operations for projects and
// their owned images and category associations.
type ProjectRepository interface {
	List(ctx context.Context) ([]types.Project, error)
	Get(ctx context.Context, id int) (types.Project, error)
	Exists(ctx context.Context, id int) (bool, error)
	Create(ctx context.Context, project types.Project, categoryIDs []int, imageURLs []string) (types.Project, error)
	Update(ctx context.Context, id int, patch types.ProjectPatch, imageURLs []string, categoryIDs []int, replaceCategories bool) (types.Project, error)
	Delete(ctx context.Context, id int) error
	DeleteImage(ctx context.Context, id int) error
}

// ProjectService encapsulates catalog reads and admin project mutation.
type ProjectService struct {
	repo ProjectRepository
}

func NewProjectService(repo ProjectRepository) *ProjectService {
	return &ProjectService{repo: repo}
}

// List returns all projects, newest first, with contact numbers
// normalized for output.
func (s *ProjectService) List(ctx context.Context) ([]types.Project, error) {
	projects, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range projects {
		projects[i].ContactNumber = NormalizeContactNumber(projects[i].ContactNumber)
	}
	return projects, nil
}

func (s *ProjectService) Get(ctx context.Context, id int) (types.Project, error) {
	project, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Project{}, err
	}
	project.ContactNumber = NormalizeContactNumber(project.ContactNumber)
	return project, nil
}

func (s *ProjectService) Exists(ctx context.Context, id int) (bool, error) {
	return s.repo.Exists(ctx, id)
}

func (s *ProjectService) Create(ctx context.Context, project types.Project, categoryIDs []int, imageURLs []string) (types.Project, error) {
	if err := validateProjectFields(project.Title, project.DesignType, project.InteriorOrExterior); err != nil {
		return types.Project{}, err
	}

	created, err := s.repo.Create(ctx, project, categoryIDs, imageURLs)
	if err != nil {
		return types.Project{}, err
	}
	created.ContactNumber = NormalizeContactNumber(created.ContactNumber)
	return created, nil
}

func (s *ProjectService) Update(ctx context.Context, id int, patch types.ProjectPatch, imageURLs []string, categoryIDs []int, replaceCategories bool) (types.Project, error) {
	if patch.DesignType != nil && !validDesignType(*patch.DesignType) {
		return types.Project{}, errors.New("design_type must be 2D or 3D")
	}
	if patch.InteriorOrExterior != nil && !validPlacement(*patch.InteriorOrExterior) {
		return types.Project{}, errors.New("interior_or_exterior must be Interior or Exterior")
	}

	updated, err := s.repo.Update(ctx, id, patch, imageURLs, categoryIDs, replaceCategories)
	if err != nil {
		return types.Project{}, err
	}
	updated.ContactNumber = NormalizeContactNumber(updated.ContactNumber)
	return updated, nil
}

func (s *ProjectService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

func (s *ProjectService) DeleteImage(ctx context.Context, id int) error {
	return s.repo.DeleteImage(ctx, id)
}

func validateProjectFields(title, designType, placement string) error {
	if strings.TrimSpace(title) == "" {
		return errors.New("title is required")
	}
	if !validDesignType(designType) {
		return errors.New("design_type must be 2D or 3D")
	}
	if !validPlacement(placement) {
		return errors.New("interior_or_exterior must be Interior or Exterior")
	}
	return nil
}

func validDesignType(value string) bool {
	return value == types.DesignType2D || value == types.DesignType3D
}

func validPlacement(value string) bool {
	return value == types.PlacementInterior || value == types.PlacementExterior
}
