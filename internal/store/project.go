package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dekorhaus/apiserver/types"
	"github.com/lib/pq"
)

// ProjectRepository handles persistence for projects, their gallery
// images, and their category associations.
type ProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `id, title, description, image, design_type, interior_or_exterior,
		plot_size, design_loc, contact_number, whatsapp_number, created_at, updated_at`

func scanProject(scanner interface{ Scan(...any) error }) (types.Project, error) {
	var project types.Project
	err := scanner.Scan(
		&project.ID,
		&project.Title,
		&project.Description,
		&project.Image,
		&project.DesignType,
		&project.InteriorOrExterior,
		&project.PlotSize,
		&project.DesignLoc,
		&project.ContactNumber,
		&project.WhatsappNumber,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	return project, err
}

// List returns all projects, most recently created first, with images
// and category names expanded.
func (r *ProjectRepository) List(ctx context.Context) ([]types.Project, error) {
	const query = `
		SELECT ` + projectColumns + `
		FROM projects
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := make([]types.Project, 0)
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.expand(ctx, projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// Get returns one project by id with images and category names expanded.
func (r *ProjectRepository) Get(ctx context.Context, id int) (types.Project, error) {
	const query = `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE id = $1`
	project, err := scanProject(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Project{}, ErrNotFound
		}
		return types.Project{}, err
	}

	projects := []types.Project{project}
	if err := r.expand(ctx, projects); err != nil {
		return types.Project{}, err
	}
	return projects[0], nil
}

// Exists reports whether a project row exists without expanding it.
func (r *ProjectRepository) Exists(ctx context.Context, id int) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// expand fills Images and Categories for the given projects with two
// batched queries instead of one pair per project.
func (r *ProjectRepository) expand(ctx context.Context, projects []types.Project) error {
	if len(projects) == 0 {
		return nil
	}

	ids := make([]int64, len(projects))
	index := make(map[int]*types.Project, len(projects))
	for i := range projects {
		ids[i] = int64(projects[i].ID)
		projects[i].Images = make([]types.ProjectImage, 0)
		projects[i].Categories = make([]string, 0)
		index[projects[i].ID] = &projects[i]
	}

	const imagesQuery = `
		SELECT id, project_id, image
		FROM project_images
		WHERE project_id = ANY($1)
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, imagesQuery, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var image types.ProjectImage
		if err := rows.Scan(&image.ID, &image.ProjectID, &image.Image); err != nil {
			return err
		}
		if project, ok := index[image.ProjectID]; ok {
			project.Images = append(project.Images, image)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	const categoriesQuery = `
		SELECT pc.project_id, c.name
		FROM project_categories pc
		JOIN categories c ON c.id = pc.category_id
		WHERE pc.project_id = ANY($1)
		ORDER BY c.name`
	catRows, err := r.db.QueryContext(ctx, categoriesQuery, pq.Array(ids))
	if err != nil {
		return err
	}
	defer catRows.Close()
	for catRows.Next() {
		var projectID int
		var name string
		if err := catRows.Scan(&projectID, &name); err != nil {
			return err
		}
		if project, ok := index[projectID]; ok {
			project.Categories = append(project.Categories, name)
		}
	}
	return catRows.Err()
}

// Create inserts the project, its gallery images, and its category
// associations in one transaction. The first image URL becomes the
// primary image and still appears in the gallery.
func (r *ProjectRepository) Create(ctx context.Context, project types.Project, categoryIDs []int, imageURLs []string) (types.Project, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Project{}, err
	}
	defer tx.Rollback()

	now := time.Now()
	var primary *string
	if len(imageURLs) > 0 {
		primary = &imageURLs[0]
	}

	const insertProject = `
		INSERT INTO projects (title, description, image, design_type, interior_or_exterior,
			plot_size, design_loc, contact_number, whatsapp_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`
	var id int
	if err := tx.QueryRowContext(
		ctx,
		insertProject,
		project.Title,
		project.Description,
		primary,
		project.DesignType,
		project.InteriorOrExterior,
		project.PlotSize,
		project.DesignLoc,
		project.ContactNumber,
		project.WhatsappNumber,
		now,
		now,
	).Scan(&id); err != nil {
		return types.Project{}, err
	}

	if err := insertImages(ctx, tx, id, imageURLs); err != nil {
		return types.Project{}, err
	}
	if err := insertCategories(ctx, tx, id, categoryIDs); err != nil {
		return types.Project{}, err
	}

	if err := tx.Commit(); err != nil {
		return types.Project{}, err
	}
	return r.Get(ctx, id)
}

// Update applies a partial update in one transaction. Absent scalar
// fields keep their stored value. New image URLs are appended to the
// gallery; the first one becomes the primary image only when none is
// set. Category associations are replaced only when replaceCategories
// is true; an empty set then clears them.
func (r *ProjectRepository) Update(ctx context.Context, id int, patch types.ProjectPatch, imageURLs []string, categoryIDs []int, replaceCategories bool) (types.Project, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Project{}, err
	}
	defer tx.Rollback()

	const selectForUpdate = `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE id = $1
		FOR UPDATE`
	current, err := scanProject(tx.QueryRowContext(ctx, selectForUpdate, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Project{}, ErrNotFound
		}
		return types.Project{}, err
	}

	applyPatch(&current, patch)
	if len(imageURLs) > 0 && current.Image == nil {
		current.Image = &imageURLs[0]
	}

	const updateProject = `
		UPDATE projects
		SET title = $1,
			description = $2,
			image = $3,
			design_type = $4,
			interior_or_exterior = $5,
			plot_size = $6,
			design_loc = $7,
			contact_number = $8,
			whatsapp_number = $9,
			updated_at = $10
		WHERE id = $11`
	if _, err := tx.ExecContext(
		ctx,
		updateProject,
		current.Title,
		current.Description,
		current.Image,
		current.DesignType,
		current.InteriorOrExterior,
		current.PlotSize,
		current.DesignLoc,
		current.ContactNumber,
		current.WhatsappNumber,
		time.Now(),
		id,
	); err != nil {
		return types.Project{}, err
	}

	if err := insertImages(ctx, tx, id, imageURLs); err != nil {
		return types.Project{}, err
	}
	if replaceCategories {
		if _, err := tx.ExecContext(ctx, `DELETE FROM project_categories WHERE project_id = $1`, id); err != nil {
			return types.Project{}, err
		}
		if err := insertCategories(ctx, tx, id, categoryIDs); err != nil {
			return types.Project{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return types.Project{}, err
	}
	return r.Get(ctx, id)
}

func applyPatch(project *types.Project, patch types.ProjectPatch) {
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
}

func insertImages(ctx context.Context, tx *sql.Tx, projectID int, imageURLs []string) error {
	const query = `INSERT INTO project_images (project_id, image) VALUES ($1, $2)`
	for _, url := range imageURLs {
		if _, err := tx.ExecContext(ctx, query, projectID, url); err != nil {
			return err
		}
	}
	return nil
}

func insertCategories(ctx context.Context, tx *sql.Tx, projectID int, categoryIDs []int) error {
	const query = `
		INSERT INTO project_categories (project_id, category_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`
	for _, categoryID := range categoryIDs {
		if _, err := tx.ExecContext(ctx, query, projectID, categoryID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the project; images and feedback go with it via the
// schema's ON DELETE CASCADE.
func (r *ProjectRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM projects WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteImage removes one gallery image. The project's primary image
// reference is intentionally left untouched even when it points at the
// same URL.
func (r *ProjectRepository) DeleteImage(ctx context.Context, id int) error {
	const query = `DELETE FROM project_images WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
