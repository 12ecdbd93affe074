package types

import "time"

// Design type and placement values accepted on a project.
const (
	DesignType2D = "2D"
	DesignType3D = "3D"

	PlacementInterior = "Interior"
	PlacementExterior = "Exterior"
)

// Project represents a portfolio entry for a completed design job.
// It owns a collection of gallery images and is linked to any number
// of categories.
type Project struct {
	// ID is the unique identifier of the project.
	ID int `json:"id" db:"id"`

	// Title is the human-readable name of the project.
	Title string `json:"title" db:"title"`

	// Description is the free-text writeup shown on the detail page.
	Description string `json:"description" db:"description"`

	// Image is the primary image URL shown in listings. Nil when the
	// project was created without images. The same URL also appears in
	// Images; listings rely on that duplication.
	Image *string `json:"image" db:"image"`

	// DesignType is either "2D" or "3D".
	DesignType string `json:"design_type" db:"design_type"`

	// InteriorOrExterior records the placement of the design,
	// "Interior" or "Exterior".
	InteriorOrExterior string `json:"interior_or_exterior" db:"interior_or_exterior"`

	// PlotSize is a free-text plot measurement, e.g. "30x40".
	PlotSize string `json:"plot_size" db:"plot_size"`

	// DesignLoc is the free-text location of the job.
	DesignLoc string `json:"design_loc" db:"design_loc"`

	// ContactNumber is the phone number shown alongside the project.
	// Legacy rows may carry a serialized-tuple artifact; it is
	// normalized before leaving the service layer (see
	// services.NormalizeContactNumber).
	ContactNumber string `json:"contact_number" db:"contact_number"`

	// WhatsappNumber is the WhatsApp contact shown alongside the project.
	WhatsappNumber string `json:"whatsapp_number" db:"whatsapp_number"`

	// Categories holds the names of the categories this project is
	// associated with, expanded on reads.
	Categories []string `json:"categories" db:"-"`

	// Images is the owned gallery collection, expanded on reads.
	Images []ProjectImage `json:"images" db:"-"`

	// CreatedAt is the timestamp at which the project was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the project.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ProjectPatch carries the scalar fields of a project update. A nil
// pointer means the field was absent from the request and the stored
// value must be left untouched.
type ProjectPatch struct {
	Title              *string
	Description        *string
	DesignType         *string
	InteriorOrExterior *string
	PlotSize           *string
	DesignLoc          *string
	ContactNumber      *string
	WhatsappNumber     *string
}

// ProjectImage is a single gallery image owned by exactly one project.
// Deleting the project deletes its images.
type ProjectImage struct {
	// ID is the unique identifier of the image row.
	ID int `json:"id" db:"id"`

	// ProjectID is the owning project.
	ProjectID int `json:"project_id" db:"project_id"`

	// Image is the image URL.
	Image string `json:"image" db:"image"`
}

// Category is a label projects can be grouped under.
type Category struct {
	// ID is the unique identifier of the category.
	ID int `json:"id" db:"id"`

	// Name is the category label.
	Name string `json:"name" db:"name"`
}
