package types

import "time"

// Feedback is a visitor comment left on a project by an authenticated
// user. The row is immutable after creation; only admins may delete it.
type Feedback struct {
	// ID is the unique identifier of the feedback row.
	ID int `json:"id" db:"id"`

	// ProjectID is the project the feedback was left on.
	ProjectID int `json:"project_id" db:"project_id"`

	// UserID is the author of the feedback.
	UserID int `json:"user_id" db:"user_id"`

	// Username is the author's login name, joined in on reads.
	Username string `json:"username" db:"username"`

	// Message is the feedback text.
	Message string `json:"message" db:"message"`

	// CreatedAt is set once at creation and never updated.
	CreatedAt time.Time `json:"date" db:"created_at"`
}
