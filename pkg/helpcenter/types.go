package helpcenter

import (
	"time"

	"github.com/google/uuid"
)

// Category groups guides for navigation. Deleting a category never deletes
// its guides; they become uncategorized.
type Category struct {
	ID        uuid.UUID `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Guide is a help article with an ordered list of rich-text blocks.
// CategoryID is nil for uncategorized guides.
type Guide struct {
	ID                uuid.UUID  `json:"id"`
	Slug              string     `json:"slug"`
	Title             string     `json:"title"`
	Body              Body       `json:"body"`
	EstimatedReadTime int        `json:"estimated_read_time"`
	CategoryID        *uuid.UUID `json:"category_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Media is a file resource exclusively owned by one guide. GuideID is set at
// creation and never changes; rows are deleted together with their guide.
type Media struct {
	ID          uuid.UUID `json:"id"`
	GuideID     uuid.UUID `json:"guide_id"`
	BlobKey     string    `json:"blob_key"`
	URL         string    `json:"url"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Feedback is a user submission from the public surface. Rows are immutable
// once created. GuideID is nil when the submission referenced no guide or a
// slug that did not resolve.
type Feedback struct {
	ID        uuid.UUID  `json:"id"`
	GuideID   *uuid.UUID `json:"guide_id,omitempty"`
	Email     string     `json:"email,omitempty"`
	Body      string     `json:"body"`
	Rating    *int       `json:"rating,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// GuideDetails bundles a guide with its resolved category and media set,
// which is what both API surfaces serve for single-guide reads.
type GuideDetails struct {
	Guide    *Guide    `json:"guide"`
	Category *Category `json:"category,omitempty"`
	Media    []*Media  `json:"media"`
}
