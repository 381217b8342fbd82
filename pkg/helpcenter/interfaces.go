package helpcenter

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// Repository defines persistence for all four entities. Implementations map
// storage failures to the domain taxonomy: absent rows surface as the
// entity's NotFound sentinel, uniqueness violations as ErrSlugTaken, foreign
// key violations as ErrInvalidReference, and connection/timeout failures as
// ErrUnavailable. Raw driver errors never cross this boundary.
type Repository interface {
	// WithTx runs fn against a transaction-scoped repository. All writes
	// inside fn commit together or not at all; a context cancelled before
	// commit rolls everything back.
	WithTx(ctx context.Context, fn func(Repository) error) error

	// Category operations
	CreateCategory(ctx context.Context, category *Category) error
	GetCategory(ctx context.Context, id uuid.UUID) (*Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*Category, error)
	ListCategories(ctx context.Context) ([]*Category, error)
	UpdateCategory(ctx context.Context, category *Category) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	// DetachGuidesFromCategory nulls the category reference of every guide
	// in the category. Called inside the same transaction as DeleteCategory.
	DetachGuidesFromCategory(ctx context.Context, categoryID uuid.UUID) error

	// Guide operations
	CreateGuide(ctx context.Context, guide *Guide) error
	GetGuide(ctx context.Context, id uuid.UUID) (*Guide, error)
	GetGuideBySlug(ctx context.Context, slug string) (*Guide, error)
	// ListGuides returns guides ordered by creation time descending,
	// optionally filtered by category slug.
	ListGuides(ctx context.Context, categorySlug *string) ([]*Guide, error)
	UpdateGuide(ctx context.Context, guide *Guide) error
	DeleteGuide(ctx context.Context, id uuid.UUID) error

	// Media operations
	CreateMedia(ctx context.Context, media *Media) error
	GetMedia(ctx context.Context, id uuid.UUID) (*Media, error)
	// ListMediaByGuide returns media ordered by upload time ascending.
	ListMediaByGuide(ctx context.Context, guideID uuid.UUID) ([]*Media, error)
	DeleteMedia(ctx context.Context, id uuid.UUID) error
	// DeleteMediaByGuide removes every media row owned by the guide and
	// returns the removed rows so the caller can clean up their blobs.
	DeleteMediaByGuide(ctx context.Context, guideID uuid.UUID) ([]*Media, error)

	// Feedback operations
	CreateFeedback(ctx context.Context, feedback *Feedback) error
	GetFeedback(ctx context.Context, id uuid.UUID) (*Feedback, error)
	ListFeedback(ctx context.Context) ([]*Feedback, error)
	DeleteFeedback(ctx context.Context, id uuid.UUID) error
}

// BlobStore is the external blob storage collaborator. Uploads and deletes
// are intentionally outside any relational transaction; callers compensate
// best-effort on partial failure.
type BlobStore interface {
	// Upload streams the blob to storage under key.
	Upload(ctx context.Context, key, contentType string, reader io.Reader) error

	// Delete removes the blob. Callers treat failures as non-fatal.
	Delete(ctx context.Context, key string) error

	// URL returns the durable public reference for a stored key.
	URL(key string) string
}
