package helpcenter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Service is the domain layer shared by both API surfaces. All mutations go
// through it; adapters never call repositories directly.
type Service interface {
	// Category operations
	CreateCategory(ctx context.Context, req CreateCategoryRequest) (*Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*Category, error)
	ListCategories(ctx context.Context) ([]*Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, req UpdateCategoryRequest) (*Category, error)
	// DeleteCategory removes the category and uncategorizes its guides in
	// the same transaction. Guides themselves are never deleted here.
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	// Guide operations
	CreateGuide(ctx context.Context, req CreateGuideRequest) (*GuideDetails, error)
	GetGuide(ctx context.Context, id uuid.UUID) (*GuideDetails, error)
	GetGuideBySlug(ctx context.Context, slug string) (*GuideDetails, error)
	ListGuides(ctx context.Context, categorySlug *string) ([]*Guide, error)
	UpdateGuide(ctx context.Context, id uuid.UUID, req UpdateGuideRequest) (*GuideDetails, error)
	// DeleteGuide removes the guide and all its media rows atomically, then
	// best-effort deletes the media blobs.
	DeleteGuide(ctx context.Context, id uuid.UUID) error

	// Media operations
	UploadMedia(ctx context.Context, req UploadMediaRequest) (*Media, error)
	ListMedia(ctx context.Context, guideID uuid.UUID) ([]*Media, error)
	GetMedia(ctx context.Context, guideID, mediaID uuid.UUID) (*Media, error)
	DeleteMedia(ctx context.Context, guideID, mediaID uuid.UUID) error

	// Feedback operations
	SubmitFeedback(ctx context.Context, req SubmitFeedbackRequest) (*Feedback, error)
	GetFeedback(ctx context.Context, id uuid.UUID) (*Feedback, error)
	ListFeedback(ctx context.Context) ([]*Feedback, error)
	DeleteFeedback(ctx context.Context, id uuid.UUID) error
}

// service implements the Service interface
type service struct {
	repository Repository
	blobStore  BlobStore
	logger     *slog.Logger
	now        func() time.Time
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithBlobStore sets the blob storage collaborator
func WithBlobStore(store BlobStore) Option {
	return func(s *service) {
		s.blobStore = store
	}
}

// WithLogger sets the structured logger used for best-effort compensation
// warnings
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// WithClock overrides the time source (tests)
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		logger: slog.Default(),
		now:    func() time.Time { return time.Now().UTC() },
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.blobStore == nil {
		return nil, fmt.Errorf("blob store is required")
	}

	return s, nil
}

// deleteBlobs issues best-effort blob deletes after a committed transaction.
// Failures are logged and never propagated; the relational deletion is the
// source of truth.
func (s *service) deleteBlobs(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.blobStore.Delete(ctx, key); err != nil {
			s.logger.Warn("orphaned blob after delete", "blob_key", key, "error", err)
		}
	}
}
