package helpcenter

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrCategoryNotFound indicates a category was not found
	ErrCategoryNotFound = errors.New("category not found")

	// ErrGuideNotFound indicates a guide was not found
	ErrGuideNotFound = errors.New("guide not found")

	// ErrMediaNotFound indicates a media item was not found
	ErrMediaNotFound = errors.New("media not found")

	// ErrFeedbackNotFound indicates a feedback entry was not found
	ErrFeedbackNotFound = errors.New("feedback not found")

	// ErrSlugTaken indicates a slug collides with an existing entity in the
	// same namespace
	ErrSlugTaken = errors.New("slug already taken")

	// ErrInvalidReference indicates a cross-entity ownership violation, such
	// as attaching media owned by another guide
	ErrInvalidReference = errors.New("invalid entity reference")

	// ErrInvalidInput indicates malformed input rejected before any write
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidBlock indicates a rich-text block that failed structural
	// validation
	ErrInvalidBlock = fmt.Errorf("%w: invalid content block", ErrInvalidInput)

	// ErrRateLimited indicates admission was denied by the rate limiter
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrUnavailable indicates the relational store could not serve the
	// request (pool exhausted, timeout, connection failure)
	ErrUnavailable = errors.New("storage unavailable")
)

// GuideError represents an error from a guide operation
type GuideError struct {
	GuideID uuid.UUID
	Op      string
	Err     error
}

func (e *GuideError) Error() string {
	return fmt.Sprintf("guide operation %s failed for guide %s: %v", e.Op, e.GuideID, e.Err)
}

func (e *GuideError) Unwrap() error {
	return e.Err
}

// StorageError represents an error from the blob store
type StorageError struct {
	Key string
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("blob operation %s failed for key %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// RateLimitError carries the remaining wait until the current window ends.
type RateLimitError struct {
	Class      string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s, retry after %s", e.Class, e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}
