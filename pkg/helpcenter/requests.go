package helpcenter

import (
	"io"

	"github.com/google/uuid"
)

// CreateCategoryRequest contains parameters for creating a category.
// Slug is derived from Name when empty.
type CreateCategoryRequest struct {
	Name     string
	Slug     string
	Position int
}

// UpdateCategoryRequest is a partial category update; nil fields are left
// unchanged.
type UpdateCategoryRequest struct {
	Name     *string
	Slug     *string
	Position *int
}

// CreateGuideRequest contains parameters for creating a guide. Slug is
// derived from Title when empty. MediaIDs, when supplied, must already
// belong to the guide being written; ids owned elsewhere are rejected.
type CreateGuideRequest struct {
	Title             string
	Slug              string
	Body              Body
	EstimatedReadTime int
	CategoryID        *uuid.UUID
	MediaIDs          []uuid.UUID
}

// UpdateGuideRequest is a partial guide update. MediaIDs, when non-nil, is
// the desired ownership set: owned ids absent from it are detached (rows
// deleted, blobs scheduled for deletion), ids owned by another guide are
// rejected. ClearCategory uncategorizes the guide; it wins over CategoryID.
type UpdateGuideRequest struct {
	Title             *string
	Slug              *string
	Body              *Body
	EstimatedReadTime *int
	CategoryID        *uuid.UUID
	ClearCategory     bool
	MediaIDs          []uuid.UUID
}

// UploadMediaRequest contains parameters for uploading a media file into a
// guide.
type UploadMediaRequest struct {
	GuideID     uuid.UUID
	FileName    string
	ContentType string
	SizeBytes   int64
	Reader      io.Reader
}

// SubmitFeedbackRequest contains parameters for a public feedback
// submission. GuideSlug is resolved softly: an unknown slug stores a null
// guide reference rather than failing the submission.
type SubmitFeedbackRequest struct {
	GuideSlug string
	Email     string
	Body      string
	Rating    *int
}
