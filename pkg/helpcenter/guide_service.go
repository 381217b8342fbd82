package helpcenter

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

const maxEstimatedReadTime = 300

func (s *service) CreateGuide(ctx context.Context, req CreateGuideRequest) (*GuideDetails, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: guide title must not be empty", ErrInvalidInput)
	}
	if err := req.Body.Validate(); err != nil {
		return nil, err
	}

	readTime := req.EstimatedReadTime
	if readTime == 0 {
		readTime = 1
	}
	if readTime < 1 || readTime > maxEstimatedReadTime {
		return nil, fmt.Errorf("%w: estimated read time must be 1..%d minutes", ErrInvalidInput, maxEstimatedReadTime)
	}

	slug := req.Slug
	if slug == "" {
		slug = Slugify(title)
	}
	if err := ValidateSlug(slug); err != nil {
		return nil, err
	}

	now := s.now()
	guide := &Guide{
		ID:                uuid.New(),
		Slug:              slug,
		Title:             title,
		Body:              req.Body,
		EstimatedReadTime: readTime,
		CategoryID:        req.CategoryID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	var details *GuideDetails
	err := s.repository.WithTx(ctx, func(tx Repository) error {
		if _, err := tx.GetGuideBySlug(ctx, slug); err == nil {
			return fmt.Errorf("guide slug %q: %w", slug, ErrSlugTaken)
		} else if !errors.Is(err, ErrGuideNotFound) {
			return err
		}

		if req.CategoryID != nil {
			if _, err := tx.GetCategory(ctx, *req.CategoryID); err != nil {
				if errors.Is(err, ErrCategoryNotFound) {
					return fmt.Errorf("category %s: %w", *req.CategoryID, ErrInvalidReference)
				}
				return err
			}
		}

		if err := tx.CreateGuide(ctx, guide); err != nil {
			return err
		}

		if req.MediaIDs != nil {
			if _, err := reconcileMedia(ctx, tx, guide.ID, req.MediaIDs); err != nil {
				return err
			}
		}

		var err error
		details, err = buildGuideDetails(ctx, tx, guide)
		return err
	})
	if err != nil {
		return nil, err
	}

	return details, nil
}

func (s *service) GetGuide(ctx context.Context, id uuid.UUID) (*GuideDetails, error) {
	guide, err := s.repository.GetGuide(ctx, id)
	if err != nil {
		return nil, err
	}
	return buildGuideDetails(ctx, s.repository, guide)
}

func (s *service) GetGuideBySlug(ctx context.Context, slug string) (*GuideDetails, error) {
	guide, err := s.repository.GetGuideBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return buildGuideDetails(ctx, s.repository, guide)
}

func (s *service) ListGuides(ctx context.Context, categorySlug *string) ([]*Guide, error) {
	return s.repository.ListGuides(ctx, categorySlug)
}

func (s *service) UpdateGuide(ctx context.Context, id uuid.UUID, req UpdateGuideRequest) (*GuideDetails, error) {
	var (
		details     *GuideDetails
		removedKeys []string
	)

	err := s.repository.WithTx(ctx, func(tx Repository) error {
		guide, err := tx.GetGuide(ctx, id)
		if err != nil {
			return err
		}

		if req.Title != nil {
			title := strings.TrimSpace(*req.Title)
			if title == "" {
				return fmt.Errorf("%w: guide title must not be empty", ErrInvalidInput)
			}
			guide.Title = title
		}
		if req.Slug != nil && *req.Slug != guide.Slug {
			if err := ValidateSlug(*req.Slug); err != nil {
				return err
			}
			if _, err := tx.GetGuideBySlug(ctx, *req.Slug); err == nil {
				return fmt.Errorf("guide slug %q: %w", *req.Slug, ErrSlugTaken)
			} else if !errors.Is(err, ErrGuideNotFound) {
				return err
			}
			guide.Slug = *req.Slug
		}
		if req.Body != nil {
			if err := req.Body.Validate(); err != nil {
				return err
			}
			guide.Body = *req.Body
		}
		if req.EstimatedReadTime != nil {
			if *req.EstimatedReadTime < 1 || *req.EstimatedReadTime > maxEstimatedReadTime {
				return fmt.Errorf("%w: estimated read time must be 1..%d minutes", ErrInvalidInput, maxEstimatedReadTime)
			}
			guide.EstimatedReadTime = *req.EstimatedReadTime
		}
		switch {
		case req.ClearCategory:
			guide.CategoryID = nil
		case req.CategoryID != nil:
			if _, err := tx.GetCategory(ctx, *req.CategoryID); err != nil {
				if errors.Is(err, ErrCategoryNotFound) {
					return fmt.Errorf("category %s: %w", *req.CategoryID, ErrInvalidReference)
				}
				return err
			}
			guide.CategoryID = req.CategoryID
		}

		guide.UpdatedAt = s.now()
		if err := tx.UpdateGuide(ctx, guide); err != nil {
			return err
		}

		if req.MediaIDs != nil {
			removedKeys, err = reconcileMedia(ctx, tx, guide.ID, req.MediaIDs)
			if err != nil {
				return err
			}
		}

		details, err = buildGuideDetails(ctx, tx, guide)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.deleteBlobs(ctx, removedKeys)
	return details, nil
}

func (s *service) DeleteGuide(ctx context.Context, id uuid.UUID) error {
	var blobKeys []string

	err := s.repository.WithTx(ctx, func(tx Repository) error {
		if _, err := tx.GetGuide(ctx, id); err != nil {
			return err
		}
		removed, err := tx.DeleteMediaByGuide(ctx, id)
		if err != nil {
			return err
		}
		for _, m := range removed {
			blobKeys = append(blobKeys, m.BlobKey)
		}
		return tx.DeleteGuide(ctx, id)
	})
	if err != nil {
		if errors.Is(err, ErrGuideNotFound) {
			return err
		}
		return &GuideError{GuideID: id, Op: "delete", Err: err}
	}

	s.deleteBlobs(ctx, blobKeys)
	return nil
}

// reconcileMedia applies a desired media ownership set as a symmetric
// difference against current ownership. Requested ids not owned by the guide
// are rejected: unknown ids and ids owned by another guide both violate the
// exclusive-ownership invariant. Owned ids absent from the request are
// deleted; their blob keys are returned for post-commit cleanup.
func reconcileMedia(ctx context.Context, tx Repository, guideID uuid.UUID, requested []uuid.UUID) ([]string, error) {
	current, err := tx.ListMediaByGuide(ctx, guideID)
	if err != nil {
		return nil, err
	}

	owned := make(map[uuid.UUID]*Media, len(current))
	for _, m := range current {
		owned[m.ID] = m
	}

	keep := make(map[uuid.UUID]bool, len(requested))
	for _, id := range requested {
		if _, ok := owned[id]; ok {
			keep[id] = true
			continue
		}
		m, err := tx.GetMedia(ctx, id)
		if err != nil {
			if errors.Is(err, ErrMediaNotFound) {
				return nil, fmt.Errorf("media %s does not exist: %w", id, ErrInvalidReference)
			}
			return nil, err
		}
		return nil, fmt.Errorf("media %s belongs to guide %s: %w", id, m.GuideID, ErrInvalidReference)
	}

	var removedKeys []string
	for _, m := range current {
		if keep[m.ID] {
			continue
		}
		if err := tx.DeleteMedia(ctx, m.ID); err != nil {
			return nil, err
		}
		removedKeys = append(removedKeys, m.BlobKey)
	}

	return removedKeys, nil
}

func buildGuideDetails(ctx context.Context, repo Repository, guide *Guide) (*GuideDetails, error) {
	details := &GuideDetails{Guide: guide, Media: []*Media{}}

	if guide.CategoryID != nil {
		category, err := repo.GetCategory(ctx, *guide.CategoryID)
		if err != nil && !errors.Is(err, ErrCategoryNotFound) {
			return nil, err
		}
		details.Category = category
	}

	media, err := repo.ListMediaByGuide(ctx, guide.ID)
	if err != nil {
		return nil, err
	}
	if media != nil {
		details.Media = media
	}

	return details, nil
}

func (s *service) UploadMedia(ctx context.Context, req UploadMediaRequest) (*Media, error) {
	if req.Reader == nil {
		return nil, fmt.Errorf("%w: upload requires a file stream", ErrInvalidInput)
	}

	if _, err := s.repository.GetGuide(ctx, req.GuideID); err != nil {
		return nil, err
	}

	fileName := sanitizeFileName(req.FileName)
	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	id := uuid.New()
	key := fmt.Sprintf("guides/%s/%s-%s", req.GuideID, id, fileName)

	// The blob write happens before the row insert and outside any
	// transaction; a failed insert is compensated with a blob delete.
	if err := s.blobStore.Upload(ctx, key, contentType, req.Reader); err != nil {
		return nil, &StorageError{Key: key, Op: "upload", Err: err}
	}

	media := &Media{
		ID:          id,
		GuideID:     req.GuideID,
		BlobKey:     key,
		URL:         s.blobStore.URL(key),
		FileName:    fileName,
		ContentType: contentType,
		SizeBytes:   req.SizeBytes,
		UploadedAt:  s.now(),
	}

	if err := s.repository.CreateMedia(ctx, media); err != nil {
		if derr := s.blobStore.Delete(ctx, key); derr != nil {
			s.logger.Warn("orphaned blob after failed media insert", "blob_key", key, "error", derr)
		}
		return nil, err
	}

	return media, nil
}

func (s *service) ListMedia(ctx context.Context, guideID uuid.UUID) ([]*Media, error) {
	if _, err := s.repository.GetGuide(ctx, guideID); err != nil {
		return nil, err
	}
	media, err := s.repository.ListMediaByGuide(ctx, guideID)
	if err != nil {
		return nil, err
	}
	if media == nil {
		media = []*Media{}
	}
	return media, nil
}

func (s *service) GetMedia(ctx context.Context, guideID, mediaID uuid.UUID) (*Media, error) {
	media, err := s.repository.GetMedia(ctx, mediaID)
	if err != nil {
		return nil, err
	}
	if media.GuideID != guideID {
		return nil, fmt.Errorf("media %s belongs to guide %s: %w", mediaID, media.GuideID, ErrInvalidReference)
	}
	return media, nil
}

func (s *service) DeleteMedia(ctx context.Context, guideID, mediaID uuid.UUID) error {
	media, err := s.GetMedia(ctx, guideID, mediaID)
	if err != nil {
		return err
	}

	if err := s.repository.DeleteMedia(ctx, media.ID); err != nil {
		return err
	}

	s.deleteBlobs(ctx, []string{media.BlobKey})
	return nil
}

func sanitizeFileName(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		return "upload"
	}
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}
