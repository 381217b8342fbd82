package helpcenter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

func (s *service) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name must not be empty", ErrInvalidInput)
	}

	slug := req.Slug
	if slug == "" {
		slug = Slugify(name)
	}
	if err := ValidateSlug(slug); err != nil {
		return nil, err
	}

	now := s.now()
	category := &Category{
		ID:        uuid.New(),
		Slug:      slug,
		Name:      name,
		Position:  req.Position,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.repository.WithTx(ctx, func(tx Repository) error {
		if _, err := tx.GetCategoryBySlug(ctx, slug); err == nil {
			return fmt.Errorf("category slug %q: %w", slug, ErrSlugTaken)
		} else if !errors.Is(err, ErrCategoryNotFound) {
			return err
		}
		return tx.CreateCategory(ctx, category)
	})
	if err != nil {
		return nil, err
	}

	return category, nil
}

func (s *service) GetCategory(ctx context.Context, id uuid.UUID) (*Category, error) {
	return s.repository.GetCategory(ctx, id)
}

func (s *service) GetCategoryBySlug(ctx context.Context, slug string) (*Category, error) {
	return s.repository.GetCategoryBySlug(ctx, slug)
}

func (s *service) ListCategories(ctx context.Context) ([]*Category, error) {
	return s.repository.ListCategories(ctx)
}

func (s *service) UpdateCategory(ctx context.Context, id uuid.UUID, req UpdateCategoryRequest) (*Category, error) {
	var updated *Category

	err := s.repository.WithTx(ctx, func(tx Repository) error {
		category, err := tx.GetCategory(ctx, id)
		if err != nil {
			return err
		}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return fmt.Errorf("%w: category name must not be empty", ErrInvalidInput)
			}
			category.Name = name
		}
		if req.Slug != nil && *req.Slug != category.Slug {
			if err := ValidateSlug(*req.Slug); err != nil {
				return err
			}
			if _, err := tx.GetCategoryBySlug(ctx, *req.Slug); err == nil {
				return fmt.Errorf("category slug %q: %w", *req.Slug, ErrSlugTaken)
			} else if !errors.Is(err, ErrCategoryNotFound) {
				return err
			}
			category.Slug = *req.Slug
		}
		if req.Position != nil {
			category.Position = *req.Position
		}

		category.UpdatedAt = s.now()
		if err := tx.UpdateCategory(ctx, category); err != nil {
			return err
		}
		updated = category
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteCategory orphans the category's guides rather than deleting or
// rejecting: guides stay independently addressable by slug.
func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.repository.WithTx(ctx, func(tx Repository) error {
		if _, err := tx.GetCategory(ctx, id); err != nil {
			return err
		}
		if err := tx.DetachGuidesFromCategory(ctx, id); err != nil {
			return err
		}
		return tx.DeleteCategory(ctx, id)
	})
}
