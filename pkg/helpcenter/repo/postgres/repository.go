package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/help-center/pkg/helpcenter"
)

// DBTX is an interface that allows us to use either a connection pool or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements helpcenter.Repository using PostgreSQL
type Repository struct {
	db   DBTX
	pool *pgxpool.Pool
}

// New creates a new PostgreSQL repository over an existing connection or transaction.
// WithTx is unavailable on repositories built this way.
func New(db DBTX) helpcenter.Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) helpcenter.Repository {
	return &Repository{db: pool, pool: pool}
}

// WithTx runs fn inside a single database transaction. fn receives a
// repository bound to that transaction; any error rolls everything back.
func (r *Repository) WithTx(ctx context.Context, fn func(helpcenter.Repository) error) error {
	if r.pool == nil {
		return errors.New("transactions require a pool-backed repository")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return translateError("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&Repository{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return translateError("commit transaction", err)
	}
	return nil
}

// translateError maps driver errors onto the domain sentinels so callers
// never see pgconn details.
func translateError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s: %w", operation, helpcenter.ErrSlugTaken)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s: %w", operation, helpcenter.ErrInvalidReference)
		case "23502": // not_null_violation
			return fmt.Errorf("%w: required column %s is missing", helpcenter.ErrInvalidInput, pgErr.ColumnName)
		case "57P01", "53300", "08006": // shutdown, too many connections, connection failure
			return fmt.Errorf("%s: %w", operation, helpcenter.ErrUnavailable)
		}
		return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", operation, helpcenter.ErrUnavailable)
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

// Category operations

func (r *Repository) CreateCategory(ctx context.Context, category *helpcenter.Category) error {
	query := `
		INSERT INTO categories (id, slug, name, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		category.ID, category.Slug, category.Name, category.Position,
		category.CreatedAt, category.UpdatedAt)
	if err != nil {
		return translateError("create category", err)
	}
	return nil
}

func (r *Repository) GetCategory(ctx context.Context, id uuid.UUID) (*helpcenter.Category, error) {
	query := `
		SELECT id, slug, name, position, created_at, updated_at
		FROM categories WHERE id = $1`

	return r.scanCategory(r.db.QueryRow(ctx, query, id))
}

func (r *Repository) GetCategoryBySlug(ctx context.Context, slug string) (*helpcenter.Category, error) {
	query := `
		SELECT id, slug, name, position, created_at, updated_at
		FROM categories WHERE slug = $1`

	return r.scanCategory(r.db.QueryRow(ctx, query, slug))
}

func (r *Repository) scanCategory(row pgx.Row) (*helpcenter.Category, error) {
	var category helpcenter.Category
	err := row.Scan(
		&category.ID, &category.Slug, &category.Name, &category.Position,
		&category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, helpcenter.ErrCategoryNotFound
		}
		return nil, translateError("get category", err)
	}
	return &category, nil
}

func (r *Repository) ListCategories(ctx context.Context) ([]*helpcenter.Category, error) {
	query := `
		SELECT id, slug, name, position, created_at, updated_at
		FROM categories ORDER BY position, name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, translateError("list categories", err)
	}
	defer rows.Close()

	result := []*helpcenter.Category{}
	for rows.Next() {
		var category helpcenter.Category
		err := rows.Scan(
			&category.ID, &category.Slug, &category.Name, &category.Position,
			&category.CreatedAt, &category.UpdatedAt)
		if err != nil {
			return nil, translateError("scan category", err)
		}
		result = append(result, &category)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("iterate category rows", err)
	}
	return result, nil
}

func (r *Repository) UpdateCategory(ctx context.Context, category *helpcenter.Category) error {
	query := `
		UPDATE categories
		SET slug = $2, name = $3, position = $4, updated_at = $5
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		category.ID, category.Slug, category.Name, category.Position, category.UpdatedAt)
	if err != nil {
		return translateError("update category", err)
	}
	if tag.RowsAffected() == 0 {
		return helpcenter.ErrCategoryNotFound
	}
	return nil
}

func (r *Repository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return translateError("delete category", err)
	}
	if tag.RowsAffected() == 0 {
		return helpcenter.ErrCategoryNotFound
	}
	return nil
}

func (r *Repository) DetachGuidesFromCategory(ctx context.Context, categoryID uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`UPDATE guides SET category_id = NULL WHERE category_id = $1`, categoryID)
	if err != nil {
		return translateError("detach guides from category", err)
	}
	return nil
}

// Guide operations

func (r *Repository) CreateGuide(ctx context.Context, guide *helpcenter.Guide) error {
	body, err := json.Marshal(guide.Body)
	if err != nil {
		return fmt.Errorf("encode guide body: %w", err)
	}

	query := `
		INSERT INTO guides (
			id, slug, title, body, estimated_read_time, category_id,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = r.db.Exec(ctx, query,
		guide.ID, guide.Slug, guide.Title, body, guide.EstimatedReadTime,
		guide.CategoryID, guide.CreatedAt, guide.UpdatedAt)
	if err != nil {
		return translateError("create guide", err)
	}
	return nil
}

func (r *Repository) GetGuide(ctx context.Context, id uuid.UUID) (*helpcenter.Guide, error) {
	query := guideSelect + ` WHERE id = $1`
	return r.scanGuide(r.db.QueryRow(ctx, query, id))
}

func (r *Repository) GetGuideBySlug(ctx context.Context, slug string) (*helpcenter.Guide, error) {
	query := guideSelect + ` WHERE slug = $1`
	return r.scanGuide(r.db.QueryRow(ctx, query, slug))
}

const guideSelect = `
	SELECT id, slug, title, body, estimated_read_time, category_id,
	       created_at, updated_at
	FROM guides`

func (r *Repository) scanGuide(row pgx.Row) (*helpcenter.Guide, error) {
	var (
		guide helpcenter.Guide
		body  []byte
	)
	err := row.Scan(
		&guide.ID, &guide.Slug, &guide.Title, &body, &guide.EstimatedReadTime,
		&guide.CategoryID, &guide.CreatedAt, &guide.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, helpcenter.ErrGuideNotFound
		}
		return nil, translateError("get guide", err)
	}
	if err := json.Unmarshal(body, &guide.Body); err != nil {
		return nil, fmt.Errorf("decode guide body: %w", err)
	}
	return &guide, nil
}

func (r *Repository) ListGuides(ctx context.Context, categorySlug *string) ([]*helpcenter.Guide, error) {
	query := guideSelect
	args := []interface{}{}

	if categorySlug != nil {
		// An unknown category slug is an error, not an empty list, so
		// callers can tell "no guides" from "no such category".
		category, err := r.GetCategoryBySlug(ctx, *categorySlug)
		if err != nil {
			return nil, err
		}
		query += ` WHERE category_id = $1`
		args = append(args, category.ID)
	}
	query += ` ORDER BY created_at DESC, slug`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, translateError("list guides", err)
	}
	defer rows.Close()

	result := []*helpcenter.Guide{}
	for rows.Next() {
		var (
			guide helpcenter.Guide
			body  []byte
		)
		err := rows.Scan(
			&guide.ID, &guide.Slug, &guide.Title, &body, &guide.EstimatedReadTime,
			&guide.CategoryID, &guide.CreatedAt, &guide.UpdatedAt)
		if err != nil {
			return nil, translateError("scan guide", err)
		}
		if err := json.Unmarshal(body, &guide.Body); err != nil {
			return nil, fmt.Errorf("decode guide body: %w", err)
		}
		result = append(result, &guide)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("iterate guide rows", err)
	}
	return result, nil
}

func (r *Repository) UpdateGuide(ctx context.Context, guide *helpcenter.Guide) error {
	body, err := json.Marshal(guide.Body)
	if err != nil {
		return fmt.Errorf("encode guide body: %w", err)
	}

	query := `
		UPDATE guides
		SET slug = $2, title = $3, body = $4, estimated_read_time = $5,
		    category_id = $6, updated_at = $7
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		guide.ID, guide.Slug, guide.Title, body, guide.EstimatedReadTime,
		guide.CategoryID, guide.UpdatedAt)
	if err != nil {
		return translateError("update guide", err)
	}
	if tag.RowsAffected() == 0 {
		return helpcenter.ErrGuideNotFound
	}
	return nil
}

func (r *Repository) DeleteGuide(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM guides WHERE id = $1`, id)
	if err != nil {
		return translateError("delete guide", err)
	}
	if tag.RowsAffected() == 0 {
		return helpcenter.ErrGuideNotFound
	}
	return nil
}

// Media operations

func (r *Repository) CreateMedia(ctx context.Context, media *helpcenter.Media) error {
	query := `
		INSERT INTO media (
			id, guide_id, blob_key, url, file_name, content_type,
			size_bytes, uploaded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		media.ID, media.GuideID, media.BlobKey, media.URL, media.FileName,
		media.ContentType, media.SizeBytes, media.UploadedAt)
	if err != nil {
		return translateError("create media", err)
	}
	return nil
}

const mediaSelect = `
	SELECT id, guide_id, blob_key, url, file_name, content_type,
	       size_bytes, uploaded_at
	FROM media`

func (r *Repository) GetMedia(ctx context.Context, id uuid.UUID) (*helpcenter.Media, error) {
	var media helpcenter.Media
	err := r.db.QueryRow(ctx, mediaSelect+` WHERE id = $1`, id).Scan(
		&media.ID, &media.GuideID, &media.BlobKey, &media.URL, &media.FileName,
		&media.ContentType, &media.SizeBytes, &media.UploadedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, helpcenter.ErrMediaNotFound
		}
		return nil, translateError("get media", err)
	}
	return &media, nil
}

func (r *Repository) ListMediaByGuide(ctx context.Context, guideID uuid.UUID) ([]*helpcenter.Media, error) {
	query := mediaSelect + ` WHERE guide_id = $1 ORDER BY uploaded_at, id`

	rows, err := r.db.Query(ctx, query, guideID)
	if err != nil {
		return nil, translateError("list media by guide", err)
	}
	defer rows.Close()

	return scanMediaRows(rows)
}

func scanMediaRows(rows pgx.Rows) ([]*helpcenter.Media, error) {
	result := []*helpcenter.Media{}
	for rows.Next() {
		var media helpcenter.Media
		err := rows.Scan(
			&media.ID, &media.GuideID, &media.BlobKey, &media.URL, &media.FileName,
			&media.ContentType, &media.SizeBytes, &media.UploadedAt)
		if err != nil {
			return nil, translateError("scan media", err)
		}
		result = append(result, &media)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("iterate media rows", err)
	}
	return result, nil
}

func (r *Repository) DeleteMedia(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM media WHERE id = $1`, id)
	if err != nil {
		return translateError("delete media", err)
	}
	if tag.RowsAffected() == 0 {
		return helpcenter.ErrMediaNotFound
	}
	return nil
}

func (r *Repository) DeleteMediaByGuide(ctx context.Context, guideID uuid.UUID) ([]*helpcenter.Media, error) {
	query := `
		DELETE FROM media WHERE guide_id = $1
		RETURNING id, guide_id, blob_key, url, file_name, content_type,
		          size_bytes, uploaded_at`

	rows, err := r.db.Query(ctx, query, guideID)
	if err != nil {
		return nil, translateError("delete media by guide", err)
	}
	defer rows.Close()

	return scanMediaRows(rows)
}

// Feedback operations

func (r *Repository) CreateFeedback(ctx context.Context, feedback *helpcenter.Feedback) error {
	query := `
		INSERT INTO feedback (id, guide_id, email, body, rating, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		feedback.ID, feedback.GuideID, feedback.Email, feedback.Body,
		feedback.Rating, feedback.CreatedAt)
	if err != nil {
		return translateError("create feedback", err)
	}
	return nil
}

const feedbackSelect = `
	SELECT id, guide_id, email, body, rating, created_at
	FROM feedback`

func (r *Repository) GetFeedback(ctx context.Context, id uuid.UUID) (*helpcenter.Feedback, error) {
	var feedback helpcenter.Feedback
	err := r.db.QueryRow(ctx, feedbackSelect+` WHERE id = $1`, id).Scan(
		&feedback.ID, &feedback.GuideID, &feedback.Email, &feedback.Body,
		&feedback.Rating, &feedback.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, helpcenter.ErrFeedbackNotFound
		}
		return nil, translateError("get feedback", err)
	}
	return &feedback, nil
}

func (r *Repository) ListFeedback(ctx context.Context) ([]*helpcenter.Feedback, error) {
	query := feedbackSelect + ` ORDER BY created_at DESC, id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, translateError("list feedback", err)
	}
	defer rows.Close()

	result := []*helpcenter.Feedback{}
	for rows.Next() {
		var feedback helpcenter.Feedback
		err := rows.Scan(
			&feedback.ID, &feedback.GuideID, &feedback.Email, &feedback.Body,
			&feedback.Rating, &feedback.CreatedAt)
		if err != nil {
			return nil, translateError("scan feedback", err)
		}
		result = append(result, &feedback)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("iterate feedback rows", err)
	}
	return result, nil
}

func (r *Repository) DeleteFeedback(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM feedback WHERE id = $1`, id)
	if err != nil {
		return translateError("delete feedback", err)
	}
	if tag.RowsAffected() == 0 {
		return helpcenter.ErrFeedbackNotFound
	}
	return nil
}
