package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/tendant/help-center/pkg/helpcenter"
)

// Repository implements helpcenter.Repository with in-memory storage, for
// tests and development mode.
//
// WithTx gives snapshot isolation the cheap way: the transaction runs
// against a deep copy of the store under the write lock and the copy is
// swapped in only on success. A failed or cancelled transaction leaves the
// original store untouched.
type Repository struct {
	mu sync.RWMutex
	st *store
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{st: newStore()}
}

func (r *Repository) WithTx(ctx context.Context, fn func(helpcenter.Repository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := r.st.clone()
	if err := fn(&txRepository{st: snapshot}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		// Caller went away before commit; roll back by not swapping.
		return err
	}
	r.st = snapshot
	return nil
}

// Category operations

func (r *Repository) CreateCategory(ctx context.Context, category *helpcenter.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.createCategory(category)
}

func (r *Repository) GetCategory(ctx context.Context, id uuid.UUID) (*helpcenter.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.st.getCategory(id)
}

func (r *Repository) GetCategoryBySlug(ctx context.Context, slug string) (*helpcenter.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.st.getCategoryBySlug(slug)
}

func (r *Repository) ListCategories(ctx context.Context) ([]*helpcenter.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.st.listCategories()
}

func (r *Repository) UpdateCategory(ctx context.Context, category *helpcenter.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.updateCategory(category)
}

func (r *Repository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.deleteCategory(id)
}

func (r *Repository) DetachGuidesFromCategory(ctx context.Context, categoryID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.detachGuidesFromCategory(categoryID)
}

// Guide operations

func (r *Repository) CreateGuide(ctx context.Context, guide *helpcenter.Guide) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.createGuide(guide)
}

func (r *Repository) GetGuide(ctx context.Context, id uuid.UUID) (*helpcenter.Guide, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.st.getGuide(id)
}

func (r *Repository) GetGuideBySlug(ctx context.Context, slug string) (*helpcenter.Guide, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.st.getGuideBySlug(slug)
}

func (r *Repository) ListGuides(ctx context.Context, categorySlug *string) ([]*helpcenter.Guide, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.st.listGuides(categorySlug)
}

func (r *Repository) UpdateGuide(ctx context.Context, guide *helpcenter.Guide) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.updateGuide(guide)
}

func (r *Repository) DeleteGuide(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.deleteGuide(id)
}

// Media operations

func (r *Repository) CreateMedia(ctx context.Context, media *helpcenter.Media) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.createMedia(media)
}

func (r *Repository) GetMedia(ctx context.Context, id uuid.UUID) (*helpcenter.Media, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.st.getMedia(id)
}

func (r *Repository) ListMediaByGuide(ctx context.Context, guideID uuid.UUID) ([]*helpcenter.Media, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.st.listMediaByGuide(guideID)
}

func (r *Repository) DeleteMedia(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.deleteMedia(id)
}

func (r *Repository) DeleteMediaByGuide(ctx context.Context, guideID uuid.UUID) ([]*helpcenter.Media, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.deleteMediaByGuide(guideID)
}

// Feedback operations

func (r *Repository) CreateFeedback(ctx context.Context, feedback *helpcenter.Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.createFeedback(feedback)
}

func (r *Repository) GetFeedback(ctx context.Context, id uuid.UUID) (*helpcenter.Feedback, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.st.getFeedback(id)
}

func (r *Repository) ListFeedback(ctx context.Context) ([]*helpcenter.Feedback, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.st.listFeedback()
}

func (r *Repository) DeleteFeedback(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.deleteFeedback(id)
}

// txRepository runs store operations without locking; the owning
// Repository holds its write lock for the whole transaction.
type txRepository struct {
	st *store
}

func (t *txRepository) WithTx(ctx context.Context, fn func(helpcenter.Repository) error) error {
	return errors.New("nested transactions are not supported")
}

func (t *txRepository) CreateCategory(ctx context.Context, category *helpcenter.Category) error {
	return t.st.createCategory(category)
}

func (t *txRepository) GetCategory(ctx context.Context, id uuid.UUID) (*helpcenter.Category, error) {
	return t.st.getCategory(id)
}

func (t *txRepository) GetCategoryBySlug(ctx context.Context, slug string) (*helpcenter.Category, error) {
	return t.st.getCategoryBySlug(slug)
}

func (t *txRepository) ListCategories(ctx context.Context) ([]*helpcenter.Category, error) {
	return t.st.listCategories()
}

func (t *txRepository) UpdateCategory(ctx context.Context, category *helpcenter.Category) error {
	return t.st.updateCategory(category)
}

func (t *txRepository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return t.st.deleteCategory(id)
}

func (t *txRepository) DetachGuidesFromCategory(ctx context.Context, categoryID uuid.UUID) error {
	return t.st.detachGuidesFromCategory(categoryID)
}

func (t *txRepository) CreateGuide(ctx context.Context, guide *helpcenter.Guide) error {
	return t.st.createGuide(guide)
}

func (t *txRepository) GetGuide(ctx context.Context, id uuid.UUID) (*helpcenter.Guide, error) {
	return t.st.getGuide(id)
}

func (t *txRepository) GetGuideBySlug(ctx context.Context, slug string) (*helpcenter.Guide, error) {
	return t.st.getGuideBySlug(slug)
}

func (t *txRepository) ListGuides(ctx context.Context, categorySlug *string) ([]*helpcenter.Guide, error) {
	return t.st.listGuides(categorySlug)
}

func (t *txRepository) UpdateGuide(ctx context.Context, guide *helpcenter.Guide) error {
	return t.st.updateGuide(guide)
}

func (t *txRepository) DeleteGuide(ctx context.Context, id uuid.UUID) error {
	return t.st.deleteGuide(id)
}

func (t *txRepository) CreateMedia(ctx context.Context, media *helpcenter.Media) error {
	return t.st.createMedia(media)
}

func (t *txRepository) GetMedia(ctx context.Context, id uuid.UUID) (*helpcenter.Media, error) {
	return t.st.getMedia(id)
}

func (t *txRepository) ListMediaByGuide(ctx context.Context, guideID uuid.UUID) ([]*helpcenter.Media, error) {
	return t.st.listMediaByGuide(guideID)
}

func (t *txRepository) DeleteMedia(ctx context.Context, id uuid.UUID) error {
	return t.st.deleteMedia(id)
}

func (t *txRepository) DeleteMediaByGuide(ctx context.Context, guideID uuid.UUID) ([]*helpcenter.Media, error) {
	return t.st.deleteMediaByGuide(guideID)
}

func (t *txRepository) CreateFeedback(ctx context.Context, feedback *helpcenter.Feedback) error {
	return t.st.createFeedback(feedback)
}

func (t *txRepository) GetFeedback(ctx context.Context, id uuid.UUID) (*helpcenter.Feedback, error) {
	return t.st.getFeedback(id)
}

func (t *txRepository) ListFeedback(ctx context.Context) ([]*helpcenter.Feedback, error) {
	return t.st.listFeedback()
}

func (t *txRepository) DeleteFeedback(ctx context.Context, id uuid.UUID) error {
	return t.st.deleteFeedback(id)
}

// store holds the actual maps. Its methods do no locking and assume the
// caller serializes access. seq counters give deterministic ordering for
// rows sharing a timestamp.
type store struct {
	categories map[uuid.UUID]*helpcenter.Category
	guides     map[uuid.UUID]*helpcenter.Guide
	media      map[uuid.UUID]*mediaRow
	feedback   map[uuid.UUID]*feedbackRow

	mediaSeq    uint64
	feedbackSeq uint64
}

type mediaRow struct {
	media *helpcenter.Media
	seq   uint64
}

type feedbackRow struct {
	feedback *helpcenter.Feedback
	seq      uint64
}

func newStore() *store {
	return &store{
		categories: make(map[uuid.UUID]*helpcenter.Category),
		guides:     make(map[uuid.UUID]*helpcenter.Guide),
		media:      make(map[uuid.UUID]*mediaRow),
		feedback:   make(map[uuid.UUID]*feedbackRow),
	}
}

func (st *store) clone() *store {
	c := newStore()
	c.mediaSeq = st.mediaSeq
	c.feedbackSeq = st.feedbackSeq
	for id, v := range st.categories {
		cp := *v
		c.categories[id] = &cp
	}
	for id, v := range st.guides {
		cp := *v
		c.guides[id] = &cp
	}
	for id, v := range st.media {
		cp := *v.media
		c.media[id] = &mediaRow{media: &cp, seq: v.seq}
	}
	for id, v := range st.feedback {
		cp := *v.feedback
		c.feedback[id] = &feedbackRow{feedback: &cp, seq: v.seq}
	}
	return c
}

func (st *store) createCategory(category *helpcenter.Category) error {
	for _, existing := range st.categories {
		if existing.Slug == category.Slug {
			return helpcenter.ErrSlugTaken
		}
	}
	cp := *category
	st.categories[category.ID] = &cp
	return nil
}

func (st *store) getCategory(id uuid.UUID) (*helpcenter.Category, error) {
	category, ok := st.categories[id]
	if !ok {
		return nil, helpcenter.ErrCategoryNotFound
	}
	cp := *category
	return &cp, nil
}

func (st *store) getCategoryBySlug(slug string) (*helpcenter.Category, error) {
	for _, category := range st.categories {
		if category.Slug == slug {
			cp := *category
			return &cp, nil
		}
	}
	return nil, helpcenter.ErrCategoryNotFound
}

func (st *store) listCategories() ([]*helpcenter.Category, error) {
	result := make([]*helpcenter.Category, 0, len(st.categories))
	for _, category := range st.categories {
		cp := *category
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Position != result[j].Position {
			return result[i].Position < result[j].Position
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (st *store) updateCategory(category *helpcenter.Category) error {
	if _, ok := st.categories[category.ID]; !ok {
		return helpcenter.ErrCategoryNotFound
	}
	for id, existing := range st.categories {
		if id != category.ID && existing.Slug == category.Slug {
			return helpcenter.ErrSlugTaken
		}
	}
	cp := *category
	st.categories[category.ID] = &cp
	return nil
}

func (st *store) deleteCategory(id uuid.UUID) error {
	if _, ok := st.categories[id]; !ok {
		return helpcenter.ErrCategoryNotFound
	}
	delete(st.categories, id)
	return nil
}

func (st *store) detachGuidesFromCategory(categoryID uuid.UUID) error {
	for _, guide := range st.guides {
		if guide.CategoryID != nil && *guide.CategoryID == categoryID {
			guide.CategoryID = nil
		}
	}
	return nil
}

func (st *store) createGuide(guide *helpcenter.Guide) error {
	for _, existing := range st.guides {
		if existing.Slug == guide.Slug {
			return helpcenter.ErrSlugTaken
		}
	}
	if guide.CategoryID != nil {
		if _, ok := st.categories[*guide.CategoryID]; !ok {
			return helpcenter.ErrInvalidReference
		}
	}
	cp := *guide
	st.guides[guide.ID] = &cp
	return nil
}

func (st *store) getGuide(id uuid.UUID) (*helpcenter.Guide, error) {
	guide, ok := st.guides[id]
	if !ok {
		return nil, helpcenter.ErrGuideNotFound
	}
	cp := *guide
	return &cp, nil
}

func (st *store) getGuideBySlug(slug string) (*helpcenter.Guide, error) {
	for _, guide := range st.guides {
		if guide.Slug == slug {
			cp := *guide
			return &cp, nil
		}
	}
	return nil, helpcenter.ErrGuideNotFound
}

func (st *store) listGuides(categorySlug *string) ([]*helpcenter.Guide, error) {
	var categoryID *uuid.UUID
	if categorySlug != nil {
		category, err := st.getCategoryBySlug(*categorySlug)
		if err != nil {
			return nil, err
		}
		categoryID = &category.ID
	}

	result := make([]*helpcenter.Guide, 0, len(st.guides))
	for _, guide := range st.guides {
		if categoryID != nil && (guide.CategoryID == nil || *guide.CategoryID != *categoryID) {
			continue
		}
		cp := *guide
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].Slug < result[j].Slug
	})
	return result, nil
}

func (st *store) updateGuide(guide *helpcenter.Guide) error {
	if _, ok := st.guides[guide.ID]; !ok {
		return helpcenter.ErrGuideNotFound
	}
	for id, existing := range st.guides {
		if id != guide.ID && existing.Slug == guide.Slug {
			return helpcenter.ErrSlugTaken
		}
	}
	if guide.CategoryID != nil {
		if _, ok := st.categories[*guide.CategoryID]; !ok {
			return helpcenter.ErrInvalidReference
		}
	}
	cp := *guide
	st.guides[guide.ID] = &cp
	return nil
}

func (st *store) deleteGuide(id uuid.UUID) error {
	if _, ok := st.guides[id]; !ok {
		return helpcenter.ErrGuideNotFound
	}
	delete(st.guides, id)
	// Feedback outlives its guide with a nulled reference, mirroring the
	// ON DELETE SET NULL constraint in Postgres.
	for _, row := range st.feedback {
		if row.feedback.GuideID != nil && *row.feedback.GuideID == id {
			row.feedback.GuideID = nil
		}
	}
	return nil
}

func (st *store) createMedia(media *helpcenter.Media) error {
	if _, ok := st.guides[media.GuideID]; !ok {
		return helpcenter.ErrInvalidReference
	}
	st.mediaSeq++
	cp := *media
	st.media[media.ID] = &mediaRow{media: &cp, seq: st.mediaSeq}
	return nil
}

func (st *store) getMedia(id uuid.UUID) (*helpcenter.Media, error) {
	row, ok := st.media[id]
	if !ok {
		return nil, helpcenter.ErrMediaNotFound
	}
	cp := *row.media
	return &cp, nil
}

func (st *store) listMediaByGuide(guideID uuid.UUID) ([]*helpcenter.Media, error) {
	var rows []*mediaRow
	for _, row := range st.media {
		if row.media.GuideID == guideID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].media.UploadedAt.Equal(rows[j].media.UploadedAt) {
			return rows[i].media.UploadedAt.Before(rows[j].media.UploadedAt)
		}
		return rows[i].seq < rows[j].seq
	})
	result := make([]*helpcenter.Media, 0, len(rows))
	for _, row := range rows {
		cp := *row.media
		result = append(result, &cp)
	}
	return result, nil
}

func (st *store) deleteMedia(id uuid.UUID) error {
	if _, ok := st.media[id]; !ok {
		return helpcenter.ErrMediaNotFound
	}
	delete(st.media, id)
	return nil
}

func (st *store) deleteMediaByGuide(guideID uuid.UUID) ([]*helpcenter.Media, error) {
	removed, err := st.listMediaByGuide(guideID)
	if err != nil {
		return nil, err
	}
	for _, m := range removed {
		delete(st.media, m.ID)
	}
	return removed, nil
}

func (st *store) createFeedback(feedback *helpcenter.Feedback) error {
	if feedback.GuideID != nil {
		if _, ok := st.guides[*feedback.GuideID]; !ok {
			return helpcenter.ErrInvalidReference
		}
	}
	st.feedbackSeq++
	cp := *feedback
	st.feedback[feedback.ID] = &feedbackRow{feedback: &cp, seq: st.feedbackSeq}
	return nil
}

func (st *store) getFeedback(id uuid.UUID) (*helpcenter.Feedback, error) {
	row, ok := st.feedback[id]
	if !ok {
		return nil, helpcenter.ErrFeedbackNotFound
	}
	cp := *row.feedback
	return &cp, nil
}

func (st *store) listFeedback() ([]*helpcenter.Feedback, error) {
	rows := make([]*feedbackRow, 0, len(st.feedback))
	for _, row := range st.feedback {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].feedback.CreatedAt.Equal(rows[j].feedback.CreatedAt) {
			return rows[i].feedback.CreatedAt.After(rows[j].feedback.CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})
	result := make([]*helpcenter.Feedback, 0, len(rows))
	for _, row := range rows {
		cp := *row.feedback
		result = append(result, &cp)
	}
	return result, nil
}

func (st *store) deleteFeedback(id uuid.UUID) error {
	if _, ok := st.feedback[id]; !ok {
		return helpcenter.ErrFeedbackNotFound
	}
	delete(st.feedback, id)
	return nil
}
