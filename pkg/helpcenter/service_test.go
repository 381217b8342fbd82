package helpcenter_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/help-center/pkg/helpcenter"
	"github.com/tendant/help-center/pkg/helpcenter/repo/memory"
	memorystorage "github.com/tendant/help-center/pkg/helpcenter/storage/memory"
)

func newTestService(t *testing.T) (helpcenter.Service, *memorystorage.Backend) {
	t.Helper()

	blobs := memorystorage.New()
	svc, err := helpcenter.New(
		helpcenter.WithRepository(memory.New()),
		helpcenter.WithBlobStore(blobs),
	)
	require.NoError(t, err)
	return svc, blobs
}

func paragraphBody(text string) helpcenter.Body {
	return helpcenter.Body{Blocks: []helpcenter.Block{
		{Type: helpcenter.BlockParagraph, Data: []byte(`{"text":"` + text + `"}`)},
	}}
}

func TestServiceCreation(t *testing.T) {
	tests := []struct {
		name        string
		options     []helpcenter.Option
		expectError bool
	}{
		{
			name:        "no options should fail",
			options:     []helpcenter.Option{},
			expectError: true,
		},
		{
			name: "repository only should fail",
			options: []helpcenter.Option{
				helpcenter.WithRepository(memory.New()),
			},
			expectError: true,
		},
		{
			name: "repository and blob store should succeed",
			options: []helpcenter.Option{
				helpcenter.WithRepository(memory.New()),
				helpcenter.WithBlobStore(memorystorage.New()),
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := helpcenter.New(tt.options...)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, svc)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, svc)
			}
		})
	}
}

func TestCreateCategory(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, helpcenter.CreateCategoryRequest{
		Name:     "  Getting Started  ",
		Position: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "Getting Started", category.Name)
	assert.Equal(t, "getting-started", category.Slug, "slug is derived from the name")
	assert.Equal(t, 2, category.Position)
	assert.NotEqual(t, uuid.Nil, category.ID)

	fetched, err := svc.GetCategoryBySlug(ctx, "getting-started")
	require.NoError(t, err)
	assert.Equal(t, category.ID, fetched.ID)
}

func TestCreateCategoryValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateCategory(ctx, helpcenter.CreateCategoryRequest{Name: "   "})
	assert.ErrorIs(t, err, helpcenter.ErrInvalidInput)

	_, err = svc.CreateCategory(ctx, helpcenter.CreateCategoryRequest{
		Name: "Billing", Slug: "Bad Slug!",
	})
	assert.ErrorIs(t, err, helpcenter.ErrInvalidInput)
}

func TestCreateCategorySlugConflict(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateCategory(ctx, helpcenter.CreateCategoryRequest{Name: "Billing"})
	require.NoError(t, err)

	_, err = svc.CreateCategory(ctx, helpcenter.CreateCategoryRequest{Name: "billing"})
	assert.ErrorIs(t, err, helpcenter.ErrSlugTaken)
}

func TestUpdateCategory(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, helpcenter.CreateCategoryRequest{Name: "Billing"})
	require.NoError(t, err)

	name := "Payments"
	position := 5
	updated, err := svc.UpdateCategory(ctx, category.ID, helpcenter.UpdateCategoryRequest{
		Name:     &name,
		Position: &position,
	})
	require.NoError(t, err)
	assert.Equal(t, "Payments", updated.Name)
	assert.Equal(t, 5, updated.Position)
	assert.Equal(t, "billing", updated.Slug, "slug only changes when requested")
}

func TestUpdateCategorySlugConflict(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateCategory(ctx, helpcenter.CreateCategoryRequest{Name: "Billing"})
	require.NoError(t, err)
	other, err := svc.CreateCategory(ctx, helpcenter.CreateCategoryRequest{Name: "Accounts"})
	require.NoError(t, err)

	slug := "billing"
	_, err = svc.UpdateCategory(ctx, other.ID, helpcenter.UpdateCategoryRequest{Slug: &slug})
	assert.ErrorIs(t, err, helpcenter.ErrSlugTaken)
}

func TestListCategoriesOrdering(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, c := range []struct {
		name     string
		position int
	}{
		{"Zebra Topics", 1},
		{"Accounts", 2},
		{"Billing", 1},
	} {
		_, err := svc.CreateCategory(ctx, helpcenter.CreateCategoryRequest{
			Name: c.name, Position: c.position,
		})
		require.NoError(t, err)
	}

	categories, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 3)
	assert.Equal(t, "Billing", categories[0].Name)
	assert.Equal(t, "Zebra Topics", categories[1].Name)
	assert.Equal(t, "Accounts", categories[2].Name)
}

func TestDeleteCategoryOrphansGuides(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, helpcenter.CreateCategoryRequest{Name: "Billing"})
	require.NoError(t, err)

	details, err := svc.CreateGuide(ctx, helpcenter.CreateGuideRequest{
		Title:      "Refund policy",
		Body:       paragraphBody("Refunds take 5 days."),
		CategoryID: &category.ID,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCategory(ctx, category.ID))

	_, err = svc.GetCategory(ctx, category.ID)
	assert.ErrorIs(t, err, helpcenter.ErrCategoryNotFound)

	after, err := svc.GetGuide(ctx, details.Guide.ID)
	require.NoError(t, err)
	assert.Nil(t, after.Guide.CategoryID, "the guide survives uncategorized")
	assert.Nil(t, after.Category)
}

func TestDeleteCategoryNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.DeleteCategory(context.Background(), uuid.New())
	assert.ErrorIs(t, err, helpcenter.ErrCategoryNotFound)
}

func TestSubmitFeedback(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	details, err := svc.CreateGuide(ctx, helpcenter.CreateGuideRequest{
		Title: "Refund policy",
		Body:  paragraphBody("Refunds take 5 days."),
	})
	require.NoError(t, err)

	rating := 4
	feedback, err := svc.SubmitFeedback(ctx, helpcenter.SubmitFeedbackRequest{
		GuideSlug: "refund-policy",
		Email:     "reader@example.com",
		Body:      "  Very clear, thanks.  ",
		Rating:    &rating,
	})
	require.NoError(t, err)
	require.NotNil(t, feedback.GuideID)
	assert.Equal(t, details.Guide.ID, *feedback.GuideID)
	assert.Equal(t, "Very clear, thanks.", feedback.Body)
	assert.Equal(t, 4, *feedback.Rating)
}

func TestSubmitFeedbackUnknownSlugKeepsSubmission(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	feedback, err := svc.SubmitFeedback(ctx, helpcenter.SubmitFeedbackRequest{
		GuideSlug: "no-such-guide",
		Body:      "The search found nothing.",
	})
	require.NoError(t, err)
	assert.Nil(t, feedback.GuideID, "a typo in the slug must not lose the feedback")

	fetched, err := svc.GetFeedback(ctx, feedback.ID)
	require.NoError(t, err)
	assert.Equal(t, feedback.Body, fetched.Body)
}

func TestSubmitFeedbackValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SubmitFeedback(ctx, helpcenter.SubmitFeedbackRequest{Body: "   "})
	assert.ErrorIs(t, err, helpcenter.ErrInvalidInput)

	bad := 6
	_, err = svc.SubmitFeedback(ctx, helpcenter.SubmitFeedbackRequest{
		Body: "ok", Rating: &bad,
	})
	assert.ErrorIs(t, err, helpcenter.ErrInvalidInput)
}

func TestDeleteFeedback(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	feedback, err := svc.SubmitFeedback(ctx, helpcenter.SubmitFeedbackRequest{Body: "noted"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteFeedback(ctx, feedback.ID))

	_, err = svc.GetFeedback(ctx, feedback.ID)
	assert.ErrorIs(t, err, helpcenter.ErrFeedbackNotFound)
}
