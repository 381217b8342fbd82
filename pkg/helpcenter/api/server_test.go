package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/help-center/pkg/helpcenter"
	"github.com/tendant/help-center/pkg/helpcenter/api"
	"github.com/tendant/help-center/pkg/helpcenter/ratelimit"
	"github.com/tendant/help-center/pkg/helpcenter/repo/memory"
	memorystorage "github.com/tendant/help-center/pkg/helpcenter/storage/memory"
)

const testEditorKey = "test-editor-key"

type unlimitedStore struct{}

func (unlimitedStore) IncrementAndGet(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	return 1, nil
}

func newTestServer(t *testing.T) (*httptest.Server, helpcenter.Service) {
	t.Helper()

	svc, err := helpcenter.New(
		helpcenter.WithRepository(memory.New()),
		helpcenter.WithBlobStore(memorystorage.New()),
	)
	require.NoError(t, err)

	router := api.NewRouter(api.Config{
		Service:   svc,
		Limiter:   ratelimit.New(unlimitedStore{}, ratelimit.DefaultPolicy()),
		EditorKey: testEditorKey,
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, svc
}

func doJSON(t *testing.T, method, url string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(api.EditorKeyHeader, testEditorKey)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, into interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
}

func TestEditorKeyRequired(t *testing.T) {
	server, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, server.URL+"/api/v1/categories", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req.Header.Set(api.EditorKeyHeader, "wrong-key")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHealthIsOpen(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCategoryCRUD(t *testing.T) {
	server, _ := newTestServer(t)
	base := server.URL + "/api/v1/categories"

	resp := doJSON(t, http.MethodPost, base, map[string]interface{}{
		"name": "Billing", "position": 1,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created helpcenter.Category
	decodeBody(t, resp, &created)
	assert.Equal(t, "billing", created.Slug)

	resp = doJSON(t, http.MethodGet, base+"/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched helpcenter.Category
	decodeBody(t, resp, &fetched)
	assert.Equal(t, created.ID, fetched.ID)

	resp = doJSON(t, http.MethodPut, base+"/"+created.ID.String(), map[string]interface{}{
		"name": "Payments",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated helpcenter.Category
	decodeBody(t, resp, &updated)
	assert.Equal(t, "Payments", updated.Name)

	resp = doJSON(t, http.MethodDelete, base+"/"+created.ID.String(), nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, base+"/"+created.ID.String(), nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCategoryConflictMapsTo409(t *testing.T) {
	server, _ := newTestServer(t)
	base := server.URL + "/api/v1/categories"

	resp := doJSON(t, http.MethodPost, base, map[string]interface{}{"name": "Billing"})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, base, map[string]interface{}{"name": "Billing"})
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestGuideValidationMapsTo400(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/guides", map[string]interface{}{
		"title": "",
		"body":  map[string]interface{}{"blocks": []interface{}{}},
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGuideCreateAndFetch(t *testing.T) {
	server, _ := newTestServer(t)
	base := server.URL + "/api/v1/guides"

	resp := doJSON(t, http.MethodPost, base, map[string]interface{}{
		"title": "Refund policy",
		"body": map[string]interface{}{
			"blocks": []map[string]interface{}{
				{"type": "paragraph", "data": map[string]string{"text": "Refunds take 5 days."}},
			},
		},
		"estimated_read_time": 2,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created helpcenter.GuideDetails
	decodeBody(t, resp, &created)
	assert.Equal(t, "refund-policy", created.Guide.Slug)
	assert.Equal(t, 2, created.Guide.EstimatedReadTime)

	resp = doJSON(t, http.MethodGet, base+"/"+created.Guide.ID.String(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched helpcenter.GuideDetails
	decodeBody(t, resp, &fetched)
	assert.Len(t, fetched.Guide.Body.Blocks, 1)
	assert.Equal(t, []*helpcenter.Media{}, fetched.Media)
}

func TestForeignMediaMapsTo422(t *testing.T) {
	server, svc := newTestServer(t)
	ctx := context.Background()

	a, err := svc.CreateGuide(ctx, helpcenter.CreateGuideRequest{
		Title: "Guide A",
		Body: helpcenter.Body{Blocks: []helpcenter.Block{
			{Type: helpcenter.BlockParagraph, Data: []byte(`{"text":"a"}`)},
		}},
	})
	require.NoError(t, err)
	b, err := svc.CreateGuide(ctx, helpcenter.CreateGuideRequest{
		Title: "Guide B",
		Body: helpcenter.Body{Blocks: []helpcenter.Block{
			{Type: helpcenter.BlockParagraph, Data: []byte(`{"text":"b"}`)},
		}},
	})
	require.NoError(t, err)

	owned, err := svc.UploadMedia(ctx, helpcenter.UploadMediaRequest{
		GuideID:  a.Guide.ID,
		FileName: "a.png",
		Reader:   bytes.NewReader([]byte("data")),
	})
	require.NoError(t, err)

	resp := doJSON(t, http.MethodPut, server.URL+"/api/v1/guides/"+b.Guide.ID.String(),
		map[string]interface{}{
			"media_ids": []string{owned.ID.String()},
		})
	resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestMediaUpload(t *testing.T) {
	server, svc := newTestServer(t)
	ctx := context.Background()

	details, err := svc.CreateGuide(ctx, helpcenter.CreateGuideRequest{
		Title: "Refund policy",
		Body: helpcenter.Body{Blocks: []helpcenter.Block{
			{Type: helpcenter.BlockParagraph, Data: []byte(`{"text":"a"}`)},
		}},
	})
	require.NoError(t, err)

	var form bytes.Buffer
	writer := multipart.NewWriter(&form)
	part, err := writer.CreateFormFile("file", "receipt.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	url := fmt.Sprintf("%s/api/v1/guides/%s/media", server.URL, details.Guide.ID)
	req, err := http.NewRequest(http.MethodPost, url, &form)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set(api.EditorKeyHeader, testEditorKey)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var media helpcenter.Media
	decodeBody(t, resp, &media)
	assert.Equal(t, details.Guide.ID, media.GuideID)
	assert.Equal(t, "receipt.png", media.FileName)

	resp = doJSON(t, http.MethodGet, url, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed []*helpcenter.Media
	decodeBody(t, resp, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, media.ID, listed[0].ID)
}

func TestFeedbackReview(t *testing.T) {
	server, svc := newTestServer(t)
	ctx := context.Background()

	feedback, err := svc.SubmitFeedback(ctx, helpcenter.SubmitFeedbackRequest{
		Body: "Could not find pricing info.",
	})
	require.NoError(t, err)

	resp := doJSON(t, http.MethodGet, server.URL+"/api/v1/feedback", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed []*helpcenter.Feedback
	decodeBody(t, resp, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, feedback.ID, listed[0].ID)

	resp = doJSON(t, http.MethodDelete, server.URL+"/api/v1/feedback/"+feedback.ID.String(), nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
