package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/productivityhub/backend/internal/pkg/errors"
	"github.com/productivityhub/backend/internal/pkg/logger"
	"github.com/productivityhub/backend/internal/requestdata"
	"github.com/productivityhub/backend/internal/types"
)

type stubDedupService struct {
	previewResp *types.DedupPreviewResponse
	previewErr  error
	mergeResp   *types.MergeContactsResponse
	mergeErr    error
}

func (s *stubDedupService) FindDuplicateClusters(ctx context.Context, tenantID uuid.UUID, req *types.DedupPreviewRequest) (*types.DedupPreviewResponse, error) {
	return s.previewResp, s.previewErr
}

func (s *stubDedupService) MergeContacts(ctx context.Context, tenantID uuid.UUID, req *types.MergeContactsRequest, userID uuid.UUID, userName string) (*types.MergeContactsResponse, error) {
	return s.mergeResp, s.mergeErr
}

// withIdentity simulates what the auth middleware installs.
func withIdentity(tenantID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := requestdata.WithRequestData(c.Request.Context(), &requestdata.RequestData{
			TenantID: tenantID,
			UserID:   uuid.New(),
			UserName: "tester",
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func newDedupRouter(stub *stubDedupService, authed bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewDedupHandler(logger.NewNop(), stub)
	r := gin.New()
	if authed {
		r.Use(withIdentity(uuid.New()))
	}
	r.POST("/preview", h.Preview)
	r.POST("/merge", h.Merge)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestDedupPreviewHandler(t *testing.T) {
	t.Parallel()
	stub := &stubDedupService{
		previewResp: &types.DedupPreviewResponse{
			Clusters:      []*types.DuplicateClusterView{{ClusterID: "abc123", Confidence: 0.9}},
			TotalClusters: 1,
			TotalContacts: 10,
		},
	}
	r := newDedupRouter(stub, true)

	w := doJSON(t, r, http.MethodPost, "/preview", `{"min_confidence_score":0.8}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp types.DedupPreviewResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.TotalClusters != 1 || resp.Clusters[0].ClusterID != "abc123" {
		t.Errorf("unexpected body: %+v", resp)
	}
}

func TestDedupPreviewHandlerUnauthenticated(t *testing.T) {
	t.Parallel()
	r := newDedupRouter(&stubDedupService{}, false)

	w := doJSON(t, r, http.MethodPost, "/preview", `{}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestDedupPreviewHandlerDatasetTooLarge(t *testing.T) {
	t.Parallel()
	r := newDedupRouter(&stubDedupService{previewErr: apperrors.ErrDatasetTooLarge}, true)

	w := doJSON(t, r, http.MethodPost, "/preview", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "dataset_too_large") {
		t.Errorf("error code missing from body: %s", w.Body.String())
	}
}

func TestDedupPreviewHandlerInternalErrorIsGeneric(t *testing.T) {
	t.Parallel()
	detail := "pq: connection refused to db host 10.0.3.7:5432"
	r := newDedupRouter(&stubDedupService{previewErr: errors.New(detail)}, true)

	w := doJSON(t, r, http.MethodPost, "/preview", `{}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	body := w.Body.String()
	if strings.Contains(body, "10.0.3.7") || strings.Contains(body, "pq:") {
		t.Errorf("driver detail leaked into the response: %s", body)
	}
	if !strings.Contains(body, "internal server error") {
		t.Errorf("generic message missing from body: %s", body)
	}
}

func TestDedupMergeHandler(t *testing.T) {
	t.Parallel()
	stub := &stubDedupService{
		mergeResp: &types.MergeContactsResponse{
			Success:           true,
			ClustersProcessed: 2,
			ContactsMerged:    3,
		},
	}
	r := newDedupRouter(stub, true)

	body := `{"clusters":[{"cluster_id":"c1","primary_id":"` + uuid.NewString() + `","duplicate_ids":["` + uuid.NewString() + `"]}]}`
	w := doJSON(t, r, http.MethodPost, "/merge", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp types.MergeContactsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.ContactsMerged != 3 {
		t.Errorf("unexpected body: %+v", resp)
	}
}

func TestDedupMergeHandlerInvalidBody(t *testing.T) {
	t.Parallel()
	r := newDedupRouter(&stubDedupService{}, true)

	w := doJSON(t, r, http.MethodPost, "/merge", `{"clusters": "nope"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
