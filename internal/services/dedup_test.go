package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/productivityhub/backend/internal/dedup"
	apperrors "github.com/productivityhub/backend/internal/pkg/errors"
	"github.com/productivityhub/backend/internal/pkg/logger"
	"github.com/productivityhub/backend/internal/types"
)

// memorySelectionStore stands in for redis in tests.
type memorySelectionStore struct {
	entries map[string][]byte
}

func newMemorySelectionStore() *memorySelectionStore {
	return &memorySelectionStore{entries: map[string][]byte{}}
}

func (m *memorySelectionStore) Save(ctx context.Context, tenantID uuid.UUID, token string, criteria []byte, ttl time.Duration) error {
	m.entries[tenantID.String()+":"+token] = criteria
	return nil
}

func (m *memorySelectionStore) Load(ctx context.Context, tenantID uuid.UUID, token string) ([]byte, error) {
	raw, ok := m.entries[tenantID.String()+":"+token]
	if !ok {
		return nil, apperrors.ErrTokenExpired
	}
	return raw, nil
}

func (m *memorySelectionStore) Close() error { return nil }

func floatptr(f float64) *float64 { return &f }

type dedupFixture struct {
	*mergeFixture
	selections SelectionService
	service    DedupService
}

func newDedupFixture(t *testing.T) *dedupFixture {
	t.Helper()
	mf := newMergeFixture(t)
	log := logger.NewNop()
	selections := NewSelectionService(log, newMemorySelectionStore(), time.Hour)
	return &dedupFixture{
		mergeFixture: mf,
		selections:   selections,
		service:      NewDedupService(log, dedup.DefaultConfig(), mf.contactRepo, mf.service, selections),
	}
}

func TestFindDuplicateClusters(t *testing.T) {
	t.Parallel()
	f := newDedupFixture(t)
	ctx := context.Background()

	// Same person twice: the same phone in two formats plus the same email.
	a := f.seedContact(t, &types.Contact{
		FullName: "김민수",
		Phone:    strptr("010-1234-5678"),
		Email:    strptr("minsu@example.com"),
		Notes:    strptr("prefers email"),
	})
	b := f.seedContact(t, &types.Contact{
		FullName: "김민수",
		Phone:    strptr("+82 10-1234-5678"),
		Email:    strptr("minsu@example.com"),
	})
	f.seedContact(t, &types.Contact{
		FullName: "박서준",
		Phone:    strptr("010-8888-7777"),
	})

	resp, err := f.service.FindDuplicateClusters(ctx, f.tenantID, &types.DedupPreviewRequest{})
	if err != nil {
		t.Fatalf("FindDuplicateClusters: %v", err)
	}
	if resp.TotalContacts != 3 {
		t.Errorf("TotalContacts = %d, want 3", resp.TotalContacts)
	}
	if resp.TotalClusters != 1 || len(resp.Clusters) != 1 {
		t.Fatalf("expected one cluster, got %+v", resp)
	}

	cl := resp.Clusters[0]
	if len(cl.MemberIDs) != 2 {
		t.Fatalf("cluster has %d members, want 2", len(cl.MemberIDs))
	}
	got := map[uuid.UUID]bool{cl.MemberIDs[0]: true, cl.MemberIDs[1]: true}
	if !got[a.ID] || !got[b.ID] {
		t.Errorf("cluster members %v, want {%s, %s}", cl.MemberIDs, a.ID, b.ID)
	}
	// a carries more populated fields, so it is the suggested survivor.
	if cl.SuggestedPrimaryID != a.ID {
		t.Errorf("suggested primary = %s, want %s", cl.SuggestedPrimaryID, a.ID)
	}
	if cl.Confidence < dedup.DefaultConfig().MinConfidenceScore {
		t.Errorf("confidence %v below threshold", cl.Confidence)
	}
	if cl.ClusterID == "" {
		t.Errorf("cluster id not set")
	}
}

func TestFindDuplicateClustersPreviewIsRepeatable(t *testing.T) {
	t.Parallel()
	f := newDedupFixture(t)
	ctx := context.Background()

	f.seedContact(t, &types.Contact{FullName: "Choi Yuna", Phone: strptr("010-4444-5555")})
	f.seedContact(t, &types.Contact{FullName: "Yuna Choi", Phone: strptr("010-4444-5555")})

	// Token order in the name is irrelevant; an explicit threshold
	// below the default still resolves the pair.
	req := &types.DedupPreviewRequest{MinConfidenceScore: floatptr(0.65)}
	first, err := f.service.FindDuplicateClusters(ctx, f.tenantID, req)
	if err != nil {
		t.Fatalf("first preview: %v", err)
	}
	second, err := f.service.FindDuplicateClusters(ctx, f.tenantID, req)
	if err != nil {
		t.Fatalf("second preview: %v", err)
	}
	if len(first.Clusters) != 1 || len(second.Clusters) != 1 {
		t.Fatalf("expected one cluster per preview, got %d and %d", len(first.Clusters), len(second.Clusters))
	}
	if first.Clusters[0].ClusterID != second.Clusters[0].ClusterID {
		t.Errorf("cluster id changed between previews: %s vs %s",
			first.Clusters[0].ClusterID, second.Clusters[0].ClusterID)
	}
}

func TestFindDuplicateClustersTenantIsolation(t *testing.T) {
	t.Parallel()
	f := newDedupFixture(t)
	ctx := context.Background()

	f.seedContact(t, &types.Contact{FullName: "Kang Daniel", Phone: strptr("010-5555-6666")})

	// Identical contact under another tenant must not pair up.
	foreign := &types.Contact{
		ID: uuid.New(), TenantID: uuid.New(),
		FullName: "Kang Daniel", Phone: strptr("010-5555-6666"), IsActive: true,
	}
	if err := f.db.Create(foreign).Error; err != nil {
		t.Fatalf("seed foreign contact: %v", err)
	}

	resp, err := f.service.FindDuplicateClusters(ctx, f.tenantID, nil)
	if err != nil {
		t.Fatalf("FindDuplicateClusters: %v", err)
	}
	if resp.TotalContacts != 1 || resp.TotalClusters != 0 {
		t.Errorf("tenant isolation broken: %+v", resp)
	}
}

func TestFindDuplicateClustersWithSelectionToken(t *testing.T) {
	t.Parallel()
	f := newDedupFixture(t)
	ctx := context.Background()

	f.seedContact(t, &types.Contact{FullName: "Seo Jiho", Phone: strptr("010-1010-2020"), Email: strptr("jiho@example.com")})
	f.seedContact(t, &types.Contact{FullName: "Jiho Seo", Phone: strptr("010-1010-2020"), Email: strptr("jiho@example.com")})
	// Matches the pair's signature but is excluded by the selection.
	f.seedContact(t, &types.Contact{FullName: "Moon Jiho", Phone: strptr("010-1010-2020"), Email: strptr("jiho@example.com")})

	token, _, err := f.selections.CreateSelection(ctx, f.tenantID, &types.ContactFilter{Name: "Seo"})
	if err != nil {
		t.Fatalf("CreateSelection: %v", err)
	}

	resp, err := f.service.FindDuplicateClusters(ctx, f.tenantID, &types.DedupPreviewRequest{
		SelectionToken: token,
	})
	if err != nil {
		t.Fatalf("FindDuplicateClusters: %v", err)
	}
	if resp.TotalContacts != 2 {
		t.Errorf("selection not applied, TotalContacts = %d", resp.TotalContacts)
	}
	if resp.TotalClusters != 1 || len(resp.Clusters[0].MemberIDs) != 2 {
		t.Fatalf("expected the two selected contacts clustered, got %+v", resp)
	}
}

func TestFindDuplicateClustersExpiredToken(t *testing.T) {
	t.Parallel()
	f := newDedupFixture(t)

	_, err := f.service.FindDuplicateClusters(context.Background(), f.tenantID, &types.DedupPreviewRequest{
		SelectionToken: "gone",
	})
	if !errors.Is(err, apperrors.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestFindDuplicateClustersBadThreshold(t *testing.T) {
	t.Parallel()
	f := newDedupFixture(t)

	_, err := f.service.FindDuplicateClusters(context.Background(), f.tenantID, &types.DedupPreviewRequest{
		MinConfidenceScore: floatptr(1.5),
	})
	if !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestFindDuplicateClustersExplicitZeroThreshold(t *testing.T) {
	t.Parallel()
	f := newDedupFixture(t)
	ctx := context.Background()

	// A shared phone with unrelated names scores well below the
	// default threshold.
	f.seedContact(t, &types.Contact{FullName: "Han River", Phone: strptr("010-6666-7777")})
	f.seedContact(t, &types.Contact{FullName: "Oak Grove", Phone: strptr("010-6666-7777")})

	resp, err := f.service.FindDuplicateClusters(ctx, f.tenantID, nil)
	if err != nil {
		t.Fatalf("default preview: %v", err)
	}
	if resp.TotalClusters != 0 {
		t.Fatalf("pair should not qualify at the default threshold: %+v", resp)
	}

	// An explicit 0 is a real threshold, not a request for the default.
	resp, err = f.service.FindDuplicateClusters(ctx, f.tenantID, &types.DedupPreviewRequest{
		MinConfidenceScore: floatptr(0),
	})
	if err != nil {
		t.Fatalf("zero-threshold preview: %v", err)
	}
	if resp.TotalClusters != 1 {
		t.Fatalf("explicit zero threshold must admit every candidate pair, got %+v", resp)
	}
}

func TestFindDuplicateClustersRespectsPairCap(t *testing.T) {
	t.Parallel()
	mf := newMergeFixture(t)
	log := logger.NewNop()
	cfg := dedup.DefaultConfig()
	cfg.MaxCandidatePairs = 1
	selections := NewSelectionService(log, newMemorySelectionStore(), time.Hour)
	service := NewDedupService(log, cfg, mf.contactRepo, mf.service, selections)

	// Three contacts sharing a phone produce three candidate pairs.
	for _, name := range []string{"Lee A", "Lee B", "Lee C"} {
		mf.seedContact(t, &types.Contact{FullName: name, Phone: strptr("010-3333-4444")})
	}

	_, err := service.FindDuplicateClusters(context.Background(), mf.tenantID, nil)
	if !errors.Is(err, apperrors.ErrDatasetTooLarge) {
		t.Fatalf("expected ErrDatasetTooLarge, got %v", err)
	}
}

func TestMergeContactsDelegates(t *testing.T) {
	t.Parallel()
	f := newDedupFixture(t)
	ctx := context.Background()

	p := f.seedContact(t, &types.Contact{FullName: "Im Nayeon", Email: strptr("nayeon@example.com")})
	d := f.seedContact(t, &types.Contact{FullName: "Nayeon Im", Phone: strptr("010-6666-7777")})

	resp, err := f.service.MergeContacts(ctx, f.tenantID, &types.MergeContactsRequest{
		Clusters: []types.ClusterSelection{{
			ClusterID: "c1", PrimaryID: p.ID, DuplicateIDs: []uuid.UUID{d.ID},
		}},
	}, f.userID, "tester")
	if err != nil {
		t.Fatalf("MergeContacts: %v", err)
	}
	if !resp.Success || resp.ContactsMerged != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if got := f.reload(t, p.ID); got.Phone == nil {
		t.Errorf("merge did not fill phone")
	}
}

func TestMergeContactsRejectsEmptyRequest(t *testing.T) {
	t.Parallel()
	f := newDedupFixture(t)

	_, err := f.service.MergeContacts(context.Background(), f.tenantID, &types.MergeContactsRequest{}, f.userID, "tester")
	if !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}
