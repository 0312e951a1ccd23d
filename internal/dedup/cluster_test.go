package dedup

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/productivityhub/backend/internal/types"
)

func scored(a, b *types.Contact, overall float64) ScoredPair {
	return ScoredPair{Pair: makePair(a.ID, b.ID), Overall: overall}
}

func byID(contacts ...*types.Contact) map[uuid.UUID]*types.Contact {
	m := make(map[uuid.UUID]*types.Contact, len(contacts))
	for _, c := range contacts {
		m[c.ID] = c
	}
	return m
}

func TestBuildClustersTransitivity(t *testing.T) {
	t.Parallel()
	a := contact("a", nil, nil, nil)
	b := contact("b", nil, nil, nil)
	c := contact("c", nil, nil, nil)

	// A-B and B-C qualify; A-C was never scored above threshold.
	pairs := []ScoredPair{
		scored(a, b, 0.9),
		scored(b, c, 0.8),
		scored(a, c, 0.1),
	}
	clusters := BuildClusters(pairs, byID(a, b, c), 0.75, 0)
	if len(clusters) != 1 {
		t.Fatalf("expected one transitive cluster, got %d", len(clusters))
	}
	if len(clusters[0].Members) != 3 {
		t.Fatalf("expected 3 members, got %d", len(clusters[0].Members))
	}
}

func TestBuildClustersConfidenceIsMinEdge(t *testing.T) {
	t.Parallel()
	a := contact("a", nil, nil, nil)
	b := contact("b", nil, nil, nil)
	c := contact("c", nil, nil, nil)

	pairs := []ScoredPair{
		scored(a, b, 0.95),
		scored(b, c, 0.78),
	}
	clusters := BuildClusters(pairs, byID(a, b, c), 0.75, 0)
	if len(clusters) != 1 {
		t.Fatalf("expected one cluster, got %d", len(clusters))
	}
	if clusters[0].Confidence != 0.78 {
		t.Fatalf("confidence = %v, want weakest qualifying edge 0.78", clusters[0].Confidence)
	}
}

func TestBuildClustersDropsSingletonsAndSubThreshold(t *testing.T) {
	t.Parallel()
	a := contact("a", nil, nil, nil)
	b := contact("b", nil, nil, nil)

	pairs := []ScoredPair{scored(a, b, 0.5)}
	if clusters := BuildClusters(pairs, byID(a, b), 0.75, 0); len(clusters) != 0 {
		t.Fatalf("sub-threshold pairs must produce no clusters, got %d", len(clusters))
	}
}

func TestBuildClustersMaxSize(t *testing.T) {
	t.Parallel()
	a := contact("a", nil, nil, nil)
	b := contact("b", nil, nil, nil)
	c := contact("c", nil, nil, nil)
	d := contact("d", nil, nil, nil)
	e := contact("e", nil, nil, nil)

	pairs := []ScoredPair{
		scored(a, b, 0.9),
		scored(b, c, 0.9),
		scored(d, e, 0.8),
	}
	clusters := BuildClusters(pairs, byID(a, b, c, d, e), 0.75, 2)
	if len(clusters) != 1 {
		t.Fatalf("oversized cluster must be dropped, got %d clusters", len(clusters))
	}
	if len(clusters[0].Members) != 2 {
		t.Fatalf("surviving cluster size = %d, want 2", len(clusters[0].Members))
	}
}

func TestBuildClustersOrdering(t *testing.T) {
	t.Parallel()
	a := contact("a", nil, nil, nil)
	b := contact("b", nil, nil, nil)
	c := contact("c", nil, nil, nil)
	d := contact("d", nil, nil, nil)

	pairs := []ScoredPair{
		scored(a, b, 0.8),
		scored(c, d, 0.95),
	}
	clusters := BuildClusters(pairs, byID(a, b, c, d), 0.75, 0)
	if len(clusters) != 2 {
		t.Fatalf("expected 2 clusters, got %d", len(clusters))
	}
	if clusters[0].Confidence < clusters[1].Confidence {
		t.Fatal("clusters must be ordered by confidence descending")
	}
}

func TestSuggestPrimaryTieBreaks(t *testing.T) {
	t.Parallel()
	now := time.Now()

	// Completeness wins first.
	sparse := contact("김민수", nil, nil, nil)
	full := contact("김민수", strptr("01012345678"), strptr("a@b.com"), nil)
	sparse.UpdatedAt = now.Add(time.Hour)
	full.UpdatedAt = now
	if got := SuggestPrimary([]*types.Contact{sparse, full}); got != full {
		t.Fatal("more complete record must win")
	}

	// Then recency.
	older := contact("김민수", strptr("01012345678"), nil, nil)
	newer := contact("김민수", strptr("01012345678"), nil, nil)
	older.UpdatedAt = now.Add(-time.Hour)
	newer.UpdatedAt = now
	if got := SuggestPrimary([]*types.Contact{older, newer}); got != newer {
		t.Fatal("more recently updated record must win")
	}

	// Then lowest id, reproducibly.
	x := contact("김민수", nil, nil, nil)
	y := contact("김민수", nil, nil, nil)
	x.UpdatedAt = now
	y.UpdatedAt = now
	want := x
	if y.ID.String() < x.ID.String() {
		want = y
	}
	if got := SuggestPrimary([]*types.Contact{x, y}); got != want {
		t.Fatal("lowest id must win the final tie-break")
	}
	if got := SuggestPrimary([]*types.Contact{y, x}); got != want {
		t.Fatal("tie-break must not depend on input order")
	}
}

func TestClusterIDStableAcrossMemberOrder(t *testing.T) {
	t.Parallel()
	a := contact("a", nil, nil, nil)
	b := contact("b", nil, nil, nil)

	pairs := []ScoredPair{scored(a, b, 0.9)}
	first := BuildClusters(pairs, byID(a, b), 0.75, 0)
	second := BuildClusters([]ScoredPair{scored(b, a, 0.9)}, byID(b, a), 0.75, 0)
	if first[0].ID != second[0].ID {
		t.Fatalf("cluster id unstable: %s vs %s", first[0].ID, second[0].ID)
	}
}

func TestExampleScenarioKoreanContacts(t *testing.T) {
	t.Parallel()
	scorer := NewScorer(DefaultConfig())

	a := contact("김민수", strptr("010-1234-5678"), nil, nil)
	b := contact("김민수", strptr("01012345678"), nil, nil)

	res := scorer.Score(a, b)
	if res.Overall < 0.75 {
		t.Fatalf("example scenario must clear the default threshold, got %v", res.Overall)
	}

	pairs := []ScoredPair{{Pair: makePair(a.ID, b.ID), PerField: res.PerField, Overall: res.Overall}}
	clusters := BuildClusters(pairs, byID(a, b), 0.75, 0)
	if len(clusters) != 1 || len(clusters[0].Members) != 2 {
		t.Fatalf("expected a single cluster of size 2, got %+v", clusters)
	}
}
