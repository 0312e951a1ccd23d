package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/productivityhub/backend/internal/types"
)

// ScoredPair is a candidate pair with its similarity verdict.
type ScoredPair struct {
	Pair
	PerField map[Field]float64
	Overall  float64
}

// Cluster is a transitively connected duplicate group. Confidence is
// the minimum overall score among the edges that connected it: the
// group is only as trustworthy as its weakest confirmed link.
type Cluster struct {
	ID                 string
	Members            []*types.Contact
	SuggestedPrimaryID uuid.UUID
	Confidence         float64
}

// disjointSet is an arena-indexed union-find with path compression
// and union by rank. Contacts are mapped to dense ints up front so
// the parent array never touches UUIDs.
type disjointSet struct {
	parent []int
	rank   []int
}

func newDisjointSet(n int) *disjointSet {
	ds := &disjointSet{parent: make([]int, n), rank: make([]int, n)}
	for i := range ds.parent {
		ds.parent[i] = i
	}
	return ds
}

func (ds *disjointSet) find(x int) int {
	for ds.parent[x] != x {
		ds.parent[x] = ds.parent[ds.parent[x]]
		x = ds.parent[x]
	}
	return x
}

func (ds *disjointSet) union(x, y int) {
	rx, ry := ds.find(x), ds.find(y)
	if rx == ry {
		return
	}
	if ds.rank[rx] < ds.rank[ry] {
		rx, ry = ry, rx
	}
	ds.parent[ry] = rx
	if ds.rank[rx] == ds.rank[ry] {
		ds.rank[rx]++
	}
}

// BuildClusters unions every pair at or above minScore and emits the
// resulting groups of size >= 2, ordered by confidence descending
// then size descending. maxClusterSize > 0 drops groups that grew
// beyond it; a bucket that large is almost always a blocking artifact
// and too dangerous to merge wholesale.
func BuildClusters(pairs []ScoredPair, contactsByID map[uuid.UUID]*types.Contact, minScore float64, maxClusterSize int) []Cluster {
	qualifying := make([]ScoredPair, 0, len(pairs))
	for _, p := range pairs {
		if p.Overall >= minScore {
			qualifying = append(qualifying, p)
		}
	}
	if len(qualifying) == 0 {
		return nil
	}

	// Dense index over the contacts that appear in a qualifying pair.
	index := make(map[uuid.UUID]int)
	ids := make([]uuid.UUID, 0, len(qualifying)*2)
	idx := func(id uuid.UUID) int {
		if i, ok := index[id]; ok {
			return i
		}
		i := len(ids)
		index[id] = i
		ids = append(ids, id)
		return i
	}

	for _, p := range qualifying {
		idx(p.A)
		idx(p.B)
	}
	ds := newDisjointSet(len(ids))
	for _, p := range qualifying {
		ds.union(index[p.A], index[p.B])
	}

	memberRoots := make(map[int][]uuid.UUID)
	for id, i := range index {
		root := ds.find(i)
		memberRoots[root] = append(memberRoots[root], id)
	}

	// Confidence per root: min over connecting edges.
	confidence := make(map[int]float64)
	for _, p := range qualifying {
		root := ds.find(index[p.A])
		if cur, ok := confidence[root]; !ok || p.Overall < cur {
			confidence[root] = p.Overall
		}
	}

	clusters := make([]Cluster, 0, len(memberRoots))
	for root, memberIDs := range memberRoots {
		if len(memberIDs) < 2 {
			continue
		}
		if maxClusterSize > 0 && len(memberIDs) > maxClusterSize {
			continue
		}
		members := make([]*types.Contact, 0, len(memberIDs))
		for _, id := range memberIDs {
			if c, ok := contactsByID[id]; ok {
				members = append(members, c)
			}
		}
		if len(members) < 2 {
			continue
		}
		sort.Slice(members, func(i, j int) bool {
			return members[i].ID.String() < members[j].ID.String()
		})
		clusters = append(clusters, Cluster{
			ID:                 clusterID(members),
			Members:            members,
			SuggestedPrimaryID: SuggestPrimary(members).ID,
			Confidence:         confidence[root],
		})
	}

	sort.Slice(clusters, func(i, j int) bool {
		if clusters[i].Confidence != clusters[j].Confidence {
			return clusters[i].Confidence > clusters[j].Confidence
		}
		if len(clusters[i].Members) != len(clusters[j].Members) {
			return len(clusters[i].Members) > len(clusters[j].Members)
		}
		return clusters[i].ID < clusters[j].ID
	})
	return clusters
}

// SuggestPrimary picks the merge survivor: most complete record, then
// most recently updated, then lowest id so results are reproducible.
func SuggestPrimary(members []*types.Contact) *types.Contact {
	best := members[0]
	for _, c := range members[1:] {
		if primaryLess(best, c) {
			best = c
		}
	}
	return best
}

// primaryLess reports whether b outranks a as survivor.
func primaryLess(a, b *types.Contact) bool {
	if ca, cb := a.FieldCount(), b.FieldCount(); ca != cb {
		return cb > ca
	}
	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		return b.UpdatedAt.After(a.UpdatedAt)
	}
	return b.ID.String() < a.ID.String()
}

// SortByPriority orders contacts best-survivor-first, the same order
// used when choosing which duplicate donates a fill-forward value.
func SortByPriority(contacts []*types.Contact) {
	sort.Slice(contacts, func(i, j int) bool {
		return primaryLess(contacts[j], contacts[i])
	})
}

// clusterID hashes the sorted member ids so the same group always
// carries the same id across previews.
func clusterID(members []*types.Contact) string {
	idStrs := make([]string, len(members))
	for i, m := range members {
		idStrs[i] = m.ID.String()
	}
	sum := sha256.Sum256([]byte(strings.Join(idStrs, ",")))
	return hex.EncodeToString(sum[:])[:16]
}
