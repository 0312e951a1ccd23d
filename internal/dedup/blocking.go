package dedup

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/productivityhub/backend/internal/pkg/errors"
	"github.com/productivityhub/backend/internal/types"
)

// Block key namespaces keep a phone suffix from ever colliding with a
// soundex code or email prefix.
const (
	blockPrefixPhone = "p:"
	blockPrefixEmail = "e:"
	blockPrefixName  = "n:"
)

// Pair is an unordered candidate pair of contact IDs. A always sorts
// before B so a pair has one canonical form.
type Pair struct {
	A uuid.UUID
	B uuid.UUID
}

func makePair(x, y uuid.UUID) Pair {
	if strings.Compare(x.String(), y.String()) > 0 {
		x, y = y, x
	}
	return Pair{A: x, B: y}
}

// BuildBlocks buckets contacts into phone, email, and name blocks. A
// contact can land in up to three blocks; a contact with no usable
// value for a block type is excluded from that type rather than
// placed in a wildcard bucket.
func BuildBlocks(contacts []*types.Contact) map[string][]uuid.UUID {
	blocks := make(map[string][]uuid.UUID)
	for _, c := range contacts {
		if p := derefTrim(c.Phone); p != "" {
			if key := PhoneBlockKey(NormalizePhone(p)); key != "" {
				blocks[blockPrefixPhone+key] = append(blocks[blockPrefixPhone+key], c.ID)
			}
		}
		if e := derefTrim(c.Email); e != "" {
			if local, domain, ok := SplitEmail(e); ok {
				key := EmailBlockKey(local, domain)
				blocks[blockPrefixEmail+key] = append(blocks[blockPrefixEmail+key], c.ID)
			}
		}
		if key := NameBlockKey(NormalizeName(c.FullName)); key != "" {
			blocks[blockPrefixName+key] = append(blocks[blockPrefixName+key], c.ID)
		}
	}
	return blocks
}

// CandidatePairs expands blocks into the deduplicated set of pairs to
// score. A pair sharing several blocks is emitted once. When the pair
// count crosses maxPairs the whole preview fails fast instead of
// silently degrading.
func CandidatePairs(blocks map[string][]uuid.UUID, maxPairs int) ([]Pair, error) {
	seen := make(map[Pair]struct{})
	pairs := make([]Pair, 0)

	keys := make([]string, 0, len(blocks))
	for k := range blocks {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		members := blocks[key]
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				p := makePair(members[i], members[j])
				if p.A == p.B {
					continue
				}
				if _, ok := seen[p]; ok {
					continue
				}
				seen[p] = struct{}{}
				pairs = append(pairs, p)
				if len(pairs) > maxPairs {
					return nil, fmt.Errorf("%w: over %d candidate pairs", apperrors.ErrDatasetTooLarge, maxPairs)
				}
			}
		}
	}
	return pairs, nil
}
