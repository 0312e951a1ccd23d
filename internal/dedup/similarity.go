package dedup

import (
	"strings"

	"github.com/productivityhub/backend/internal/types"
)

type Field string

const (
	FieldName   Field = "name"
	FieldPhone  Field = "phone"
	FieldEmail  Field = "email"
	FieldHandle Field = "messaging_handle"
)

type ScoreResult struct {
	PerField map[Field]float64
	Overall  float64
}

// Scorer computes pairwise contact similarity. It is a pure value:
// no I/O, no state beyond the weight config.
type Scorer struct {
	weights    Weights
	phoneBoost float64
}

// phoneBoostNameFloor is the minimum name similarity required before
// an exact phone match earns the corroboration boost. A shared phone
// alone (family members, office lines) is not identity evidence.
const phoneBoostNameFloor = 0.8

func NewScorer(cfg Config) *Scorer {
	return &Scorer{weights: cfg.Weights, phoneBoost: cfg.PhoneExactBoost}
}

// Score compares two contacts field by field. Every per-field score
// and the overall score are in [0,1], and Score(a,b) == Score(b,a).
func (s *Scorer) Score(a, b *types.Contact) ScoreResult {
	perField := make(map[Field]float64, 4)

	nameScore := nameSimilarity(a.FullName, b.FullName)
	perField[FieldName] = nameScore

	phoneScore := 0.0
	if pa, pb := derefTrim(a.Phone), derefTrim(b.Phone); pa != "" && pb != "" {
		if NormalizePhone(pa) == NormalizePhone(pb) && NormalizePhone(pa) != "" {
			phoneScore = 1.0
		}
	}
	perField[FieldPhone] = phoneScore

	emailScore := 0.0
	if ea, eb := derefTrim(a.Email), derefTrim(b.Email); ea != "" && eb != "" {
		emailScore = emailSimilarity(ea, eb)
	}
	perField[FieldEmail] = emailScore

	handleScore := 0.0
	if ha, hb := derefTrim(a.MessagingHandle), derefTrim(b.MessagingHandle); ha != "" && hb != "" {
		if NormalizeHandle(ha) == NormalizeHandle(hb) {
			handleScore = 1.0
		}
	}
	perField[FieldHandle] = handleScore

	overall := s.weights.Name*nameScore +
		s.weights.Phone*phoneScore +
		s.weights.Email*emailScore +
		s.weights.Handle*handleScore
	// Same normalized phone plus a strong name match identifies the
	// same person even when email and handle are missing on both
	// sides, so the pair must clear the default threshold.
	if phoneScore == 1 && nameScore >= phoneBoostNameFloor {
		overall += s.phoneBoost
	}
	if overall > 1 {
		overall = 1
	}

	return ScoreResult{PerField: perField, Overall: overall}
}

// nameSimilarity compares the sorted token sets of both names with
// Jaro-Winkler, so "민수 김" and "김민수 님" still line up.
func nameSimilarity(a, b string) float64 {
	na, nb := NormalizeName(a), NormalizeName(b)
	if na == "" || nb == "" {
		return 0
	}
	ja := strings.Join(NameTokens(na), " ")
	jb := strings.Join(NameTokens(nb), " ")
	if ja == jb {
		return 1
	}
	return jaroWinkler(ja, jb)
}

// emailSimilarity requires an exact domain match before any score is
// awarded; local parts are fuzzy-matched.
func emailSimilarity(a, b string) float64 {
	la, da, oka := SplitEmail(a)
	lb, db, okb := SplitEmail(b)
	if !oka || !okb || da != db {
		return 0
	}
	if la == lb {
		return 1
	}
	return jaroWinkler(la, lb)
}

func derefTrim(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// jaroWinkler is the standard Jaro similarity with the Winkler prefix
// bonus (scaling 0.1, prefix capped at 4).
func jaroWinkler(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	j := jaro(ra, rb)
	if j == 0 {
		return 0
	}
	prefix := 0
	for i := 0; i < len(ra) && i < len(rb) && i < 4; i++ {
		if ra[i] != rb[i] {
			break
		}
		prefix++
	}
	out := j + float64(prefix)*0.1*(1-j)
	if out > 1 {
		out = 1
	}
	return out
}

func jaro(a, b []rune) float64 {
	la, lb := len(a), len(b)
	if la == 0 || lb == 0 {
		return 0
	}
	window := la
	if lb > la {
		window = lb
	}
	window = window/2 - 1
	if window < 0 {
		window = 0
	}

	matchedA := make([]bool, la)
	matchedB := make([]bool, lb)
	matches := 0
	for i := 0; i < la; i++ {
		lo := i - window
		if lo < 0 {
			lo = 0
		}
		hi := i + window + 1
		if hi > lb {
			hi = lb
		}
		for k := lo; k < hi; k++ {
			if matchedB[k] || a[i] != b[k] {
				continue
			}
			matchedA[i] = true
			matchedB[k] = true
			matches++
			break
		}
	}
	if matches == 0 {
		return 0
	}

	transpositions := 0
	k := 0
	for i := 0; i < la; i++ {
		if !matchedA[i] {
			continue
		}
		for !matchedB[k] {
			k++
		}
		if a[i] != b[k] {
			transpositions++
		}
		k++
	}

	m := float64(matches)
	return (m/float64(la) + m/float64(lb) + (m-float64(transpositions)/2)/m) / 3
}
