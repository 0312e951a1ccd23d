package dedup

import (
	"testing"

	"github.com/google/uuid"

	"github.com/productivityhub/backend/internal/types"
)

func strptr(s string) *string { return &s }

func contact(name string, phone, email, handle *string) *types.Contact {
	return &types.Contact{
		ID:              uuid.New(),
		TenantID:        uuid.New(),
		FullName:        name,
		Phone:           phone,
		Email:           email,
		MessagingHandle: handle,
	}
}

func TestScoreSymmetryAndBounds(t *testing.T) {
	t.Parallel()
	scorer := NewScorer(DefaultConfig())

	pairs := [][2]*types.Contact{
		{contact("김민수", strptr("010-1234-5678"), nil, nil), contact("김민수", strptr("01012345678"), nil, nil)},
		{contact("Kim Minsu", nil, strptr("minsu@example.com"), nil), contact("Minsu Kim", nil, strptr("min.su@example.com"), nil)},
		{contact("이영희", strptr("010-9999-0000"), strptr("yh@naver.com"), strptr("YoungHee")), contact("박철수", nil, nil, nil)},
		{contact("", nil, nil, nil), contact("", nil, nil, nil)},
	}
	for _, p := range pairs {
		ab := scorer.Score(p[0], p[1])
		ba := scorer.Score(p[1], p[0])
		if ab.Overall != ba.Overall {
			t.Errorf("asymmetric overall: %v vs %v", ab.Overall, ba.Overall)
		}
		if ab.Overall < 0 || ab.Overall > 1 {
			t.Errorf("overall out of bounds: %v", ab.Overall)
		}
		for f, v := range ab.PerField {
			if v < 0 || v > 1 {
				t.Errorf("field %s out of bounds: %v", f, v)
			}
			if ba.PerField[f] != v {
				t.Errorf("field %s asymmetric: %v vs %v", f, v, ba.PerField[f])
			}
		}
	}
}

func TestScorePhoneExactAfterNormalization(t *testing.T) {
	t.Parallel()
	scorer := NewScorer(DefaultConfig())

	a := contact("김민수", strptr("010-1234-5678"), nil, nil)
	b := contact("김민수", strptr("+82 10-1234-5678"), nil, nil)
	res := scorer.Score(a, b)
	if res.PerField[FieldPhone] != 1.0 {
		t.Fatalf("normalized phones must match exactly, got %v", res.PerField[FieldPhone])
	}
	if res.PerField[FieldName] != 1.0 {
		t.Fatalf("identical names must score 1.0, got %v", res.PerField[FieldName])
	}
	// name 0.4 + phone 0.3 + the exact-phone boost 0.1; email and
	// handle are missing and not renormalized
	if res.Overall < 0.79 || res.Overall > 0.81 {
		t.Fatalf("overall = %v, want 0.8", res.Overall)
	}

	c := contact("김민수", strptr("010-1234-5679"), nil, nil)
	if got := scorer.Score(a, c).PerField[FieldPhone]; got != 0.0 {
		t.Fatalf("different phones must score 0, got %v", got)
	}
}

func TestScorePhoneBoostRequiresNameAgreement(t *testing.T) {
	t.Parallel()
	scorer := NewScorer(DefaultConfig())

	// A shared phone with an unrelated name gets no boost: the pair
	// scores the plain weighted sum and stays below the threshold.
	a := contact("김민수", strptr("010-1234-5678"), nil, nil)
	b := contact("박서준", strptr("010-1234-5678"), nil, nil)
	res := scorer.Score(a, b)
	if res.PerField[FieldPhone] != 1.0 {
		t.Fatalf("normalized phones must match exactly, got %v", res.PerField[FieldPhone])
	}
	want := 0.4*res.PerField[FieldName] + 0.3
	if diff := res.Overall - want; diff < -0.001 || diff > 0.001 {
		t.Fatalf("overall = %v, want unboosted %v", res.Overall, want)
	}
}

func TestScoreMissingFieldsNotRenormalized(t *testing.T) {
	t.Parallel()
	scorer := NewScorer(DefaultConfig())

	// Only names present and identical: overall is the name weight,
	// not 1.0. Sparse records are penalized on purpose.
	a := contact("김민수", nil, nil, nil)
	b := contact("김민수", nil, nil, nil)
	res := scorer.Score(a, b)
	if res.Overall < 0.39 || res.Overall > 0.41 {
		t.Fatalf("overall = %v, want name weight 0.4", res.Overall)
	}
}

func TestScoreEmailDomainGate(t *testing.T) {
	t.Parallel()
	scorer := NewScorer(DefaultConfig())

	a := contact("x", nil, strptr("minsu@example.com"), nil)
	b := contact("x", nil, strptr("minsu@other.com"), nil)
	if got := scorer.Score(a, b).PerField[FieldEmail]; got != 0 {
		t.Fatalf("different domains must score 0, got %v", got)
	}

	c := contact("x", nil, strptr("min.su@example.com"), nil)
	if got := scorer.Score(a, c).PerField[FieldEmail]; got <= 0.7 || got >= 1 {
		t.Fatalf("same-domain fuzzy local should land in (0.7,1), got %v", got)
	}
}

func TestScoreHandleCaseInsensitive(t *testing.T) {
	t.Parallel()
	scorer := NewScorer(DefaultConfig())

	a := contact("x", nil, nil, strptr("MinSu_Kakao"))
	b := contact("x", nil, nil, strptr("minsu_kakao"))
	if got := scorer.Score(a, b).PerField[FieldHandle]; got != 1.0 {
		t.Fatalf("handles must match case-insensitively, got %v", got)
	}
	c := contact("x", nil, nil, strptr("minsu_kakao2"))
	if got := scorer.Score(a, c).PerField[FieldHandle]; got != 0.0 {
		t.Fatalf("handles are exact-match only, got %v", got)
	}
}

func TestJaroWinkler(t *testing.T) {
	t.Parallel()
	if got := jaroWinkler("minsu", "minsu"); got != 1 {
		t.Fatalf("identical strings = %v, want 1", got)
	}
	if got := jaroWinkler("minsu", "xyzzy"); got > 0.5 {
		t.Fatalf("unrelated strings = %v, want low", got)
	}
	closer := jaroWinkler("minsu", "minsoo")
	farther := jaroWinkler("minsu", "nimsu")
	if closer <= farther {
		t.Fatalf("prefix bonus missing: %v <= %v", closer, farther)
	}
}
