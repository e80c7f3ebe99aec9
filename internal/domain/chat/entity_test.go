package chat

import (
	"testing"

	"github.com/google/uuid"
)

func TestPairKeySymmetric(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	if PairKey(a, b) != PairKey(b, a) {
		t.Fatalf("pair key not symmetric: %q vs %q", PairKey(a, b), PairKey(b, a))
	}
}

func TestPairKeyOrdersIDs(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	b := uuid.MustParse("00000000-0000-0000-0000-000000000002")

	want := a.String() + ":" + b.String()
	if got := PairKey(b, a); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestPairKeyDistinctPairs(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	c := uuid.New()

	if PairKey(a, b) == PairKey(a, c) {
		t.Error("different pairs produced the same key")
	}
}
