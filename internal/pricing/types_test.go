package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseCodeList(t *testing.T) {
	got := ParseCodeList(" alpha, beta ;GAMMA,,;")
	want := []string{"ALPHA", "BETA", "GAMMA"}
	if len(got) != len(want) {
		t.Fatalf("ParseCodeList returned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ParseCodeList returned %v, want %v", got, want)
		}
	}
}

func TestLineSubtotal(t *testing.T) {
	product := Product{ID: "P1", CasePrice: 120000, PiecesPerCase: 12}

	if got := LineSubtotal(product, CartLine{ProductID: "P1", CaseQty: 3}); got != 360000 {
		t.Fatalf("case-only subtotal = %d, want 360000", got)
	}
	// 6 pieces are half a case.
	if got := LineSubtotal(product, CartLine{ProductID: "P1", CaseQty: 1, PieceQty: 6}); got != 180000 {
		t.Fatalf("mixed subtotal = %d, want 180000", got)
	}
	if got := LineSubtotal(product, CartLine{ProductID: "P1", CaseQty: -2, PieceQty: -5}); got != 0 {
		t.Fatalf("negative quantities must clamp to zero, got %d", got)
	}
}

func TestLineQuantityUnits(t *testing.T) {
	product := Product{ID: "P1", CasePrice: 100000, PiecesPerCase: 10}
	line := CartLine{ProductID: "P1", CaseQty: 1, PieceQty: 5}

	pieces := LineQuantity(product, line, UnitPiece)
	if !pieces.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("piece quantity = %s, want 15", pieces)
	}

	// Leftover pieces convert to a fractional case count.
	cases := LineQuantity(product, line, UnitCase)
	if !cases.Equal(decimal.NewFromFloat(1.5)) {
		t.Fatalf("case quantity = %s, want 1.5", cases)
	}
}
