package engine

import "testing"

// TestDealShape verifies the triangular layout: columns of sizes 1..7 with
// exactly the last card of each face-up, and a stock of 24 face-down cards.
func TestDealShape(t *testing.T) {
	g := DealNewGame(1, 42)

	for c := 0; c < NumTableaus; c++ {
		want := uint8(c + 1)
		if g.TableauLens[c] != want {
			t.Errorf("tableau %d has %d cards, want %d", c+1, g.TableauLens[c], want)
		}
		for i := uint8(0); i < g.TableauLens[c]; i++ {
			card := g.Tableaus[c][i]
			if i == g.TableauLens[c]-1 {
				if !card.FaceUp() {
					t.Errorf("tableau %d top card %s is face-down", c+1, card.Flipped(true))
				}
			} else if card.FaceUp() {
				t.Errorf("tableau %d card %d is face-up", c+1, i)
			}
		}
	}

	if g.StockLen != StockSize {
		t.Errorf("StockLen = %d, want %d", g.StockLen, StockSize)
	}
	for i := uint8(0); i < g.StockLen; i++ {
		if g.Stock[i].FaceUp() {
			t.Errorf("stock card %d is face-up", i)
		}
	}

	if g.WasteLen != 0 {
		t.Errorf("WasteLen = %d, want 0", g.WasteLen)
	}
	for s := 0; s < NumFoundations; s++ {
		if g.FoundationLens[s] != 0 {
			t.Errorf("foundation %d has %d cards, want 0", s, g.FoundationLens[s])
		}
	}
	if g.Moves != 0 || g.Draws != 0 || g.Score != 0 {
		t.Errorf("counters not zeroed: moves=%d draws=%d score=%d", g.Moves, g.Draws, g.Score)
	}
	if g.IsComplete() {
		t.Error("fresh deal marked complete")
	}
	if g.StartUnix == 0 {
		t.Error("StartUnix not set")
	}

	if err := g.Validate(); err != nil {
		t.Fatalf("fresh deal violates invariants: %v", err)
	}
}

// TestDealDrawModes verifies the draw mode is stored and invalid values fall
// back to draw-1.
func TestDealDrawModes(t *testing.T) {
	if g := DealNewGame(3, 7); g.DrawMode != 3 {
		t.Errorf("DrawMode = %d, want 3", g.DrawMode)
	}
	if g := DealNewGame(1, 7); g.DrawMode != 1 {
		t.Errorf("DrawMode = %d, want 1", g.DrawMode)
	}
	if g := DealNewGame(0, 7); g.DrawMode != 1 {
		t.Errorf("DrawMode = %d for invalid mode, want 1", g.DrawMode)
	}
}

// TestDealDeterministic verifies the same seed reproduces the same deal.
func TestDealDeterministic(t *testing.T) {
	a := DealNewGame(1, 99)
	b := DealNewGame(1, 99)
	if a.Tableaus != b.Tableaus || a.Stock != b.Stock {
		t.Error("same seed produced different deals")
	}
}
