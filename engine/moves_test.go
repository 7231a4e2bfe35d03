package engine

import (
	"errors"
	"testing"
)

// TestApplyMoveWasteToTableau verifies a legal waste move: card relocates,
// move counter increments, score is awarded.
func TestApplyMoveWasteToTableau(t *testing.T) {
	var g GameState
	g.DrawMode = 1
	g.Waste[0] = up(SuitHearts, RankQueen)
	g.WasteLen = 1
	g.Tableaus[0][0] = up(SuitSpades, RankKing)
	g.TableauLens[0] = 1

	next, err := g.ApplyMove(Move{
		From:  WastePile(),
		To:    TableauPile(0),
		Cards: []Card{up(SuitHearts, RankQueen)},
	})
	if err != nil {
		t.Fatalf("ApplyMove: %v", err)
	}
	if next.WasteLen != 0 {
		t.Errorf("WasteLen = %d, want 0", next.WasteLen)
	}
	if next.TableauLens[0] != 2 {
		t.Fatalf("TableauLens[0] = %d, want 2", next.TableauLens[0])
	}
	if got := next.Tableaus[0][1]; got.ID() != NewCard(SuitHearts, RankQueen).ID() || !got.FaceUp() {
		t.Errorf("tableau top = %s, want Q♥ face-up", got)
	}
	if next.Moves != 1 {
		t.Errorf("Moves = %d, want 1", next.Moves)
	}
	if next.Score != 5 {
		t.Errorf("Score = %d, want 5", next.Score)
	}

	// Original state is untouched.
	if g.WasteLen != 1 || g.Moves != 0 {
		t.Error("ApplyMove mutated its receiver")
	}
}

// TestApplyMoveRejection verifies an illegal move reports a typed failure
// and leaves the state exactly as it was.
func TestApplyMoveRejection(t *testing.T) {
	g := DealNewGame(1, 42)
	before := g

	// Stock can never be a move source.
	_, err := g.ApplyMove(Move{
		From:  StockPile(),
		To:    TableauPile(0),
		Cards: []Card{g.Stock[g.StockLen-1]},
	})
	if !errors.Is(err, ErrInvalidMove) {
		t.Errorf("stock move: err = %v, want ErrInvalidMove", err)
	}

	// Cards that are not the pile's top.
	_, err = g.ApplyMove(Move{
		From:  TableauPile(6),
		To:    TableauPile(0),
		Cards: []Card{g.Tableaus[6][0]},
	})
	if !errors.Is(err, ErrInvalidMove) {
		t.Errorf("buried-card move: err = %v, want ErrInvalidMove", err)
	}

	// Non-ace to an empty foundation.
	top := g.Tableaus[0][0]
	if top.Rank() != RankAce {
		_, err = g.ApplyMove(Move{
			From:  TableauPile(0),
			To:    FoundationPile(top.Suit()),
			Cards: []Card{top},
		})
		if !errors.Is(err, ErrInvalidMove) {
			t.Errorf("non-ace foundation move: err = %v, want ErrInvalidMove", err)
		}
	}

	if g != before {
		t.Fatal("rejected moves modified the state")
	}
}

// TestApplyMoveFlipsExposedCard verifies the face-down card under a moved
// run is flipped face-up (and scored).
func TestApplyMoveFlipsExposedCard(t *testing.T) {
	var g GameState
	g.DrawMode = 1
	g.Tableaus[0][0] = down(SuitDiamonds, 7)
	g.Tableaus[0][1] = up(SuitSpades, 5)
	g.TableauLens[0] = 2
	g.Tableaus[1][0] = up(SuitHearts, 6)
	g.TableauLens[1] = 1

	next, err := g.ApplyMove(Move{
		From:  TableauPile(0),
		To:    TableauPile(1),
		Cards: []Card{up(SuitSpades, 5)},
	})
	if err != nil {
		t.Fatalf("ApplyMove: %v", err)
	}
	if !next.Tableaus[0][0].FaceUp() {
		t.Error("exposed card was not flipped face-up")
	}
	if next.Score != 5 {
		t.Errorf("Score = %d, want 5 for the flip", next.Score)
	}
}

// TestApplyMoveFoundationRules verifies single-card foundation placement and
// the suit-matched foundation index.
func TestApplyMoveFoundationRules(t *testing.T) {
	var g GameState
	g.DrawMode = 1
	g.Tableaus[0][0] = up(SuitHearts, RankAce)
	g.TableauLens[0] = 1

	// Wrong foundation for the suit.
	_, err := g.ApplyMove(Move{
		From:  TableauPile(0),
		To:    FoundationPile(SuitSpades),
		Cards: []Card{up(SuitHearts, RankAce)},
	})
	if !errors.Is(err, ErrInvalidMove) {
		t.Errorf("cross-suit foundation: err = %v, want ErrInvalidMove", err)
	}

	next, err := g.ApplyMove(Move{
		From:  TableauPile(0),
		To:    FoundationPile(SuitHearts),
		Cards: []Card{up(SuitHearts, RankAce)},
	})
	if err != nil {
		t.Fatalf("ace to foundation: %v", err)
	}
	if next.FoundationLens[SuitHearts] != 1 {
		t.Errorf("FoundationLens[h] = %d, want 1", next.FoundationLens[SuitHearts])
	}
	if next.Score != 10 {
		t.Errorf("Score = %d, want 10", next.Score)
	}
}

// TestDrawFromStock verifies draw-1 and draw-3 semantics, the separate draw
// counter, and that moves are not counted.
func TestDrawFromStock(t *testing.T) {
	g := DealNewGame(3, 42)

	next := g.DrawFromStock()
	if next.WasteLen != 3 {
		t.Errorf("WasteLen = %d, want 3", next.WasteLen)
	}
	if next.StockLen != StockSize-3 {
		t.Errorf("StockLen = %d, want %d", next.StockLen, StockSize-3)
	}
	for i := uint8(0); i < next.WasteLen; i++ {
		if !next.Waste[i].FaceUp() {
			t.Errorf("waste card %d is face-down", i)
		}
	}
	if next.Draws != 1 {
		t.Errorf("Draws = %d, want 1", next.Draws)
	}
	if next.Moves != 0 {
		t.Errorf("Moves = %d, want 0: draws are not moves", next.Moves)
	}

	// The first drawn card sits beneath the later ones: drawing preserves
	// stock order within the drawn group.
	first := g.Stock[g.StockLen-1]
	if next.Waste[0].ID() != first.ID() {
		t.Errorf("Waste[0] = %s, want first drawn %s", next.Waste[0], first.Flipped(true))
	}

	// Short draw: 2 cards left in draw-3 mode draws both.
	short := g
	short.StockLen = 2
	short = short.DrawFromStock()
	if short.WasteLen != 2 || short.StockLen != 0 {
		t.Errorf("short draw: waste=%d stock=%d, want 2/0", short.WasteLen, short.StockLen)
	}

	if err := next.Validate(); err != nil {
		t.Fatalf("invariants after draw: %v", err)
	}
}

// TestStockRecycle: with draw-1, drawing until the
// stock empties and then once more recycles the waste into the stock,
// reversed and face-down, leaving the waste empty.
func TestStockRecycle(t *testing.T) {
	g := DealNewGame(1, 42)

	for g.StockLen > 0 {
		g = g.DrawFromStock()
	}
	if g.WasteLen != StockSize {
		t.Fatalf("WasteLen = %d after exhausting stock, want %d", g.WasteLen, StockSize)
	}
	wasteBefore := g.Waste
	wasteLen := g.WasteLen

	g = g.DrawFromStock()

	if g.StockLen != wasteLen {
		t.Errorf("StockLen = %d after recycle, want %d", g.StockLen, wasteLen)
	}
	if g.WasteLen != 0 {
		t.Errorf("WasteLen = %d after recycle, want 0", g.WasteLen)
	}
	for i := uint8(0); i < g.StockLen; i++ {
		if g.Stock[i].FaceUp() {
			t.Errorf("recycled stock card %d is face-up", i)
		}
		// Reversed: stock bottom-to-top mirrors waste top-to-bottom.
		want := wasteBefore[wasteLen-1-i]
		if g.Stock[i].ID() != want.ID() {
			t.Errorf("Stock[%d] = %s, want %s", i, g.Stock[i].Flipped(true), want)
		}
	}

	// The draw cycle repeats in the same order after a recycle.
	again := g.DrawFromStock()
	if again.Waste[0].ID() != wasteBefore[0].ID() {
		t.Errorf("first card after recycle = %s, want %s",
			again.Waste[0], wasteBefore[0])
	}

	// Drawing with both piles empty is a no-op.
	var empty GameState
	empty.DrawMode = 1
	if out := empty.DrawFromStock(); out.StockLen != 0 || out.WasteLen != 0 {
		t.Error("draw on empty stock and waste changed pile sizes")
	}

	if err := g.Validate(); err != nil {
		t.Fatalf("invariants after recycle: %v", err)
	}
}

// TestCardConservation runs a scripted mix of draws and safe foundation
// moves and checks the 52-identity multiset never drifts.
func TestCardConservation(t *testing.T) {
	for _, seed := range []uint64{1, 7, 42, 12345} {
		g := DealNewGame(1, seed)
		for step := 0; step < 200; step++ {
			if moves := FindAutocompleteMoves(&g); len(moves) > 0 {
				next, err := g.ApplyMove(moves[0])
				if err != nil {
					t.Fatalf("seed %d step %d: safe move rejected: %v", seed, step, err)
				}
				g = next
			} else {
				g = g.DrawFromStock()
			}
			if err := g.Validate(); err != nil {
				t.Fatalf("seed %d step %d: %v", seed, step, err)
			}
		}
	}
}

// TestCompletionDetection verifies IsComplete flips when the 52nd card lands.
func TestCompletionDetection(t *testing.T) {
	g := nearlyWonState()
	if g.IsComplete() {
		t.Fatal("state with 51 foundation cards marked complete")
	}

	next, err := g.ApplyMove(Move{
		From:  TableauPile(0),
		To:    FoundationPile(SuitClubs),
		Cards: []Card{up(SuitClubs, RankKing)},
	})
	if err != nil {
		t.Fatalf("final move rejected: %v", err)
	}
	if !next.IsComplete() {
		t.Error("IsComplete = false after all 52 cards placed")
	}
	if !IsGameComplete(&next) {
		t.Error("IsGameComplete = false after all 52 cards placed")
	}
	if err := next.Validate(); err != nil {
		t.Fatalf("invariants on won state: %v", err)
	}
}

// nearlyWonState builds a legal position with 51 cards on the foundations
// and the K♣ alone on tableau 1.
func nearlyWonState() GameState {
	var g GameState
	g.DrawMode = 1
	for s := uint8(0); s < NumFoundations; s++ {
		top := RankKing
		if s == SuitClubs {
			top = RankQueen
		}
		for r := RankAce; r <= top; r++ {
			g.Foundations[s][r-1] = up(s, r)
		}
		g.FoundationLens[s] = top
	}
	g.Tableaus[0][0] = up(SuitClubs, RankKing)
	g.TableauLens[0] = 1
	return g
}

// TestApplyMoveRejectsOverfullTableau: a column already holding its maximum
// of 19 cards cannot accept more, even when its top card would legally take
// the incoming run.
func TestApplyMoveRejectsOverfullTableau(t *testing.T) {
	var g GameState
	g.DrawMode = 1
	i := 0
	for rank := RankAce; rank <= RankKing; rank++ {
		g.Tableaus[0][i] = down(SuitDiamonds, rank)
		i++
	}
	for rank := RankAce; rank <= 5; rank++ {
		g.Tableaus[0][i] = down(SuitSpades, rank)
		i++
	}
	g.Tableaus[0][i] = up(SuitClubs, 2)
	g.TableauLens[0] = uint8(i + 1)
	g.Waste[0] = up(SuitHearts, RankAce)
	g.WasteLen = 1

	next, err := g.ApplyMove(Move{
		From:  WastePile(),
		To:    TableauPile(0),
		Cards: []Card{up(SuitHearts, RankAce)},
	})
	if !errors.Is(err, ErrInvalidMove) {
		t.Fatalf("err = %v, want ErrInvalidMove", err)
	}
	if next != g {
		t.Error("rejected move altered the state")
	}
	if next.TableauLens[0] != 19 {
		t.Errorf("TableauLens[0] = %d, want 19", next.TableauLens[0])
	}
}
