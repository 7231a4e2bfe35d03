package engine

import "testing"

// TestSafeRuleLowRanks verifies aces and twos are always auto-playable.
func TestSafeRuleLowRanks(t *testing.T) {
	var g GameState
	g.DrawMode = 1
	g.Waste[0] = up(SuitSpades, RankAce)
	g.WasteLen = 1

	moves := FindAutocompleteMoves(&g)
	if len(moves) != 1 {
		t.Fatalf("got %d candidates, want 1", len(moves))
	}
	m := moves[0]
	if m.From != WastePile() || m.To != FoundationPile(SuitSpades) {
		t.Errorf("candidate %s -> %s, want waste -> foundation-s", m.From, m.To)
	}
}

// TestSafeRuleOppositeFoundations verifies a rank >= 3 card is safe only
// when both opposite-color foundations hold at least rank-1.
func TestSafeRuleOppositeFoundations(t *testing.T) {
	var g GameState
	g.DrawMode = 1
	// Spades built to 2; the 3♠ sits on a tableau.
	g.Foundations[SuitSpades][0] = up(SuitSpades, RankAce)
	g.Foundations[SuitSpades][1] = up(SuitSpades, 2)
	g.FoundationLens[SuitSpades] = 2
	g.Tableaus[0][0] = up(SuitSpades, 3)
	g.TableauLens[0] = 1

	// Hearts at 2, diamonds empty: not safe.
	g.Foundations[SuitHearts][0] = up(SuitHearts, RankAce)
	g.Foundations[SuitHearts][1] = up(SuitHearts, 2)
	g.FoundationLens[SuitHearts] = 2
	if moves := FindAutocompleteMoves(&g); len(moves) != 0 {
		t.Errorf("3♠ offered with diamonds foundation empty: %d candidates", len(moves))
	}

	// Diamonds at 2 as well: both red foundations hold rank-1, now safe.
	g.Foundations[SuitDiamonds][0] = up(SuitDiamonds, RankAce)
	g.Foundations[SuitDiamonds][1] = up(SuitDiamonds, 2)
	g.FoundationLens[SuitDiamonds] = 2
	moves := FindAutocompleteMoves(&g)
	if len(moves) != 1 {
		t.Fatalf("got %d candidates, want 1", len(moves))
	}
	if moves[0].Cards[0].ID() != NewCard(SuitSpades, 3).ID() {
		t.Errorf("candidate card = %s, want 3♠", moves[0].Cards[0])
	}
}

// TestAutoCompleteFinishesEndgame verifies the loop drives a finished layout
// all the way to a win.
func TestAutoCompleteFinishesEndgame(t *testing.T) {
	// All foundations at 10; each suit's K,Q,J stacked on its own column so
	// the jacks surface first, then queens, then kings.
	var g GameState
	g.DrawMode = 1
	for s := uint8(0); s < NumFoundations; s++ {
		for r := RankAce; r <= 10; r++ {
			g.Foundations[s][r-1] = up(s, r)
		}
		g.FoundationLens[s] = 10
		g.Tableaus[s][0] = up(s, RankKing)
		g.Tableaus[s][1] = up(s, RankQueen)
		g.Tableaus[s][2] = up(s, RankJack)
		g.TableauLens[s] = 3
	}

	done, applied := AutoComplete(g)
	if !done.IsComplete() {
		t.Fatalf("auto-complete did not finish: %d moves applied\n%s", len(applied), Describe(&done))
	}
	if len(applied) != 12 {
		t.Errorf("applied %d moves, want 12", len(applied))
	}
	if err := done.Validate(); err != nil {
		t.Fatalf("invariants after auto-complete: %v", err)
	}

	// Untouched input.
	if g.IsComplete() {
		t.Error("AutoComplete mutated its input")
	}
}

// TestAutoCompleteStopsWhenNothingSafe verifies the loop terminates quietly
// on a position with no safe candidates.
func TestAutoCompleteStopsWhenNothingSafe(t *testing.T) {
	g := DealNewGame(1, 42)
	out, applied := AutoComplete(g)
	// A fresh deal rarely has safe moves; whatever was applied must be legal
	// and the loop must terminate with a valid state.
	if len(applied) > 7 {
		t.Errorf("suspiciously many auto-moves on a fresh deal: %d", len(applied))
	}
	if err := out.Validate(); err != nil {
		t.Fatalf("invariants after auto-complete: %v", err)
	}
}
