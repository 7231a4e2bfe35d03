package engine

import "fmt"

// Validate checks the structural invariants that must hold after every
// transition. A non-nil error here means a programming error, not a bad
// move: exactly 52 distinct card identities across all piles, foundations
// same-suit and strictly sequential from Ace, tableau face-down cards only
// as a prefix, and the face-up suffix a strict alternating-color descending
// run.
func (g *GameState) Validate() error {
	var seen [64]bool
	total := 0
	count := func(pile []Card, where string) error {
		for _, c := range pile {
			if c.Rank() < RankAce || c.Rank() > RankKing {
				return fmt.Errorf("%s: malformed card 0x%02x", where, uint8(c))
			}
			if seen[c.ID()] {
				return fmt.Errorf("%s: duplicate card %s", where, c.Flipped(true))
			}
			seen[c.ID()] = true
			total++
		}
		return nil
	}

	if err := count(g.Stock[:g.StockLen], "stock"); err != nil {
		return err
	}
	if err := count(g.Waste[:g.WasteLen], "waste"); err != nil {
		return err
	}
	// Stock and waste share the 24 undealt cards; their joint size caps the
	// arrays a recycle or draw writes into.
	if int(g.StockLen)+int(g.WasteLen) > StockSize {
		return fmt.Errorf("stock+waste hold %d cards, cap %d", int(g.StockLen)+int(g.WasteLen), StockSize)
	}
	for _, c := range g.Stock[:g.StockLen] {
		if c.FaceUp() {
			return fmt.Errorf("stock: %s is face-up", c)
		}
	}
	for _, c := range g.Waste[:g.WasteLen] {
		if !c.FaceUp() {
			return fmt.Errorf("waste: %s is face-down", c.Flipped(true))
		}
	}

	for s := uint8(0); s < NumFoundations; s++ {
		pile := g.Foundations[s][:g.FoundationLens[s]]
		if err := count(pile, "foundation"); err != nil {
			return err
		}
		for i, c := range pile {
			if c.Suit() != s {
				return fmt.Errorf("foundation %s: wrong-suit card %s", suitLetters[s], c)
			}
			if c.Rank() != uint8(i)+1 {
				return fmt.Errorf("foundation %s: rank %d at height %d", suitLetters[s], c.Rank(), i)
			}
		}
	}

	for t := 0; t < NumTableaus; t++ {
		pile := g.Tableaus[t][:g.TableauLens[t]]
		if err := count(pile, fmt.Sprintf("tableau %d", t+1)); err != nil {
			return err
		}
		upSeen := false
		for i, c := range pile {
			if c.FaceUp() {
				upSeen = true
				continue
			}
			if upSeen {
				return fmt.Errorf("tableau %d: face-down card above face-up at %d", t+1, i)
			}
		}
		for i := 1; i < len(pile); i++ {
			below, cur := pile[i-1], pile[i]
			if !below.FaceUp() || !cur.FaceUp() {
				continue
			}
			if below.Rank() != cur.Rank()+1 || below.IsRed() == cur.IsRed() {
				return fmt.Errorf("tableau %d: broken run %s on %s", t+1, cur, below)
			}
		}
	}

	if total != DeckSize {
		return fmt.Errorf("card conservation violated: %d cards, want %d", total, DeckSize)
	}
	if g.IsComplete() != (g.FoundationCount() == DeckSize) {
		return fmt.Errorf("completion flag out of sync")
	}
	return nil
}
