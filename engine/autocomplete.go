package engine

import "time"

// autoCompleteCap bounds the auto-complete loop. 52 placements finish any
// game, so hitting the cap means candidate generation misbehaved.
const autoCompleteCap = DeckSize

// isSafeAutoMove reports whether sending card to its foundation can never
// block a later tableau placement. Aces and twos are always safe; a card of
// rank r >= 3 is safe only when both opposite-color foundations already hold
// at least r-1, so no opposite-color card of rank r-1 still needs this card
// as a tableau base.
func isSafeAutoMove(g *GameState, card Card) bool {
	rank := card.Rank()
	if rank <= 2 {
		return true
	}
	for s := uint8(0); s < NumFoundations; s++ {
		red := s == SuitHearts || s == SuitDiamonds
		if red == card.IsRed() {
			continue
		}
		if g.FoundationLens[s] < rank-1 {
			return false
		}
	}
	return true
}

// FindAutocompleteMoves scans the waste top and each tableau top for cards
// that can legally and safely go to their suit's foundation, returning the
// candidate moves in scan order (waste first, then tableaus 1..7).
func FindAutocompleteMoves(g *GameState) []Move {
	var out []Move
	now := time.Now().UnixMilli()

	consider := func(from PileID, card Card) {
		if !card.FaceUp() {
			return
		}
		suit := card.Suit()
		if !CanPlaceOnFoundation(card, g.pile(FoundationPile(suit))) {
			return
		}
		if !isSafeAutoMove(g, card) {
			return
		}
		out = append(out, Move{
			From:      from,
			To:        FoundationPile(suit),
			Cards:     []Card{card},
			Timestamp: now,
		})
	}

	if g.WasteLen > 0 {
		consider(WastePile(), g.Waste[g.WasteLen-1])
	}
	for t := uint8(0); t < NumTableaus; t++ {
		if g.TableauLens[t] > 0 {
			consider(TableauPile(t), g.Tableaus[t][g.TableauLens[t]-1])
		}
	}
	return out
}

// AutoComplete repeatedly applies the first safe foundation move until no
// candidate remains or the safety cap is hit. It returns the resulting state
// and the moves applied, in order. The result may or may not be complete,
// but it is never incorrect: an unexpected rejection ends the loop quietly.
func AutoComplete(g GameState) (GameState, []Move) {
	var applied []Move
	for i := 0; i < autoCompleteCap; i++ {
		candidates := FindAutocompleteMoves(&g)
		if len(candidates) == 0 {
			break
		}
		next, err := g.ApplyMove(candidates[0])
		if err != nil {
			break
		}
		g = next
		applied = append(applied, candidates[0])
	}
	return g, applied
}
