package engine

// CanPlaceOnFoundation reports whether card may be placed on a foundation
// currently holding foundationCards (bottom to top). An empty foundation
// accepts only an Ace; otherwise the card must match the top card's suit and
// be exactly one rank higher.
func CanPlaceOnFoundation(card Card, foundationCards []Card) bool {
	if len(foundationCards) == 0 {
		return card.Rank() == RankAce
	}
	top := foundationCards[len(foundationCards)-1]
	return card.Suit() == top.Suit() && card.Rank() == top.Rank()+1
}

// CanPlaceOnTableau reports whether the run cardsToPlace may be placed on a
// tableau currently holding tableauCards. Only the first (bottom) card of
// the run is checked: an empty column accepts only a King; otherwise the
// card must be one rank below the column's top card and of the opposite
// color.
func CanPlaceOnTableau(cardsToPlace, tableauCards []Card) bool {
	if len(cardsToPlace) == 0 {
		return false
	}
	lead := cardsToPlace[0]
	if len(tableauCards) == 0 {
		return lead.Rank() == RankKing
	}
	top := tableauCards[len(tableauCards)-1]
	return top.Rank() == lead.Rank()+1 && top.IsRed() != lead.IsRed()
}

// MovableTableauCards returns the maximal movable suffix of a tableau pile:
// scanning from the end backward, it collects face-up cards that descend by
// exactly one rank with alternating colors, stopping at the first face-down
// card or the first break in the run. The result is in pile order (bottom of
// the run first) and shares no memory with the input.
func MovableTableauCards(pile []Card) []Card {
	n := len(pile)
	if n == 0 {
		return nil
	}
	start := n - 1
	if !pile[start].FaceUp() {
		return nil
	}
	for start > 0 {
		below := pile[start-1]
		cur := pile[start]
		if !below.FaceUp() {
			break
		}
		if below.Rank() != cur.Rank()+1 || below.IsRed() == cur.IsRed() {
			break
		}
		start--
	}
	out := make([]Card, n-start)
	copy(out, pile[start:])
	return out
}
