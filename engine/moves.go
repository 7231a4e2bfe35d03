package engine

import (
	"errors"
	"fmt"
)

// ErrInvalidMove is the sentinel wrapped by every move-rejection error.
// Rejections are expected outcomes: the input state is never modified.
var ErrInvalidMove = errors.New("invalid move")

// ValidateMove checks a move against the rules without applying it.
// It verifies the moved cards are exactly the trailing cards of the source
// pile (by identity), that they are all face-up, that tableau sources only
// give up a legal movable sequence, and that the destination predicate
// accepts them. Stock is never a valid source or destination here; draws
// flow through DrawFromStock.
func (g *GameState) ValidateMove(m Move) error {
	if len(m.Cards) == 0 {
		return fmt.Errorf("%w: no cards", ErrInvalidMove)
	}
	switch m.From.Kind {
	case PileStock:
		return fmt.Errorf("%w: stock cards leave via draw, not moves", ErrInvalidMove)
	case PileWaste, PileFoundation:
		if len(m.Cards) != 1 {
			return fmt.Errorf("%w: %s moves are single-card", ErrInvalidMove, m.From.Kind)
		}
	case PileTableau:
		if m.From.Index >= NumTableaus {
			return fmt.Errorf("%w: tableau index %d out of range", ErrInvalidMove, m.From.Index)
		}
	}
	if m.From.Kind == PileFoundation && m.From.Index >= NumFoundations {
		return fmt.Errorf("%w: foundation index %d out of range", ErrInvalidMove, m.From.Index)
	}

	src := g.pile(m.From)
	if len(m.Cards) > len(src) {
		return fmt.Errorf("%w: source pile has %d cards, move wants %d", ErrInvalidMove, len(src), len(m.Cards))
	}
	tail := src[len(src)-len(m.Cards):]
	for i, c := range m.Cards {
		if c.ID() != tail[i].ID() {
			return fmt.Errorf("%w: cards are not the top of %s", ErrInvalidMove, m.From)
		}
		if !tail[i].FaceUp() {
			return fmt.Errorf("%w: %s is face-down", ErrInvalidMove, tail[i].Flipped(true))
		}
	}

	// A tableau source may only give up a suffix of its movable sequence.
	if m.From.Kind == PileTableau && len(m.Cards) > len(MovableTableauCards(src)) {
		return fmt.Errorf("%w: cards are not a movable sequence", ErrInvalidMove)
	}

	switch m.To.Kind {
	case PileFoundation:
		if m.To.Index >= NumFoundations {
			return fmt.Errorf("%w: foundation index %d out of range", ErrInvalidMove, m.To.Index)
		}
		if len(m.Cards) != 1 {
			return fmt.Errorf("%w: foundations take one card at a time", ErrInvalidMove)
		}
		card := tail[0]
		if card.Suit() != m.To.Index {
			return fmt.Errorf("%w: %s does not belong on %s", ErrInvalidMove, card, m.To)
		}
		if !CanPlaceOnFoundation(card, g.pile(m.To)) {
			return fmt.Errorf("%w: %s cannot go on %s", ErrInvalidMove, card, m.To)
		}
	case PileTableau:
		if m.To.Index >= NumTableaus {
			return fmt.Errorf("%w: tableau index %d out of range", ErrInvalidMove, m.To.Index)
		}
		if m.From.Kind == PileTableau && m.From.Index == m.To.Index {
			return fmt.Errorf("%w: source and destination are the same pile", ErrInvalidMove)
		}
		if int(g.TableauLens[m.To.Index])+len(m.Cards) > maxTableauLen {
			return fmt.Errorf("%w: %s cannot hold %d more cards", ErrInvalidMove, m.To, len(m.Cards))
		}
		if !CanPlaceOnTableau(tail, g.pile(m.To)) {
			return fmt.Errorf("%w: %s cannot go on %s", ErrInvalidMove, tail[0].Flipped(true), m.To)
		}
	default:
		return fmt.Errorf("%w: cannot move cards to %s", ErrInvalidMove, m.To.Kind)
	}
	return nil
}

// ApplyMove validates m and returns the successor state. On rejection the
// error wraps ErrInvalidMove and the returned state is the receiver,
// untouched. On success the cards move from the top of From to the top of
// To, a newly exposed face-down tableau card is flipped, Moves increments by
// one, the score updates, and completion is recomputed.
func (g GameState) ApplyMove(m Move) (GameState, error) {
	if err := g.ValidateMove(m); err != nil {
		return g, err
	}

	n := uint8(len(m.Cards))
	moved := make([]Card, n)

	// Remove from source.
	switch m.From.Kind {
	case PileWaste:
		g.WasteLen--
		moved[0] = g.Waste[g.WasteLen]
	case PileFoundation:
		g.FoundationLens[m.From.Index]--
		moved[0] = g.Foundations[m.From.Index][g.FoundationLens[m.From.Index]]
	case PileTableau:
		start := g.TableauLens[m.From.Index] - n
		copy(moved, g.Tableaus[m.From.Index][start:g.TableauLens[m.From.Index]])
		g.TableauLens[m.From.Index] = start
		// Expose the new top card if it is face-down.
		if start > 0 && !g.Tableaus[m.From.Index][start-1].FaceUp() {
			g.Tableaus[m.From.Index][start-1] = g.Tableaus[m.From.Index][start-1].Flipped(true)
			g.addScore(5)
		}
	}

	// Append to destination.
	switch m.To.Kind {
	case PileFoundation:
		g.Foundations[m.To.Index][g.FoundationLens[m.To.Index]] = moved[0]
		g.FoundationLens[m.To.Index]++
	case PileTableau:
		base := g.TableauLens[m.To.Index]
		copy(g.Tableaus[m.To.Index][base:], moved)
		g.TableauLens[m.To.Index] += n
	}

	switch {
	case m.To.Kind == PileFoundation:
		g.addScore(10)
	case m.From.Kind == PileWaste && m.To.Kind == PileTableau:
		g.addScore(5)
	case m.From.Kind == PileFoundation:
		g.addScore(-15)
	}

	g.Moves++
	if g.FoundationCount() == DeckSize {
		g.Flags |= FlagComplete
	} else {
		g.Flags &^= FlagComplete
	}
	return g, nil
}

// DrawFromStock returns the successor state after one draw. With a non-empty
// stock, min(DrawMode, stock size) cards move from the top of the stock to
// the top of the waste, flipped face-up, preserving order. With an empty
// stock the waste is recycled: reversed, flipped face-down, and made the new
// stock. Draws are tracked in Draws and never increment Moves. Drawing with
// both piles empty is a no-op.
func (g GameState) DrawFromStock() GameState {
	if g.StockLen == 0 {
		if g.WasteLen == 0 {
			return g
		}
		// Recycle: waste reversed and flipped face-down becomes the stock.
		for i := uint8(0); i < g.WasteLen; i++ {
			g.Stock[i] = g.Waste[g.WasteLen-1-i].Flipped(false)
		}
		g.StockLen = g.WasteLen
		g.WasteLen = 0
		g.Draws++
		return g
	}

	n := g.DrawMode
	if n > g.StockLen {
		n = g.StockLen
	}
	// The stock's "front" is its top: cards come off the end of the array in
	// order, each landing face-up on top of the waste.
	for i := uint8(0); i < n; i++ {
		g.StockLen--
		g.Waste[g.WasteLen] = g.Stock[g.StockLen].Flipped(true)
		g.WasteLen++
	}
	g.Draws++
	return g
}

// IsGameComplete reports whether the state is won: all 52 cards placed on
// the foundations.
func IsGameComplete(g *GameState) bool {
	return g.FoundationCount() == DeckSize
}

// addScore adjusts the score, flooring at zero.
func (g *GameState) addScore(delta int16) {
	g.Score += delta
	if g.Score < 0 {
		g.Score = 0
	}
}
