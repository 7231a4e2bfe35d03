// Package engine implements the Klondike solitaire rules core.
//
// The package is a pure, self-contained model: dealing, move legality,
// state transitions, auto-completion and wire serialization. GameState is
// a flat value type (fixed arrays, no pointers, no slices) so producing a
// successor state is a single struct copy, suitable for both interactive
// play and high-volume tree search.
package engine

// Suit constants, packed into bits 4-5 of Card.
const (
	SuitSpades   uint8 = 0
	SuitHearts   uint8 = 1
	SuitDiamonds uint8 = 2
	SuitClubs    uint8 = 3
)

// Rank constants. Ranks are 1-based: Ace = 1 .. King = 13.
const (
	RankAce   uint8 = 1
	RankJack  uint8 = 11
	RankQueen uint8 = 12
	RankKing  uint8 = 13
)

// Card is a packed uint8: bits 0–3 rank (1..13), bits 4–5 suit, bit 6 face-up.
// The zero value is not a valid card, so Card(0) doubles as "no card".
type Card uint8

// EmptyCard represents the absence of a card.
const EmptyCard Card = 0

const faceUpBit Card = 1 << 6

// NewCard constructs a face-down Card from suit and rank.
func NewCard(suit, rank uint8) Card {
	return Card((suit&0x3)<<4 | rank&0x0F)
}

// Suit returns the suit bits (4–5).
func (c Card) Suit() uint8 { return uint8(c) >> 4 & 0x3 }

// Rank returns the rank bits (0–3), 1..13.
func (c Card) Rank() uint8 { return uint8(c) & 0x0F }

// FaceUp reports whether the card is face-up.
func (c Card) FaceUp() bool { return c&faceUpBit != 0 }

// Flipped returns the card with the given orientation.
func (c Card) Flipped(faceUp bool) Card {
	if faceUp {
		return c | faceUpBit
	}
	return c &^ faceUpBit
}

// ID returns the card's stable identity: suit+rank with the face bit
// stripped. Two cards are the same physical card iff their IDs match.
func (c Card) ID() uint8 { return uint8(c) & 0x3F }

// IsRed reports whether the card's suit is red (hearts or diamonds).
func (c Card) IsRed() bool {
	s := c.Suit()
	return s == SuitHearts || s == SuitDiamonds
}

var suitRunes = [4]rune{'♠', '♥', '♦', '♣'}
var rankNames = [14]string{"?", "A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}

// String renders the card for human consumption, e.g. "Q♥" or "Q♥(down)".
func (c Card) String() string {
	if c == EmptyCard {
		return "--"
	}
	s := rankNames[c.Rank()] + string(suitRunes[c.Suit()])
	if !c.FaceUp() {
		s += "(down)"
	}
	return s
}

// PileKind identifies one of the four pile families.
type PileKind uint8

const (
	PileStock PileKind = iota
	PileWaste
	PileFoundation
	PileTableau
)

func (k PileKind) String() string {
	switch k {
	case PileStock:
		return "stock"
	case PileWaste:
		return "waste"
	case PileFoundation:
		return "foundation"
	case PileTableau:
		return "tableau"
	}
	return "unknown"
}

// PileID addresses a single pile. Index is the suit for foundations and the
// 0-based column for tableaus; it is unused for stock and waste.
type PileID struct {
	Kind  PileKind
	Index uint8
}

// Convenience constructors.
func StockPile() PileID { return PileID{Kind: PileStock} }
func WastePile() PileID { return PileID{Kind: PileWaste} }
func FoundationPile(suit uint8) PileID {
	return PileID{Kind: PileFoundation, Index: suit}
}
func TableauPile(col uint8) PileID { return PileID{Kind: PileTableau, Index: col} }

var suitLetters = [4]string{"s", "h", "d", "c"}

// String renders a pile id for wire/advisory payloads, e.g. "tableau-3",
// "foundation-h", "waste".
func (p PileID) String() string {
	switch p.Kind {
	case PileFoundation:
		return "foundation-" + suitLetters[p.Index&0x3]
	case PileTableau:
		return "tableau-" + string(rune('1'+p.Index))
	default:
		return p.Kind.String()
	}
}

// Move represents moving a contiguous run of cards from the top (end) of one
// pile to another. Cards commonly has length 1; tableau-to-tableau moves may
// carry a whole movable sequence. A stock draw is not a Move (it flows
// through DrawFromStock), except inside solver sequences, where a Move from
// stock to waste with no cards stands in for one draw (see IsDraw).
type Move struct {
	From      PileID
	To        PileID
	Cards     []Card
	Timestamp int64 // unix milliseconds; informational only
}

// IsDraw reports whether the move is a stock-draw pseudo-move as emitted in
// solver sequences. ApplyMove rejects such moves; replay helpers dispatch
// them to DrawFromStock.
func (m Move) IsDraw() bool {
	return m.From.Kind == PileStock && m.To.Kind == PileWaste
}

// Structural limits. A tableau can hold at most 6 face-down cards (column 7)
// plus a full King-to-Ace run.
const (
	DeckSize       = 52
	NumTableaus    = 7
	NumFoundations = 4
	StockSize      = 24
	maxTableauLen  = 19
)

// GameState is the complete, self-contained state of one Klondike game.
// It is a flat value type: copying it copies the whole game.
type GameState struct {
	Stock          [StockSize]Card
	StockLen       uint8
	Waste          [StockSize]Card
	WasteLen       uint8
	Foundations    [NumFoundations][13]Card
	FoundationLens [NumFoundations]uint8
	Tableaus       [NumTableaus][maxTableauLen]Card
	TableauLens    [NumTableaus]uint8
	DrawMode       uint8 // 1 or 3 cards per draw
	Moves          uint16
	Draws          uint16 // stock draws, tracked separately from Moves
	Score          int16
	StartUnix      int64 // unix milliseconds at deal time
	Flags          uint8
}

const (
	// FlagComplete is set when all four foundations hold 13 cards.
	FlagComplete uint8 = 1 << 0
)

// IsComplete reports whether all 52 cards are on the foundations.
func (g *GameState) IsComplete() bool { return g.Flags&FlagComplete != 0 }

// FoundationCount returns the total number of cards on all foundations.
func (g *GameState) FoundationCount() int {
	n := 0
	for s := 0; s < NumFoundations; s++ {
		n += int(g.FoundationLens[s])
	}
	return n
}

// HiddenCount returns the number of face-down tableau cards.
func (g *GameState) HiddenCount() int {
	n := 0
	for t := 0; t < NumTableaus; t++ {
		for i := uint8(0); i < g.TableauLens[t]; i++ {
			if !g.Tableaus[t][i].FaceUp() {
				n++
			}
		}
	}
	return n
}

// EmptyTableauCount returns the number of empty tableau columns.
func (g *GameState) EmptyTableauCount() int {
	n := 0
	for t := 0; t < NumTableaus; t++ {
		if g.TableauLens[t] == 0 {
			n++
		}
	}
	return n
}

// pile returns the live contents of the addressed pile as a slice view.
// Internal only; callers outside the package go through transitions.
func (g *GameState) pile(id PileID) []Card {
	switch id.Kind {
	case PileStock:
		return g.Stock[:g.StockLen]
	case PileWaste:
		return g.Waste[:g.WasteLen]
	case PileFoundation:
		return g.Foundations[id.Index][:g.FoundationLens[id.Index]]
	case PileTableau:
		return g.Tableaus[id.Index][:g.TableauLens[id.Index]]
	}
	return nil
}

// Pile returns a copy of the addressed pile, bottom to top. Foundation and
// tableau indices out of range return nil.
func (g *GameState) Pile(id PileID) []Card {
	switch id.Kind {
	case PileFoundation:
		if id.Index >= NumFoundations {
			return nil
		}
	case PileTableau:
		if id.Index >= NumTableaus {
			return nil
		}
	}
	src := g.pile(id)
	out := make([]Card, len(src))
	copy(out, src)
	return out
}
