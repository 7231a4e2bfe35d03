package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedState is the sentinel wrapped by every decode failure. The
// engine never guesses a valid state from garbage input.
var ErrMalformedState = errors.New("malformed game state")

const rankDigits = "0123456789abcd"

// EncodeCard renders a card as its 3-character wire token: suit letter
// (s/h/d/c), rank as a base-14 digit (1..9, a=10..d=13), and a face flag
// (1 = face-up, 0 = face-down). Example: "sd1" is the King of Spades,
// face-up.
func EncodeCard(c Card) string {
	var b [3]byte
	b[0] = suitLetters[c.Suit()][0]
	b[1] = rankDigits[c.Rank()]
	if c.FaceUp() {
		b[2] = '1'
	} else {
		b[2] = '0'
	}
	return string(b[:])
}

// DecodeCard parses a 3-character wire token produced by EncodeCard.
func DecodeCard(tok string) (Card, error) {
	if len(tok) != 3 {
		return EmptyCard, fmt.Errorf("%w: card token %q", ErrMalformedState, tok)
	}
	var suit uint8
	switch tok[0] {
	case 's':
		suit = SuitSpades
	case 'h':
		suit = SuitHearts
	case 'd':
		suit = SuitDiamonds
	case 'c':
		suit = SuitClubs
	default:
		return EmptyCard, fmt.Errorf("%w: card token %q has bad suit", ErrMalformedState, tok)
	}
	rank := uint8(strings.IndexByte(rankDigits, tok[1]))
	if tok[1] == '0' || rank == 0 || rank > RankKing {
		return EmptyCard, fmt.Errorf("%w: card token %q has bad rank", ErrMalformedState, tok)
	}
	switch tok[2] {
	case '0':
		return NewCard(suit, rank), nil
	case '1':
		return NewCard(suit, rank).Flipped(true), nil
	}
	return EmptyCard, fmt.Errorf("%w: card token %q has bad face flag", ErrMalformedState, tok)
}

// wireState is the JSON shape exchanged with the advisory layer. Pile values
// are ordered card tokens, bottom to top (waste and stock: oldest first).
type wireState struct {
	Stock       []string            `json:"stock"`
	Waste       []string            `json:"waste"`
	Foundations map[string][]string `json:"foundations"`
	Tableaux    map[string][]string `json:"tableaux"`
	DrawMode    uint8               `json:"drawMode"`
	Moves       uint16              `json:"moves"`
}

func encodePile(pile []Card) []string {
	out := make([]string, len(pile))
	for i, c := range pile {
		out[i] = EncodeCard(c)
	}
	return out
}

// Encode serializes the state to its compact JSON wire form. Only pile
// contents, draw mode and the move counter cross the wire; score and start
// time are session-local.
func Encode(g *GameState) (string, error) {
	w := wireState{
		Stock:       encodePile(g.Stock[:g.StockLen]),
		Waste:       encodePile(g.Waste[:g.WasteLen]),
		Foundations: make(map[string][]string, NumFoundations),
		Tableaux:    make(map[string][]string, NumTableaus),
		DrawMode:    g.DrawMode,
		Moves:       g.Moves,
	}
	for s := uint8(0); s < NumFoundations; s++ {
		w.Foundations[suitLetters[s]] = encodePile(g.Foundations[s][:g.FoundationLens[s]])
	}
	for t := 0; t < NumTableaus; t++ {
		w.Tableaux[fmt.Sprintf("%d", t+1)] = encodePile(g.Tableaus[t][:g.TableauLens[t]])
	}
	buf, err := json.Marshal(w)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// Decode is the exact inverse of Encode for every reachable state: it
// reconstructs identical pile contents, order and face orientation. Shape
// violations (bad JSON, missing pile keys, oversized piles, bad tokens) and
// states that fail the structural invariants of Validate (card conservation,
// the joint stock+waste cap, orientation and run laws) return an error
// wrapping ErrMalformedState. The transition functions size their writes by
// those invariants, so nothing unreachable may pass the decoder.
func Decode(raw string) (GameState, error) {
	var g GameState
	var w wireState
	dec := json.NewDecoder(strings.NewReader(raw))
	if err := dec.Decode(&w); err != nil {
		return g, fmt.Errorf("%w: %v", ErrMalformedState, err)
	}
	if w.Foundations == nil || w.Tableaux == nil {
		return g, fmt.Errorf("%w: missing foundations or tableaux", ErrMalformedState)
	}

	fill := func(tokens []string, dst []Card, max int, where string) (uint8, error) {
		if len(tokens) > max {
			return 0, fmt.Errorf("%w: %s has %d cards", ErrMalformedState, where, len(tokens))
		}
		for i, tok := range tokens {
			c, err := DecodeCard(tok)
			if err != nil {
				return 0, err
			}
			dst[i] = c
		}
		return uint8(len(tokens)), nil
	}

	var err error
	if g.StockLen, err = fill(w.Stock, g.Stock[:], StockSize, "stock"); err != nil {
		return GameState{}, err
	}
	if g.WasteLen, err = fill(w.Waste, g.Waste[:], StockSize, "waste"); err != nil {
		return GameState{}, err
	}
	for s := uint8(0); s < NumFoundations; s++ {
		tokens, ok := w.Foundations[suitLetters[s]]
		if !ok {
			return GameState{}, fmt.Errorf("%w: missing foundation %q", ErrMalformedState, suitLetters[s])
		}
		if g.FoundationLens[s], err = fill(tokens, g.Foundations[s][:], 13, "foundation "+suitLetters[s]); err != nil {
			return GameState{}, err
		}
	}
	for t := 0; t < NumTableaus; t++ {
		key := fmt.Sprintf("%d", t+1)
		tokens, ok := w.Tableaux[key]
		if !ok {
			return GameState{}, fmt.Errorf("%w: missing tableau %q", ErrMalformedState, key)
		}
		if g.TableauLens[t], err = fill(tokens, g.Tableaus[t][:], maxTableauLen, "tableau "+key); err != nil {
			return GameState{}, err
		}
	}

	if w.DrawMode != 1 && w.DrawMode != 3 {
		return GameState{}, fmt.Errorf("%w: drawMode %d", ErrMalformedState, w.DrawMode)
	}
	g.DrawMode = w.DrawMode
	g.Moves = w.Moves
	if g.FoundationCount() == DeckSize {
		g.Flags |= FlagComplete
	}

	if err := g.Validate(); err != nil {
		return GameState{}, fmt.Errorf("%w: %v", ErrMalformedState, err)
	}
	return g, nil
}

// ParsePileID parses the wire form produced by PileID.String: "stock",
// "waste", "foundation-h", "tableau-3".
func ParsePileID(s string) (PileID, error) {
	switch s {
	case "stock":
		return StockPile(), nil
	case "waste":
		return WastePile(), nil
	}
	if rest, ok := strings.CutPrefix(s, "foundation-"); ok {
		for suit, letter := range suitLetters {
			if rest == letter {
				return FoundationPile(uint8(suit)), nil
			}
		}
		return PileID{}, fmt.Errorf("%w: pile %q", ErrMalformedState, s)
	}
	if rest, ok := strings.CutPrefix(s, "tableau-"); ok {
		if len(rest) == 1 && rest[0] >= '1' && rest[0] <= '7' {
			return TableauPile(rest[0] - '1'), nil
		}
		return PileID{}, fmt.Errorf("%w: pile %q", ErrMalformedState, s)
	}
	return PileID{}, fmt.Errorf("%w: pile %q", ErrMalformedState, s)
}

// Describe renders a lossy, human-readable multi-line summary of the state
// for advisory and debugging output. It is never used for reconstruction.
func Describe(g *GameState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Klondike (draw %d) — move %d, score %d\n", g.DrawMode, g.Moves, g.Score)
	fmt.Fprintf(&b, "Stock: %d cards\n", g.StockLen)
	if g.WasteLen == 0 {
		b.WriteString("Waste: empty\n")
	} else {
		fmt.Fprintf(&b, "Waste: %d cards, top %s\n", g.WasteLen, g.Waste[g.WasteLen-1])
	}
	b.WriteString("Foundations:")
	for s := uint8(0); s < NumFoundations; s++ {
		n := g.FoundationLens[s]
		if n == 0 {
			fmt.Fprintf(&b, " %c —", suitRunes[s])
		} else {
			fmt.Fprintf(&b, " %c A-%s", suitRunes[s], rankNames[n])
		}
	}
	b.WriteByte('\n')
	for t := 0; t < NumTableaus; t++ {
		pile := g.Tableaus[t][:g.TableauLens[t]]
		down := 0
		for _, c := range pile {
			if !c.FaceUp() {
				down++
			}
		}
		fmt.Fprintf(&b, "Tableau %d:", t+1)
		if len(pile) == 0 {
			b.WriteString(" empty")
		}
		if down > 0 {
			fmt.Fprintf(&b, " %d down +", down)
		}
		for _, c := range pile[down:] {
			b.WriteByte(' ')
			b.WriteString(rankNames[c.Rank()] + string(suitRunes[c.Suit()]))
		}
		b.WriteByte('\n')
	}
	if g.IsComplete() {
		b.WriteString("Game complete.\n")
	}
	return b.String()
}
