package engine

import "time"

// DealNewGame shuffles a fresh deck with the given seed and deals the
// opening Klondike layout: column k (1-based) receives k cards face-down,
// the top card of every column is flipped face-up, and the remaining 24
// cards become the face-down stock in deal order. Waste and foundations
// start empty. drawMode values other than 3 are treated as draw-1.
func DealNewGame(drawMode uint8, seed uint64) GameState {
	if drawMode != 3 {
		drawMode = 1
	}

	var g GameState
	g.DrawMode = drawMode
	g.StartUnix = time.Now().UnixMilli()

	deck := ShuffledDeck(seed)
	next := 0

	// Triangular deal: column t gets t+1 cards, last one face-up.
	for t := 0; t < NumTableaus; t++ {
		for i := 0; i <= t; i++ {
			g.Tableaus[t][i] = deck[next]
			next++
		}
		g.TableauLens[t] = uint8(t + 1)
		g.Tableaus[t][t] = g.Tableaus[t][t].Flipped(true)
	}

	// Remainder becomes the stock, all face-down, in deal order: the stock
	// top is the array end, so the first undealt card is the first drawn.
	for i := 0; next < DeckSize; i++ {
		g.Stock[StockSize-1-i] = deck[next]
		next++
	}
	g.StockLen = StockSize

	return g
}
