package solver

import "github.com/Cwarren15-A/Ultimate-Solitaire/engine"

// Estimate is the heuristic fallback when no full solution was found in
// budget. Both numbers are explicitly approximate: Confidence is a win
// likelihood in [5,95] percent, ExpectedMoves a move-count guess in [5,150].
type Estimate struct {
	Confidence     int
	ExpectedMoves  int
	Progress       float64 // foundation cards / 52
	AvailableMoves int
	HiddenCards    int
	EmptyColumns   int
	StockCards     int
}

// Hand-tuned linear weights over the position features. Progress dominates;
// hidden cards hurt the most.
const (
	baseConfidence   = 20.0
	wProgress        = 60.0
	wAvailableMoves  = 2.0
	wHiddenCards     = -1.8
	wEmptyColumns    = 4.0
	wStockCards      = -0.4
	baseMoves        = 16.0
	movesPerUnplaced = 1.9
	movesPerHidden   = 1.5
)

// Evaluate scores a position without searching.
func Evaluate(g *engine.GameState) Estimate {
	placed := g.FoundationCount()
	est := Estimate{
		Progress:       float64(placed) / float64(engine.DeckSize),
		AvailableMoves: len(generateMoves(g)),
		HiddenCards:    g.HiddenCount(),
		EmptyColumns:   g.EmptyTableauCount(),
		StockCards:     int(g.StockLen),
	}

	conf := baseConfidence +
		wProgress*est.Progress +
		wAvailableMoves*float64(est.AvailableMoves) +
		wHiddenCards*float64(est.HiddenCards) +
		wEmptyColumns*float64(est.EmptyColumns) +
		wStockCards*float64(est.StockCards)
	est.Confidence = clamp(int(conf), 5, 95)

	moves := baseMoves +
		movesPerUnplaced*float64(engine.DeckSize-placed) +
		movesPerHidden*float64(est.HiddenCards)
	est.ExpectedMoves = clamp(int(moves), 5, 150)

	return est
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
