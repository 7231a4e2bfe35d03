// Package solver searches Klondike positions for a winning move sequence.
//
// The search is a bounded depth-first feasibility search over the engine's
// transition function: it returns the first complete line it finds, not the
// shortest. When the depth, node or time budget runs out it falls back to a
// heuristic position estimate instead of an answer.
package solver

import (
	"time"

	"github.com/Cwarren15-A/Ultimate-Solitaire/engine"
)

// Options bound a single search. Zero values fall back to the defaults.
type Options struct {
	MaxDepth  int           // maximum moves along one line (default 120)
	TimeLimit time.Duration // wall-clock budget (default 5s)
	MaxNodes  int           // hard ceiling on expanded nodes (default 200000)
}

const (
	DefaultMaxDepth  = 120
	DefaultTimeLimit = 5 * time.Second
	DefaultMaxNodes  = 200000
)

func (o Options) withDefaults() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.TimeLimit <= 0 {
		o.TimeLimit = DefaultTimeLimit
	}
	if o.MaxNodes <= 0 {
		o.MaxNodes = DefaultMaxNodes
	}
	return o
}

// Result is the outcome of one solve call. Found == true means replaying
// Sequence from the input state through the engine reaches a complete state.
// Found == false carries a heuristic Estimate instead; that is the
// documented budget-exhausted outcome, not an error.
type Result struct {
	Found    bool
	Sequence []engine.Move
	Estimate *Estimate
	Nodes    int           // nodes expanded
	Elapsed  time.Duration // search time spent
}

// frame is one node on the explicit DFS worklist: a position plus the line
// of moves that reached it. Explicit frames keep worst-case memory bounded
// by MaxNodes and independent of the call-stack limit.
type frame struct {
	state engine.GameState
	path  []engine.Move
}

// Solve searches for a winning sequence from g under the given bounds.
func Solve(g engine.GameState, opts Options) Result {
	opts = opts.withDefaults()
	start := time.Now()
	deadline := start.Add(opts.TimeLimit)

	// The visited set lives for exactly one call; it is keyed on pile
	// contents only, so transpositions reached by different move counts
	// collapse to one node.
	visited := make(map[string]struct{}, 4096)
	stack := []frame{{state: g}}
	nodes := 0

	for len(stack) > 0 {
		if nodes >= opts.MaxNodes || time.Now().After(deadline) {
			break
		}

		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if top.state.IsComplete() {
			return Result{
				Found:    true,
				Sequence: top.path,
				Nodes:    nodes,
				Elapsed:  time.Since(start),
			}
		}
		if len(top.path) >= opts.MaxDepth {
			continue
		}

		key := positionKey(&top.state)
		if _, seen := visited[key]; seen {
			continue
		}
		visited[key] = struct{}{}
		nodes++

		moves := generateMoves(&top.state)
		// Push in reverse so the highest-priority move is expanded first.
		for i := len(moves) - 1; i >= 0; i-- {
			m := moves[i]
			var child engine.GameState
			if m.IsDraw() {
				child = top.state.DrawFromStock()
			} else {
				next, err := top.state.ApplyMove(m)
				if err != nil {
					continue // generator and validator disagree; skip, never abort
				}
				child = next
			}
			path := make([]engine.Move, len(top.path)+1)
			copy(path, top.path)
			path[len(top.path)] = m
			stack = append(stack, frame{state: child, path: path})
		}
	}

	est := Evaluate(&g)
	return Result{
		Found:    false,
		Estimate: &est,
		Nodes:    nodes,
		Elapsed:  time.Since(start),
	}
}

// Replay applies a solver sequence to a state through the rules engine,
// dispatching draw pseudo-moves to DrawFromStock. It is how callers verify
// or consume a Found result.
func Replay(g engine.GameState, seq []engine.Move) (engine.GameState, error) {
	for _, m := range seq {
		if m.IsDraw() {
			g = g.DrawFromStock()
			continue
		}
		next, err := g.ApplyMove(m)
		if err != nil {
			return g, err
		}
		g = next
	}
	return g, nil
}

// generateMoves enumerates the legal moves of a position in search priority
// order:
//  1. foundation moves (waste top, then tableau tops),
//  2. tableau-to-tableau runs, longest first, destinations that expose a
//     face-down card or take a King onto an empty column ahead of the rest,
//  3. waste-to-tableau,
//  4. one stock draw, only when no card-moving option exists.
func generateMoves(g *engine.GameState) []engine.Move {
	var out []engine.Move

	// 1. Foundation moves.
	if g.WasteLen > 0 {
		c := g.Waste[g.WasteLen-1]
		if m, ok := foundationMove(g, engine.WastePile(), c); ok {
			out = append(out, m)
		}
	}
	for t := uint8(0); t < engine.NumTableaus; t++ {
		if g.TableauLens[t] == 0 {
			continue
		}
		c := g.Tableaus[t][g.TableauLens[t]-1]
		if m, ok := foundationMove(g, engine.TableauPile(t), c); ok {
			out = append(out, m)
		}
	}

	// 2. Tableau-to-tableau. Collect then order: moves that empty a column
	// for a King or expose a face-down card come first.
	var tt []engine.Move
	var ttUseful []bool
	for src := uint8(0); src < engine.NumTableaus; src++ {
		run := engine.MovableTableauCards(g.Pile(engine.TableauPile(src)))
		if len(run) == 0 {
			continue
		}
		hiddenBelow := int(g.TableauLens[src]) - len(run)
		for take := len(run); take >= 1; take-- {
			cards := run[len(run)-take:]
			for dst := uint8(0); dst < engine.NumTableaus; dst++ {
				if dst == src {
					continue
				}
				dstPile := g.Pile(engine.TableauPile(dst))
				if !engine.CanPlaceOnTableau(cards, dstPile) {
					continue
				}
				// Moving a whole pile between two empty-bottomed columns
				// (King run with nothing underneath) is a no-op shuffle.
				if hiddenBelow == 0 && take == len(run) && len(dstPile) == 0 {
					continue
				}
				moved := make([]engine.Card, take)
				copy(moved, cards)
				m := engine.Move{
					From:  engine.TableauPile(src),
					To:    engine.TableauPile(dst),
					Cards: moved,
				}
				useful := len(dstPile) == 0 || (take == len(run) && hiddenBelow > 0)
				tt = append(tt, m)
				ttUseful = append(ttUseful, useful)
			}
		}
	}
	for i, m := range tt {
		if ttUseful[i] {
			out = append(out, m)
		}
	}
	for i, m := range tt {
		if !ttUseful[i] {
			out = append(out, m)
		}
	}

	// 3. Waste-to-tableau.
	if g.WasteLen > 0 {
		c := g.Waste[g.WasteLen-1]
		for dst := uint8(0); dst < engine.NumTableaus; dst++ {
			if engine.CanPlaceOnTableau([]engine.Card{c}, g.Pile(engine.TableauPile(dst))) {
				out = append(out, engine.Move{
					From:  engine.WastePile(),
					To:    engine.TableauPile(dst),
					Cards: []engine.Card{c},
				})
			}
		}
	}

	// 4. A single draw, last, and only when nothing else moves a card.
	if len(out) == 0 && (g.StockLen > 0 || g.WasteLen > 0) {
		out = append(out, engine.Move{From: engine.StockPile(), To: engine.WastePile()})
	}
	return out
}

// foundationMove builds the move sending c to its suit's foundation if legal.
func foundationMove(g *engine.GameState, from engine.PileID, c engine.Card) (engine.Move, bool) {
	suit := c.Suit()
	if !engine.CanPlaceOnFoundation(c, g.Pile(engine.FoundationPile(suit))) {
		return engine.Move{}, false
	}
	return engine.Move{
		From:  from,
		To:    engine.FoundationPile(suit),
		Cards: []engine.Card{c},
	}, true
}

// positionKey renders the piles as a compact string for the visited set.
// Move and draw counters are deliberately excluded so transpositions dedupe.
func positionKey(g *engine.GameState) string {
	// 52 cards * 3 chars + separators.
	buf := make([]byte, 0, 4*engine.DeckSize)
	appendPile := func(pile []engine.Card) {
		for _, c := range pile {
			buf = append(buf, engine.EncodeCard(c)...)
		}
		buf = append(buf, '|')
	}
	appendPile(g.Pile(engine.StockPile()))
	appendPile(g.Pile(engine.WastePile()))
	for s := uint8(0); s < engine.NumFoundations; s++ {
		appendPile(g.Pile(engine.FoundationPile(s)))
	}
	for t := uint8(0); t < engine.NumTableaus; t++ {
		appendPile(g.Pile(engine.TableauPile(t)))
	}
	return string(buf)
}
