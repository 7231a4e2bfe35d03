// Package advisory exposes the engine and solver over HTTP for the
// presentation and hint layers. Handlers translate between the wire format
// and engine types; every rule decision is delegated to the engine, no
// legality logic lives here.
package advisory

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/Cwarren15-A/Ultimate-Solitaire/engine"
	"github.com/Cwarren15-A/Ultimate-Solitaire/internal/session"
	"github.com/Cwarren15-A/Ultimate-Solitaire/internal/stats"
	"github.com/Cwarren15-A/Ultimate-Solitaire/solver"
)

// Caller-supplied solve budgets are clamped to keep one request from
// starving the daemon.
const (
	maxSolveDepth  = 400
	maxSolveTimeMs = 30000
	hintDepth      = 60
	hintTime       = 1500 * time.Millisecond
)

// Server bundles router, session manager and the optional stats store.
type Server struct {
	r     *chi.Mux
	mgr   *session.Manager
	store *stats.Store
	log   *logrus.Logger
}

// New constructs a Server, installs middleware, and registers routes.
// store may be nil; stats endpoints then return 404.
func New(mgr *session.Manager, store *stats.Store, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Server{r: chi.NewRouter(), mgr: mgr, store: store, log: log}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(s.requestLogger)

	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	s.r.Route("/v1", func(r chi.Router) {
		// Advisory endpoints are stateless: the state travels in the request.
		r.With(chimw.Timeout(35*time.Second)).Post("/solve", s.handleSolve)
		r.Post("/autocomplete", s.handleAutocomplete)
		r.With(chimw.Timeout(10*time.Second)).Post("/hint", s.handleHint)

		// Live sessions for the presentation layer.
		r.Post("/games", s.handleNewGame)
		r.Get("/games/{id}", s.handleGetGame)
		r.Delete("/games/{id}", s.handleDeleteGame)
		r.Post("/games/{id}/move", s.handleMove)
		r.Post("/games/{id}/draw", s.handleDraw)
		r.Post("/games/{id}/autocomplete", s.handleGameAutocomplete)
		r.Get("/games/{id}/ws", s.handleWS)

		if s.store != nil {
			r.Get("/stats", s.handleStats)
		}
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", r.URL.Path)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// requestLogger logs one line per request with logrus fields.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.WithFields(logrus.Fields{
			"method":  r.Method,
			"path":    r.URL.Path,
			"status":  ww.Status(),
			"elapsed": time.Since(start).Round(time.Microsecond).String(),
			"reqId":   chimw.GetReqID(r.Context()),
		}).Info("request")
	})
}

// ---------------------------------------------------------------------------
// Stateless advisory endpoints
// ---------------------------------------------------------------------------

type solveReq struct {
	GameState   string `json:"gameState"`
	MaxDepth    int    `json:"maxDepth"`
	TimeLimitMs int    `json:"timeLimitMs"`
}

type seqEntry struct {
	Move       string `json:"move"`
	From       string `json:"from"`
	To         string `json:"to"`
	Card       string `json:"card,omitempty"`
	MoveNumber int    `json:"moveNumber"`
}

type solveRes struct {
	IsWinnable      bool       `json:"isWinnable"`
	OptimalMoves    int        `json:"optimalMoves"`
	Confidence      int        `json:"confidence"`
	OptimalSequence []seqEntry `json:"optimalSequence,omitempty"`
	IsEstimate      bool       `json:"isEstimate"`
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req solveReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	g, err := engine.Decode(req.GameState)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed_state", err.Error())
		return
	}

	opts := solver.Options{MaxDepth: req.MaxDepth}
	if opts.MaxDepth > maxSolveDepth {
		opts.MaxDepth = maxSolveDepth
	}
	ms := req.TimeLimitMs
	if ms > maxSolveTimeMs {
		ms = maxSolveTimeMs
	}
	if ms > 0 {
		opts.TimeLimit = time.Duration(ms) * time.Millisecond
	}

	res := solver.Solve(g, opts)
	if res.Found {
		writeJSON(w, http.StatusOK, solveRes{
			IsWinnable:      true,
			OptimalMoves:    len(res.Sequence),
			Confidence:      100,
			OptimalSequence: sequenceEntries(res.Sequence),
		})
		return
	}
	writeJSON(w, http.StatusOK, solveRes{
		IsWinnable:   res.Estimate.Confidence >= 50,
		OptimalMoves: res.Estimate.ExpectedMoves,
		Confidence:   res.Estimate.Confidence,
		IsEstimate:   true,
	})
}

func sequenceEntries(seq []engine.Move) []seqEntry {
	out := make([]seqEntry, len(seq))
	for i, m := range seq {
		e := seqEntry{
			From:       m.From.String(),
			To:         m.To.String(),
			MoveNumber: i + 1,
		}
		if m.IsDraw() {
			e.Move = "draw"
		} else {
			e.Move = m.From.Kind.String() + "_to_" + m.To.Kind.String()
			e.Card = engine.EncodeCard(m.Cards[0].Flipped(true))
		}
		out[i] = e
	}
	return out
}

type autocompleteReq struct {
	GameState string `json:"gameState"`
}

type autocompleteRes struct {
	GameState  string     `json:"gameState"`
	Applied    []seqEntry `json:"applied"`
	IsComplete bool       `json:"isComplete"`
}

func (s *Server) handleAutocomplete(w http.ResponseWriter, r *http.Request) {
	var req autocompleteReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	g, err := engine.Decode(req.GameState)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed_state", err.Error())
		return
	}

	done, applied := engine.AutoComplete(g)
	enc, err := engine.Encode(&done)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "encode_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, autocompleteRes{
		GameState:  enc,
		Applied:    sequenceEntries(applied),
		IsComplete: done.IsComplete(),
	})
}

type hintReq struct {
	GameState string `json:"gameState"`
}

type hintRes struct {
	Hint        string `json:"hint"`
	FromSolver  bool   `json:"fromSolver"`
	Description string `json:"description"`
}

// handleHint suggests one move: the first step of a short solve when one is
// found, otherwise the first safe auto-move, otherwise a draw.
func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	var req hintReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	g, err := engine.Decode(req.GameState)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed_state", err.Error())
		return
	}

	res := solver.Solve(g, solver.Options{MaxDepth: hintDepth, TimeLimit: hintTime})
	out := hintRes{Description: engine.Describe(&g)}
	switch {
	case res.Found && len(res.Sequence) > 0:
		out.Hint = describeMove(res.Sequence[0])
		out.FromSolver = true
	case res.Found:
		out.Hint = "The game is already complete."
	default:
		if moves := engine.FindAutocompleteMoves(&g); len(moves) > 0 {
			out.Hint = describeMove(moves[0])
		} else if g.StockLen > 0 || g.WasteLen > 0 {
			out.Hint = "Draw from the stock."
		} else {
			out.Hint = "No moves available."
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func describeMove(m engine.Move) string {
	if m.IsDraw() {
		return "Draw from the stock."
	}
	card := m.Cards[0].Flipped(true)
	return "Move " + card.String() + " from " + m.From.String() + " to " + m.To.String() + "."
}

// ---------------------------------------------------------------------------
// Shared helpers
// ---------------------------------------------------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, errorBody{Error: code, Details: details})
}

// statusForEngineErr maps engine sentinels to HTTP statuses.
func statusForEngineErr(err error) int {
	switch {
	case errors.Is(err, engine.ErrInvalidMove):
		return http.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrMalformedState):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
