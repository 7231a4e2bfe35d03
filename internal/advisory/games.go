package advisory

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Cwarren15-A/Ultimate-Solitaire/engine"
	"github.com/Cwarren15-A/Ultimate-Solitaire/internal/session"
)

type newGameReq struct {
	DrawMode uint8 `json:"drawMode"`
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	// Empty body means defaults.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && r.ContentLength > 0 {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	sess := s.mgr.New(req.DrawMode)
	writeJSON(w, http.StatusCreated, sess.View())
}

// sessionFromPath resolves the {id} URL parameter. On failure it writes the
// error response and returns nil.
func (s *Server) sessionFromPath(w http.ResponseWriter, r *http.Request) *session.Session {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_game_id", err.Error())
		return nil
	}
	sess, err := s.mgr.Get(id)
	if err != nil {
		writeError(w, statusForEngineErr(err), "game_not_found", id.String())
		return nil
	}
	return sess
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFromPath(w, r)
	if sess == nil {
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_game_id", err.Error())
		return
	}
	s.mgr.Remove(id)
	w.WriteHeader(http.StatusNoContent)
}

type moveReq struct {
	From  string   `json:"from"`
	To    string   `json:"to"`
	Cards []string `json:"cards"`
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFromPath(w, r)
	if sess == nil {
		return
	}
	var req moveReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	from, err := engine.ParsePileID(req.From)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_pile", err.Error())
		return
	}
	to, err := engine.ParsePileID(req.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_pile", err.Error())
		return
	}
	cards := make([]engine.Card, len(req.Cards))
	for i, tok := range req.Cards {
		if cards[i], err = engine.DecodeCard(tok); err != nil {
			writeError(w, http.StatusBadRequest, "bad_card", err.Error())
			return
		}
	}

	view, err := sess.ApplyMove(engine.Move{
		From:      from,
		To:        to,
		Cards:     cards,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		writeError(w, statusForEngineErr(err), "invalid_move", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleDraw(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFromPath(w, r)
	if sess == nil {
		return
	}
	writeJSON(w, http.StatusOK, sess.Draw())
}

type gameAutocompleteRes struct {
	View    session.View `json:"view"`
	Applied []seqEntry   `json:"applied"`
}

func (s *Server) handleGameAutocomplete(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFromPath(w, r)
	if sess == nil {
		return
	}
	view, applied := sess.AutoComplete()
	writeJSON(w, http.StatusOK, gameAutocompleteRes{
		View:    view,
		Applied: sequenceEntries(applied),
	})
}

// handleWS upgrades to a websocket and streams view snapshots until the
// client goes away. Incoming messages are drained and ignored; all game
// mutation happens over the REST endpoints.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFromPath(w, r)
	if sess == nil {
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		s.log.WithError(err).Warn("websocket accept failed")
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	if err := sess.Subscribe(ctx, conn); err != nil {
		s.log.WithError(err).Warn("initial view push failed")
		return
	}
	defer sess.Unsubscribe(conn)

	for {
		if _, _, err := conn.Read(ctx); err != nil {
			return
		}
	}
}

type statsRes struct {
	Played   int             `json:"played"`
	Won      int             `json:"won"`
	BestWin  int             `json:"bestWin"`
	AvgMoves float64         `json:"avgMoves"`
	Recent   []recentGameRes `json:"recent"`
}

type recentGameRes struct {
	Won        bool   `json:"won"`
	Moves      int    `json:"moves"`
	ElapsedMs  int64  `json:"elapsedMs"`
	DrawMode   int    `json:"drawMode"`
	FinishedAt string `json:"finishedAt"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	totals, err := s.store.Aggregate(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "stats_failed", err.Error())
		return
	}
	recent, err := s.store.Recent(ctx, 10)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "stats_failed", err.Error())
		return
	}

	res := statsRes{
		Played:   totals.Played,
		Won:      totals.Won,
		BestWin:  totals.BestWin,
		AvgMoves: totals.AvgMoves,
		Recent:   make([]recentGameRes, len(recent)),
	}
	for i, g := range recent {
		res.Recent[i] = recentGameRes{
			Won:        g.Won,
			Moves:      g.Moves,
			ElapsedMs:  g.ElapsedMs,
			DrawMode:   g.DrawMode,
			FinishedAt: g.FinishedAt.UTC().Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, res)
}
