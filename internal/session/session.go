// Package session hosts live games for the presentation layer. Each session
// wraps one engine.GameState behind a mutex; all rule decisions stay in the
// engine; this layer only sequences requests, pushes state views to
// websocket subscribers, and reports completed-game summaries outward.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Cwarren15-A/Ultimate-Solitaire/engine"
)

// ErrNotFound is returned for unknown session ids.
var ErrNotFound = errors.New("session not found")

// Summary is the completed-game report handed to the OnGameEnd callback.
// It is all the persistence layer ever sees.
type Summary struct {
	Won       bool
	Moves     int
	ElapsedMs int64
	DrawMode  int
}

// OnGameEndFunc receives the summary when a session's game completes or is
// abandoned.
type OnGameEndFunc func(id uuid.UUID, sum Summary)

// Session is one live game.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time

	mu       sync.Mutex
	state    engine.GameState
	reported bool
	subs     map[*websocket.Conn]struct{}

	onEnd OnGameEndFunc
	log   *logrus.Entry
}

// Manager owns the live sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	OnGameEnd OnGameEndFunc
	Log       *logrus.Logger
}

// NewManager creates an empty session manager.
func NewManager(log *logrus.Logger) *Manager {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Manager{
		sessions: make(map[uuid.UUID]*Session),
		Log:      log,
	}
}

// New deals a fresh game and registers a session for it. The shuffle seed
// comes from the clock; tests deal through the engine directly when they
// need reproducibility.
func (m *Manager) New(drawMode uint8) *Session {
	s := &Session{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
		state:     engine.DealNewGame(drawMode, uint64(time.Now().UnixNano())),
		subs:      make(map[*websocket.Conn]struct{}),
		onEnd:     m.onGameEnd,
	}
	s.log = m.Log.WithField("game", s.ID)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	s.log.WithField("drawMode", drawMode).Info("session created")
	return s
}

// Get returns the session with the given id.
func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Remove drops a session. An unfinished game is reported as a loss so the
// statistics layer sees every game exactly once.
func (m *Manager) Remove(id uuid.UUID) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.reported {
		s.reported = true
		s.emitSummaryLocked()
	}
	for conn := range s.subs {
		conn.Close(websocket.StatusNormalClosure, "session closed")
	}
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) onGameEnd(id uuid.UUID, sum Summary) {
	if m.OnGameEnd != nil {
		m.OnGameEnd(id, sum)
	}
}

// State returns a copy of the session's game state.
func (s *Session) State() engine.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ApplyMove runs one move through the engine. On success the new view is
// broadcast to subscribers; on rejection the engine's error passes through
// untouched and nothing changes.
func (s *Session) ApplyMove(m engine.Move) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.state.ApplyMove(m)
	if err != nil {
		return View{}, err
	}
	s.state = next
	s.afterTransitionLocked()
	return s.viewLocked(), nil
}

// Draw runs one stock draw (or recycle) through the engine.
func (s *Session) Draw() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = s.state.DrawFromStock()
	s.afterTransitionLocked()
	return s.viewLocked()
}

// AutoComplete runs the engine's safe auto-completion and returns the moves
// it applied alongside the resulting view.
func (s *Session) AutoComplete() (View, []engine.Move) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, applied := engine.AutoComplete(s.state)
	s.state = next
	if len(applied) > 0 {
		s.afterTransitionLocked()
	}
	return s.viewLocked(), applied
}

// View returns the current client view.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// afterTransitionLocked handles post-transition bookkeeping: completion
// reporting and subscriber broadcast. Callers hold s.mu.
func (s *Session) afterTransitionLocked() {
	if s.state.IsComplete() && !s.reported {
		s.reported = true
		s.log.WithFields(logrus.Fields{
			"moves": s.state.Moves,
			"score": s.state.Score,
		}).Info("game won")
		s.emitSummaryLocked()
	}
	s.broadcastLocked()
}

func (s *Session) emitSummaryLocked() {
	if s.onEnd == nil {
		return
	}
	s.onEnd(s.ID, Summary{
		Won:       s.state.IsComplete(),
		Moves:     int(s.state.Moves),
		ElapsedMs: time.Now().UnixMilli() - s.state.StartUnix,
		DrawMode:  int(s.state.DrawMode),
	})
}

// Subscribe registers a websocket connection for view pushes and
// immediately sends the current view. The caller owns the connection's read
// loop; Unsubscribe must be called when it ends.
func (s *Session) Subscribe(ctx context.Context, conn *websocket.Conn) error {
	s.mu.Lock()
	s.subs[conn] = struct{}{}
	view := s.viewLocked()
	s.mu.Unlock()
	return writeView(ctx, conn, view)
}

// Unsubscribe removes a websocket connection.
func (s *Session) Unsubscribe(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.subs, conn)
	s.mu.Unlock()
}

// broadcastLocked pushes the current view to every subscriber, dropping
// connections that fail to accept it. Callers hold s.mu.
func (s *Session) broadcastLocked() {
	if len(s.subs) == 0 {
		return
	}
	view := s.viewLocked()
	for conn := range s.subs {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := writeView(ctx, conn, view)
		cancel()
		if err != nil {
			s.log.WithError(err).Warn("dropping slow subscriber")
			delete(s.subs, conn)
			conn.Close(websocket.StatusPolicyViolation, "write failed")
		}
	}
}
