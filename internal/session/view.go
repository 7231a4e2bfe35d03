package session

import (
	"context"
	"encoding/json"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/Cwarren15-A/Ultimate-Solitaire/engine"
)

// ViewCard is one card as the client sees it. Face-down cards are sent as
// unknown: the token is withheld so clients cannot peek.
type ViewCard struct {
	Known bool   `json:"known"`
	Token string `json:"token,omitempty"` // wire token, present when Known
}

// View is the client-facing snapshot of one session. Pile order is bottom
// to top.
type View struct {
	GameID      uuid.UUID             `json:"gameId"`
	DrawMode    int                   `json:"drawMode"`
	Moves       int                   `json:"moves"`
	Draws       int                   `json:"draws"`
	Score       int                   `json:"score"`
	IsComplete  bool                  `json:"isComplete"`
	StockSize   int                   `json:"stockSize"`
	Waste       []ViewCard            `json:"waste"`
	Foundations map[string][]ViewCard `json:"foundations"`
	Tableaus    map[string][]ViewCard `json:"tableaux"`
}

func viewCards(pile []engine.Card) []ViewCard {
	out := make([]ViewCard, len(pile))
	for i, c := range pile {
		if c.FaceUp() {
			out[i] = ViewCard{Known: true, Token: engine.EncodeCard(c)}
		} else {
			out[i] = ViewCard{Known: false}
		}
	}
	return out
}

// viewLocked builds the client view. Callers hold s.mu.
func (s *Session) viewLocked() View {
	g := &s.state
	v := View{
		GameID:      s.ID,
		DrawMode:    int(g.DrawMode),
		Moves:       int(g.Moves),
		Draws:       int(g.Draws),
		Score:       int(g.Score),
		IsComplete:  g.IsComplete(),
		StockSize:   int(g.StockLen),
		Waste:       viewCards(g.Pile(engine.WastePile())),
		Foundations: make(map[string][]ViewCard, engine.NumFoundations),
		Tableaus:    make(map[string][]ViewCard, engine.NumTableaus),
	}
	for s := uint8(0); s < engine.NumFoundations; s++ {
		id := engine.FoundationPile(s)
		key := id.String()[len("foundation-"):]
		v.Foundations[key] = viewCards(g.Pile(id))
	}
	for t := uint8(0); t < engine.NumTableaus; t++ {
		id := engine.TableauPile(t)
		key := id.String()[len("tableau-"):]
		v.Tableaus[key] = viewCards(g.Pile(id))
	}
	return v
}

func writeView(ctx context.Context, conn *websocket.Conn, v View) error {
	buf, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, buf)
}
