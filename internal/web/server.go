package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"

	"github.com/peterkuimelis/pokeduel/internal/game"
)

//go:embed static
var staticFiles embed.FS

// AttackInfo is one attack of a card in the /api/cards response.
type AttackInfo struct {
	Name      string   `json:"name"`
	Cost      int      `json:"cost"`
	TypedCost []string `json:"typedCost,omitempty"`
	Damage    int      `json:"damage"`
	Effect    string   `json:"effect,omitempty"`
	Value     int      `json:"value,omitempty"`
}

// CardInfo is the JSON representation of a card for the /api/cards endpoint.
type CardInfo struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Kind        string       `json:"kind"`
	Description string       `json:"description,omitempty"`
	Stage       string       `json:"stage,omitempty"`
	EvolvesFrom string       `json:"evolvesFrom,omitempty"`
	Type        string       `json:"type,omitempty"`
	HP          int          `json:"hp,omitempty"`
	EX          bool         `json:"ex,omitempty"`
	RetreatCost int          `json:"retreatCost,omitempty"`
	Weakness    string       `json:"weakness,omitempty"`
	Resistance  string       `json:"resistance,omitempty"`
	Attacks     []AttackInfo `json:"attacks,omitempty"`
	Abilities   []string     `json:"abilities,omitempty"`
	TrainerType string       `json:"trainerType,omitempty"`
	Effect      string       `json:"effect,omitempty"`
	Provides    string       `json:"provides,omitempty"`
	Special     bool         `json:"special,omitempty"`
}

// Server is the pokeduel web UI server. Browsers talk to it over a WebSocket
// that it proxies onto a game server's TCP protocol.
type Server struct {
	catalog   *game.Catalog
	decksFile string
	zap       *zap.Logger
	mux       *http.ServeMux
}

// NewServer creates a new web server.
func NewServer(catalog *game.Catalog, decksFile string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		catalog:   catalog,
		decksFile: decksFile,
		zap:       logger,
		mux:       http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	staticFS, _ := fs.Sub(staticFiles, "static")

	s.mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		f, err := staticFS.Open("index.html")
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		defer f.Close()
		io.Copy(w, f)
	})
	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	s.mux.HandleFunc("GET /api/cards", s.handleCards)
	s.mux.HandleFunc("GET /api/decks", s.handleDecks)
	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func cardInfo(c *game.Card) CardInfo {
	ci := CardInfo{
		ID:          c.ID,
		Name:        c.Name,
		Kind:        c.Kind.String(),
		Description: c.Description,
	}
	switch c.Kind {
	case game.KindPokemon:
		ci.Stage = c.Stage.String()
		ci.EvolvesFrom = c.EvolvesFrom
		ci.Type = c.Type.String()
		ci.HP = c.HP
		ci.EX = c.IsEX
		ci.RetreatCost = c.RetreatCost
		ci.Weakness = c.Weakness.String()
		ci.Resistance = c.Resistance.String()
		for _, a := range c.Attacks {
			ai := AttackInfo{Name: a.Name, Cost: a.Cost, Damage: a.Damage, Value: a.Value}
			if a.Effect != game.AttackPlain {
				ai.Effect = a.Effect.String()
			}
			for _, t := range a.TypedCost {
				ai.TypedCost = append(ai.TypedCost, t.String())
			}
			ci.Attacks = append(ci.Attacks, ai)
		}
		for _, ab := range c.Abilities {
			ci.Abilities = append(ci.Abilities, ab.Name)
		}
	case game.KindTrainer:
		ci.TrainerType = c.TrainerType.String()
		ci.Effect = c.Effect.String()
	case game.KindEnergy:
		ci.Provides = c.Provides.String()
		ci.Special = c.IsSpecial
	}
	return ci
}

func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	cards := make([]CardInfo, 0, s.catalog.Len())
	for _, c := range s.catalog.Cards() {
		cards = append(cards, cardInfo(c))
	}
	writeJSON(w, cards)
}

func (s *Server) handleDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := loadDeckInfos(s.decksFile, s.catalog)
	if err != nil {
		s.zap.Warn("decks unavailable", zap.String("file", s.decksFile), zap.Error(err))
		http.Error(w, "could not read decks file", http.StatusInternalServerError)
		return
	}
	writeJSON(w, decks)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// connectMessage is the first frame a browser sends on /ws.
type connectMessage struct {
	Type       string `json:"type"`
	Addr       string `json:"addr"`
	DeckNumber int    `json:"deck_number"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Allow connections from any origin
	})
	if err != nil {
		s.zap.Warn("websocket accept", zap.Error(err))
		return
	}
	defer wsConn.CloseNow()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	var connectMsg connectMessage
	if err := wsjson.Read(ctx, wsConn, &connectMsg); err != nil || connectMsg.Type != "connect" {
		wsConn.Close(websocket.StatusPolicyViolation, "expected connect message")
		return
	}
	log := s.zap.With(zap.String("game", connectMsg.Addr), zap.Int("deck", connectMsg.DeckNumber))

	dialer := net.Dialer{Timeout: 5 * time.Second}
	tcpConn, err := dialer.DialContext(ctx, "tcp", connectMsg.Addr)
	if err != nil {
		log.Warn("game server unreachable", zap.Error(err))
		wsjson.Write(ctx, wsConn, map[string]string{
			"type":  "error",
			"error": fmt.Sprintf("Could not connect to game server at %s: %v", connectMsg.Addr, err),
		})
		wsConn.Close(websocket.StatusNormalClosure, "connection failed")
		return
	}
	defer tcpConn.Close()

	if err := json.NewEncoder(tcpConn).Encode(map[string]any{
		"type":        "join",
		"deck_number": connectMsg.DeckNumber,
	}); err != nil {
		log.Warn("send join", zap.Error(err))
		return
	}
	log.Info("browser joined game")

	done := make(chan struct{})

	// TCP → WebSocket (server messages to browser)
	go func() {
		defer close(done)
		dec := json.NewDecoder(tcpConn)
		for {
			var msg json.RawMessage
			if err := dec.Decode(&msg); err != nil {
				if !errors.Is(err, io.EOF) {
					log.Debug("game server read", zap.Error(err))
				}
				return
			}
			if err := wsConn.Write(ctx, websocket.MessageText, msg); err != nil {
				log.Debug("websocket write", zap.Error(err))
				return
			}
		}
	}()

	// WebSocket → TCP (browser responses to server)
	go func() {
		for {
			_, data, err := wsConn.Read(ctx)
			if err != nil {
				tcpConn.Close()
				return
			}
			data = append(data, '\n')
			if _, err := tcpConn.Write(data); err != nil {
				log.Debug("game server write", zap.Error(err))
				return
			}
		}
	}()

	<-done
	wsConn.Close(websocket.StatusNormalClosure, "game ended")
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}
