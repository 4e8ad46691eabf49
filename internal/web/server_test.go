package web

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/peterkuimelis/pokeduel/internal/game"
)

const testCatalog = `
cards:
  - id: pika
    name: Pikachu
    kind: pokemon
    stage: basic
    type: lightning
    hp: 60
    weakness: fighting
    attacks:
      - {name: Thunder Shock, cost: 2, typed_cost: [lightning], damage: 30, effect: flip_paralyze}
  - {id: raichu, name: Raichu, kind: pokemon, stage: stage1, evolves_from: Pikachu, type: lightning, hp: 120}
  - {id: potion, name: Potion, kind: trainer, trainer_type: item, effect: potion}
  - {id: lightning, name: Lightning Energy, kind: energy, basic: true, provides: lightning}
`

const testDecks = `
decks:
  - name: Sparks
    cards:
      - {id: pika, count: 4}
      - {id: lightning, count: 6}
  - name: Broken
    cards:
      - {id: missingno, count: 1}
`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	catalog, err := game.ParseCatalog([]byte(testCatalog))
	require.NoError(t, err)
	decks := filepath.Join(t.TempDir(), "decks.yaml")
	require.NoError(t, os.WriteFile(decks, []byte(testDecks), 0o644))

	ts := httptest.NewServer(NewServer(catalog, decks, zaptest.NewLogger(t)).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, v any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestCardsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	var cards []CardInfo
	getJSON(t, ts.URL+"/api/cards", &cards)
	require.Len(t, cards, 4)

	pika := cards[0]
	assert.Equal(t, "pika", pika.ID)
	assert.Equal(t, "Pokémon", pika.Kind)
	assert.Equal(t, "Basic", pika.Stage)
	assert.Equal(t, "Lightning", pika.Type)
	assert.Equal(t, "Fighting", pika.Weakness)
	require.Len(t, pika.Attacks, 1)
	assert.Equal(t, AttackInfo{Name: "Thunder Shock", Cost: 2, TypedCost: []string{"Lightning"}, Damage: 30, Effect: "flip_paralyze"}, pika.Attacks[0])

	assert.Equal(t, "Pikachu", cards[1].EvolvesFrom)
	assert.Equal(t, "Stage 1", cards[1].Stage)
	assert.Equal(t, "Item", cards[2].TrainerType)
	assert.Equal(t, "potion", cards[2].Effect)
	assert.Empty(t, cards[2].Stage)
	assert.Equal(t, "Lightning", cards[3].Provides)
}

func TestDecksEndpoint(t *testing.T) {
	ts := newTestServer(t)

	var decks []DeckInfo
	getJSON(t, ts.URL+"/api/decks", &decks)
	require.Len(t, decks, 2)

	assert.Equal(t, 1, decks[0].Number)
	assert.Equal(t, 10, decks[0].Size)
	assert.Equal(t, []DeckCard{{ID: "pika", Name: "Pikachu", Count: 4}, {ID: "lightning", Name: "Lightning Energy", Count: 6}}, decks[0].Cards)
	assert.Empty(t, decks[0].Error)

	assert.Equal(t, "Broken", decks[1].Name)
	assert.Contains(t, decks[1].Error, "missingno")
}

func TestIndexPage(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html"))

	resp, err = http.Get(ts.URL + "/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebSocketProxiesGameServer(t *testing.T) {
	ts := newTestServer(t)

	gameLn, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer gameLn.Close()

	joined := make(chan map[string]any, 1)
	answered := make(chan map[string]any, 1)
	go func() {
		conn, err := gameLn.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		dec := json.NewDecoder(conn)
		enc := json.NewEncoder(conn)
		var join map[string]any
		if dec.Decode(&join) != nil {
			return
		}
		joined <- join
		enc.Encode(map[string]any{"type": "choose_action", "actions": []map[string]any{{"index": 0, "desc": "End Turn"}}})
		var reply map[string]any
		if dec.Decode(&reply) != nil {
			return
		}
		answered <- reply
		enc.Encode(map[string]any{"type": "game_over", "winner": 1, "result": "Player 2 wins (prizes)"})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ws, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer ws.CloseNow()

	require.NoError(t, wsjson.Write(ctx, ws, connectMessage{Type: "connect", Addr: gameLn.Addr().String(), DeckNumber: 2}))
	join := <-joined
	assert.Equal(t, "join", join["type"])
	assert.Equal(t, float64(2), join["deck_number"])

	var msg map[string]any
	require.NoError(t, wsjson.Read(ctx, ws, &msg))
	assert.Equal(t, "choose_action", msg["type"])

	require.NoError(t, wsjson.Write(ctx, ws, map[string]any{"type": "action", "index": 0}))
	assert.Equal(t, "action", (<-answered)["type"])

	require.NoError(t, wsjson.Read(ctx, ws, &msg))
	assert.Equal(t, "game_over", msg["type"])
	assert.Equal(t, "Player 2 wins (prizes)", msg["result"])
}

func TestWebSocketReportsUnreachableServer(t *testing.T) {
	ts := newTestServer(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ws, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer ws.CloseNow()

	require.NoError(t, wsjson.Write(ctx, ws, connectMessage{Type: "connect", Addr: addr, DeckNumber: 1}))
	var msg map[string]string
	require.NoError(t, wsjson.Read(ctx, ws, &msg))
	assert.Equal(t, "error", msg["type"])
	assert.Contains(t, msg["error"], addr)
}
