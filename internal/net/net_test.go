package net

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/peterkuimelis/pokeduel/internal/game"
)

// fakeClient answers server messages on the far end of a pipe.
func fakeClient(t *testing.T, conn net.Conn, reply func(ServerMessage) *ClientMessage) <-chan ServerMessage {
	t.Helper()
	seen := make(chan ServerMessage, 16)
	go func() {
		defer close(seen)
		dec := json.NewDecoder(conn)
		enc := json.NewEncoder(conn)
		for {
			var msg ServerMessage
			if err := dec.Decode(&msg); err != nil {
				return
			}
			seen <- msg
			if r := reply(msg); r != nil {
				if err := enc.Encode(r); err != nil {
					return
				}
			}
		}
	}()
	return seen
}

func boardState() *game.GameState {
	gs := game.NewGameState()
	pikachu := &game.Card{Name: "Pikachu", Kind: game.KindPokemon, Type: game.TypeLightning, HP: 60}
	band := &game.Card{Name: "Vitality Band", Kind: game.KindTrainer, TrainerType: game.TrainerTool, Effect: game.TrainerHPBonus, Value: 10}
	gs.Players[0].Active = &game.Creature{
		Card:     pikachu,
		Damage:   20,
		Energies: []*game.Card{{Name: "Lightning Energy", Kind: game.KindEnergy}},
		Tool:     band,
		Status:   game.StatusPoison,
	}
	gs.Players[0].Hand = []*game.Card{{Name: "Potion"}}
	gs.Players[1].Hand = []*game.Card{{Name: "Secret"}}
	gs.Players[1].Bench = []*game.Creature{{Card: &game.Card{Name: "Squirtle", HP: 70}}}
	return gs
}

func TestBuildStateView(t *testing.T) {
	sv := BuildStateView(boardState(), 0)

	require.NotNil(t, sv.You.Active)
	active := sv.You.Active
	assert.Equal(t, "Pikachu", active.Name)
	assert.Equal(t, 70, active.MaxHP)
	assert.Equal(t, 50, active.HP)
	assert.Equal(t, []string{"Lightning Energy"}, active.Energies)
	assert.Equal(t, "Vitality Band", active.Tool)
	assert.Equal(t, "Poisoned", active.Status)
	assert.Equal(t, []string{"Potion"}, sv.You.Hand)

	assert.Nil(t, sv.Opponent.Active)
	assert.Empty(t, sv.Opponent.Hand, "the opponent's hand stays hidden")
	assert.Equal(t, 1, sv.Opponent.HandCount)
	require.Len(t, sv.Opponent.Bench, 1)
	assert.Equal(t, "Squirtle", sv.Opponent.Bench[0].Name)
}

func TestNetworkControllerOptions(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()
	nc := NewNetworkController(server, 0, zaptest.NewLogger(t))

	answers := []*ClientMessage{
		{Type: "options", Indices: []int{1}},
		{Type: "cancel"},
		{Type: "yes_no", Answer: false},
	}
	seen := fakeClient(t, client, func(ServerMessage) *ClientMessage {
		r := answers[0]
		answers = answers[1:]
		return r
	})

	gs := boardState()
	req := game.SelectionRequest{
		Player:  0,
		Effect:  "Switch",
		Prompt:  "Choose a Pokémon",
		Options: []game.Option{{Label: "a"}, {Label: "b", Creature: gs.Players[1].Bench[0]}},
		Min:     1,
		Max:     1,
	}

	picks, err := nc.ChooseOptions(context.Background(), gs, req)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, picks)

	msg := <-seen
	assert.Equal(t, "choose_options", msg.Type)
	assert.Equal(t, "select", msg.Kind)
	assert.Equal(t, "Switch", msg.Effect)
	assert.Equal(t, "Switch", msg.State.Pending)
	require.Len(t, msg.Options, 2)
	require.NotNil(t, msg.Options[1].Creature)
	assert.Equal(t, "Squirtle", msg.Options[1].Creature.Name)

	_, err = nc.ChooseOptions(context.Background(), gs, req)
	assert.ErrorIs(t, err, game.ErrDecisionCancelled)
	<-seen

	picks, err = nc.ChooseOptions(context.Background(), gs, game.NewConfirmation(0, "Professor's Research", "Discard?"))
	require.NoError(t, err)
	assert.Equal(t, []int{1}, picks, "no maps to the second option")
	assert.Equal(t, "confirm", (<-seen).Kind)
}

func TestNetworkControllerActionFallsBackToEndTurn(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()
	nc := NewNetworkController(server, 1, zaptest.NewLogger(t))
	fakeClient(t, client, func(ServerMessage) *ClientMessage { return &ClientMessage{Type: "action", Index: 42} })

	actions := []game.Action{{Type: game.ActionPlayBasic}, {Type: game.ActionEndTurn}}
	a, err := nc.ChooseAction(context.Background(), boardState(), actions)
	require.NoError(t, err)
	assert.Equal(t, game.ActionEndTurn, a.Type)
}

func TestNetworkControllerRejectsEmptyActions(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()
	nc := NewNetworkController(server, 1, zaptest.NewLogger(t))

	_, err := nc.ChooseAction(context.Background(), boardState(), nil)
	assert.ErrorIs(t, err, game.ErrNoLegalActions)
}

func TestClientCancelsSelection(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	var out bytes.Buffer
	c := NewClient(client, "P1", strings.NewReader("c\n"), &out)

	done := make(chan error, 1)
	go func() { done <- c.RunREPL(context.Background()) }()

	enc := json.NewEncoder(server)
	dec := json.NewDecoder(server)
	require.NoError(t, enc.Encode(ServerMessage{
		Type:    "choose_options",
		Kind:    "select",
		Prompt:  "Pick one",
		Options: []OptionView{{Index: 0, Label: "a"}},
		Min:     1,
		Max:     1,
	}))
	var reply ClientMessage
	require.NoError(t, dec.Decode(&reply))
	assert.Equal(t, "cancel", reply.Type)

	require.NoError(t, enc.Encode(ServerMessage{Type: "game_over", Winner: -1, Result: "Draw (turn limit)"}))
	require.NoError(t, <-done)
	assert.Contains(t, out.String(), "Pick one")
	assert.Contains(t, out.String(), "Draw (turn limit)")
}

const serverCatalog = `
cards:
  - {id: pika, name: Pikachu, kind: pokemon, stage: basic, type: lightning, hp: 60}
  - {id: potion, name: Potion, kind: trainer, trainer_type: item, effect: potion}
`

const serverDecks = `
decks:
  - name: Host
    cards:
      - {id: potion, count: 12}
      - {id: pika, count: 1}
  - name: Joiner
    cards:
      - {id: potion, count: 12}
      - {id: pika, count: 1}
`

// syncBuffer is a bytes.Buffer safe to share with the host REPL goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestServerPlaysDuelWithJoiner(t *testing.T) {
	catalog, err := game.ParseCatalog([]byte(serverCatalog))
	require.NoError(t, err)
	deckFile := filepath.Join(t.TempDir(), "decks.yaml")
	require.NoError(t, os.WriteFile(deckFile, []byte(serverDecks), 0o644))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	var hostOut syncBuffer
	s := &Server{
		Catalog:    catalog,
		DeckFile:   deckFile,
		HostDeck:   1,
		Duel:       game.DuelConfig{NoShuffle: true, FirstPlayer: 1, MaxTurns: 1, Seed: 1},
		Logger:     zaptest.NewLogger(t),
		HostInput:  strings.NewReader("1\n1\n1\n"),
		HostOutput: &hostOut,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	served := make(chan error, 1)
	go func() { served <- s.Serve(ctx, ln) }()

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	enc := json.NewEncoder(conn)
	dec := json.NewDecoder(conn)
	require.NoError(t, enc.Encode(ClientMessage{Type: "join", DeckNumber: 2}))

	var result ServerMessage
	for {
		var msg ServerMessage
		require.NoError(t, dec.Decode(&msg))
		if msg.Type == "choose_action" {
			require.NotEmpty(t, msg.Actions)
			assert.Equal(t, "End Turn", msg.Actions[len(msg.Actions)-1].Desc)
			require.NoError(t, enc.Encode(ClientMessage{Type: "action", Index: len(msg.Actions) - 1}))
		}
		if msg.Type == "game_over" {
			result = msg
			break
		}
	}

	assert.Equal(t, -1, result.Winner)
	assert.Contains(t, result.Result, "turn limit")
	require.NoError(t, <-served)
	assert.Contains(t, hostOut.String(), "Pikachu")
}
