package net

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"

	"go.uber.org/zap"

	"github.com/peterkuimelis/pokeduel/internal/game"
	"github.com/peterkuimelis/pokeduel/internal/log"
)

// Server hosts a duel between the local player and one TCP client.
type Server struct {
	Catalog  *game.Catalog
	DeckFile string
	Port     string
	HostDeck int             // host's deck number (1-indexed)
	Duel     game.DuelConfig // rules settings; decks and loggers are filled in
	Logger   *zap.Logger

	// Host terminal; nil uses stdin and stdout.
	HostInput  io.Reader
	HostOutput io.Writer
}

// Run listens on Port, waits for a client to join, then runs the duel.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+s.Port)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer ln.Close()
	return s.Serve(ctx, ln)
}

// Serve accepts exactly one joiner from ln and plays the duel.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	in, out := s.HostInput, s.HostOutput
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}

	fmt.Fprintf(out, "Waiting for opponent on %s...\n", ln.Addr())

	conn, err := ln.Accept()
	if err != nil {
		return fmt.Errorf("accept: %w", err)
	}
	defer conn.Close()

	logger.Info("opponent connected", zap.String("remote", conn.RemoteAddr().String()))

	// The first message must be the joiner's deck choice. The decoder is
	// handed on to the controller so no buffered bytes are lost.
	dec := json.NewDecoder(conn)
	var joinMsg ClientMessage
	if err := dec.Decode(&joinMsg); err != nil {
		return fmt.Errorf("read join message: %w", err)
	}
	joinerDeck := joinMsg.DeckNumber
	if joinerDeck == 0 {
		joinerDeck = 2
	}

	hostDeckName, hostCards, err := game.DeckByNumber(s.DeckFile, s.Catalog, s.HostDeck)
	if err != nil {
		return fmt.Errorf("load host deck: %w", err)
	}
	joinerDeckName, joinerCards, err := game.DeckByNumber(s.DeckFile, s.Catalog, joinerDeck)
	if err != nil {
		_ = json.NewEncoder(conn).Encode(ServerMessage{Type: "error", Error: err.Error()})
		return fmt.Errorf("load joiner deck: %w", err)
	}

	logger.Info("decks loaded",
		zap.String("host", hostDeckName), zap.Int("host_cards", len(hostCards)),
		zap.String("joiner", joinerDeckName), zap.Int("joiner_cards", len(joinerCards)))

	// The host plays through the same protocol over an in-memory pipe.
	hostConn, hostServerConn := net.Pipe()
	defer hostConn.Close()
	defer hostServerConn.Close()

	// Player 0 = host, Player 1 = joiner
	hostCtrl := NewNetworkController(hostServerConn, 0, logger)
	joinerCtrl := NewNetworkController(conn, 1, logger)
	joinerCtrl.dec = dec

	cfg := s.Duel
	cfg.Deck0 = hostCards
	cfg.Deck1 = joinerCards
	cfg.Catalog = s.Catalog
	cfg.Logger = log.NewZapLogger(logger)
	cfg.Zap = logger
	duel := game.NewDuel(cfg, hostCtrl, joinerCtrl)
	logger.Info("duel created", zap.String("match", duel.ID))

	errCh := make(chan error, 2)
	go func() {
		client := NewClient(hostConn, "P1", in, out)
		errCh <- client.RunREPL(ctx)
	}()

	go func() {
		winner, err := duel.Run(ctx)
		if err != nil {
			_ = joinerCtrl.SendError(err)
			_ = hostCtrl.SendError(err)
			errCh <- fmt.Errorf("duel error: %w", err)
			return
		}
		logger.Info("duel finished", zap.Int("winner", winner), zap.String("result", duel.State.Result))

		_ = joinerCtrl.SendGameOver(winner, duel.State.Result)
		_ = hostCtrl.SendGameOver(winner, duel.State.Result)
		errCh <- nil
	}()

	// Wait for either the duel or the REPL to finish
	return <-errCh
}
