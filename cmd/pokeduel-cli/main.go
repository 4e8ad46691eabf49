package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"go.uber.org/zap"

	"github.com/peterkuimelis/pokeduel/internal/ai"
	"github.com/peterkuimelis/pokeduel/internal/config"
	"github.com/peterkuimelis/pokeduel/internal/game"
	"github.com/peterkuimelis/pokeduel/internal/log"
	pdnet "github.com/peterkuimelis/pokeduel/internal/net"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch os.Args[1] {
	case "host":
		err = runHost(ctx, os.Args[2:])
	case "join":
		err = runJoin(ctx, os.Args[2:])
	case "sim":
		err = runSim(ctx, os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  pokeduel host [--config FILE] [--deck N] [--port P]")
	fmt.Println("  pokeduel join [--config FILE] [--deck N] [--addr ADDR]")
	fmt.Println("  pokeduel sim  [--config FILE] [--deck N] [--vs M] [--games G] [--quiet]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  host    Start a game server and play as Player 1")
	fmt.Println("  join    Connect to a game server and play as Player 2")
	fmt.Println("  sim     Play two built-in AI players against each other")
}

// env is what every subcommand loads before it starts.
type env struct {
	cfg     *config.Config
	logger  *zap.Logger
	catalog *game.Catalog
}

func load(path string) (*env, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	catalog, err := game.LoadCatalog(cfg.Game.Catalog)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	logger.Debug("catalog loaded", zap.String("file", cfg.Game.Catalog), zap.Int("cards", catalog.Len()))
	return &env{cfg: cfg, logger: logger, catalog: catalog}, nil
}

func runHost(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("host", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	deck := fs.Int("deck", 1, "deck number to use (from the decks file)")
	port := fs.String("port", "", "TCP port to listen on (default from config)")
	fs.Parse(args)

	e, err := load(*configPath)
	if err != nil {
		return err
	}
	defer e.logger.Sync()
	if *port == "" {
		*port = strconv.Itoa(e.cfg.Server.TCPPort)
	}

	srv := &pdnet.Server{
		Catalog:  e.catalog,
		DeckFile: e.cfg.Game.Decks,
		Port:     *port,
		HostDeck: *deck,
		Duel:     e.cfg.DuelConfig(),
		Logger:   e.logger,
	}
	return srv.Run(ctx)
}

func runJoin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("join", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	deck := fs.Int("deck", 2, "deck number to use (from the host's decks file)")
	addr := fs.String("addr", "", "server address to connect to (default localhost:<tcp_port>)")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *addr == "" {
		*addr = fmt.Sprintf("localhost:%d", cfg.Server.TCPPort)
	}
	return pdnet.Connect(ctx, *addr, *deck)
}

func runSim(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sim", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	deck := fs.Int("deck", 1, "deck number for player 1")
	vs := fs.Int("vs", 2, "deck number for player 2")
	games := fs.Int("games", 1, "number of games to play")
	quiet := fs.Bool("quiet", false, "print only results")
	fs.Parse(args)

	e, err := load(*configPath)
	if err != nil {
		return err
	}
	defer e.logger.Sync()

	name0, _, err := game.DeckByNumber(e.cfg.Game.Decks, e.catalog, *deck)
	if err != nil {
		return err
	}
	name1, _, err := game.DeckByNumber(e.cfg.Game.Decks, e.catalog, *vs)
	if err != nil {
		return err
	}

	var wins [3]int // P1, P2, draws
	for g := 0; g < *games; g++ {
		// Each game gets fresh card copies.
		_, deck0, _ := game.DeckByNumber(e.cfg.Game.Decks, e.catalog, *deck)
		_, deck1, _ := game.DeckByNumber(e.cfg.Game.Decks, e.catalog, *vs)

		cfg := e.cfg.DuelConfig()
		if cfg.Seed != 0 {
			cfg.Seed += int64(g)
		}
		cfg.Catalog = e.catalog
		cfg.Deck0, cfg.Deck1 = deck0, deck1
		cfg.Zap = e.logger
		if *quiet {
			cfg.Logger = log.NewMemoryLogger()
		} else {
			cfg.Logger = log.NewTextLogger(os.Stdout)
		}

		p0 := ai.New(e.logger.Named("p1"), e.cfg.AI.EvolutionPriority)
		p1 := ai.New(e.logger.Named("p2"), e.cfg.AI.EvolutionPriority)
		d := game.NewDuel(cfg, p0, p1)
		winner, err := d.Run(ctx)
		if err != nil && d.State.Result == "" {
			return fmt.Errorf("game %d: %w", g+1, err)
		}
		switch winner {
		case 0, 1:
			wins[winner]++
		default:
			wins[2]++
		}
		fmt.Printf("Game %d: %s\n", g+1, d.State.Result)
	}

	if *games > 1 {
		fmt.Printf("\n%s: %d  %s: %d  draws: %d\n", name0, wins[0], name1, wins[1], wins[2])
	}
	return nil
}
