package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/peterkuimelis/pokeduel/internal/config"
	"github.com/peterkuimelis/pokeduel/internal/game"
	pdmcp "github.com/peterkuimelis/pokeduel/internal/mcp"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	port := flag.String("port", "", "TCP port for human player connection (default from config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	catalog, err := game.LoadCatalog(cfg.Game.Catalog)
	if err != nil {
		logger.Fatal("load catalog", zap.Error(err))
	}
	if *port == "" {
		*port = strconv.Itoa(cfg.Server.MCPPort)
	}

	tools := &pdmcp.Tools{
		Catalog:           catalog,
		DecksFile:         cfg.Game.Decks,
		Port:              *port,
		Duel:              cfg.DuelConfig(),
		EvolutionPriority: cfg.AI.EvolutionPriority,
		Logger:            logger,
	}

	s := server.NewMCPServer("pokeduel", "1.0.0")
	tools.Register(s)

	logger.Info("serving MCP over stdio", zap.String("human_port", *port))
	if err := server.ServeStdio(s); err != nil {
		logger.Fatal("serve", zap.Error(err))
	}
}
