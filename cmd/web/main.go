package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/peterkuimelis/pokeduel/internal/config"
	"github.com/peterkuimelis/pokeduel/internal/game"
	"github.com/peterkuimelis/pokeduel/internal/web"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	port := flag.Int("port", 0, "HTTP port to listen on (default from config)")
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
	if *port == 0 {
		*port = cfg.Server.WebPort
	}

	srv := web.NewServer(catalog, cfg.Game.Decks, logger)
	logger.Info("web UI listening", zap.String("url", fmt.Sprintf("http://localhost:%d", *port)))
	if err := srv.ListenAndServe(fmt.Sprintf(":%d", *port)); err != nil {
		logger.Fatal("serve", zap.Error(err))
	}
}
