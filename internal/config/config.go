// Package config loads pokeduel settings from a YAML file with POKEDUEL_*
// environment overrides.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/peterkuimelis/pokeduel/internal/game"
)

type Config struct {
	Game    GameConfig    `mapstructure:"game"`
	AI      AIConfig      `mapstructure:"ai"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type GameConfig struct {
	Catalog        string   `mapstructure:"catalog"`
	Decks          string   `mapstructure:"decks"`
	Seed           int64    `mapstructure:"seed"`
	MaxTurns       int      `mapstructure:"max_turns"`
	MulliganLimit  int      `mapstructure:"mulligan_limit"`
	PrizeCount     int      `mapstructure:"prize_count"`
	ActivePriority []string `mapstructure:"active_priority"`
}

type AIConfig struct {
	EvolutionPriority []string `mapstructure:"evolution_priority"`
}

type ServerConfig struct {
	TCPPort int `mapstructure:"tcp_port"`
	WebPort int `mapstructure:"web_port"`
	MCPPort int `mapstructure:"mcp_port"`
}

type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("game.catalog", "data/cards.yaml")
	v.SetDefault("game.decks", "data/decks.yaml")
	v.SetDefault("game.seed", 0)
	v.SetDefault("game.max_turns", 100)
	v.SetDefault("game.mulligan_limit", game.MulliganLimit)
	v.SetDefault("game.prize_count", game.PrizeCount)
	v.SetDefault("game.active_priority", []string{})
	v.SetDefault("ai.evolution_priority", []string{})
	v.SetDefault("server.tcp_port", 9999)
	v.SetDefault("server.web_port", 8080)
	v.SetDefault("server.mcp_port", 10000)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.development", false)
}

// Load reads configPath and applies environment overrides such as
// POKEDUEL_SERVER_TCP_PORT. An empty path uses defaults and the environment
// only.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("POKEDUEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// DuelConfig maps the game section onto an engine config. Decks, loggers and
// the catalog are filled in by the caller.
func (c *Config) DuelConfig() game.DuelConfig {
	return game.DuelConfig{
		Seed:           c.Game.Seed,
		MaxTurns:       c.Game.MaxTurns,
		MulliganLimit:  c.Game.MulliganLimit,
		PrizeCount:     c.Game.PrizeCount,
		ActivePriority: c.Game.ActivePriority,
	}
}

// NewLogger builds the process logger. Output goes to stderr so stdio
// transports stay clean.
func NewLogger(cfg LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.OutputPaths = []string{"stderr"}
	zapCfg.ErrorOutputPaths = []string{"stderr"}

	return zapCfg.Build()
}
