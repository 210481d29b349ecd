// Package rollbot parses rollbot command flags and composes its entrypoint.
package rollbot

import (
	"context"
	"flag"
	"fmt"

	entrypoint "github.com/louisbranch/rollbot/internal/platform/cmd"
	"github.com/louisbranch/rollbot/internal/platform/config"
	server "github.com/louisbranch/rollbot/internal/services/rollbot/app"
)

// Config holds rollbot command configuration.
type Config struct {
	HTTPAddr      string   `env:"ROLLBOT_HTTP_ADDR"        envDefault:":8080"`
	GRPCAddr      string   `env:"ROLLBOT_GRPC_ADDR"        envDefault:":8081"`
	SlackTokens   []string `env:"ROLLBOT_SLACK_TOKENS"     envSeparator:","`
	SlackBotToken string   `env:"ROLLBOT_SLACK_BOT_TOKEN"`
	SlackAPIURL   string   `env:"ROLLBOT_SLACK_API_URL"    envDefault:"https://slack.com/api"`
	Game          string   `env:"ROLLBOT_POOL_GAME"        envDefault:"Shadowrun"`
	Allocator     string   `env:"ROLLBOT_POOL_ALLOCATOR"   envDefault:"seventeen"`
	MaxAttempts   int      `env:"ROLLBOT_POOL_MAX_ATTEMPTS" envDefault:"5"`
	StoreDriver   string   `env:"ROLLBOT_STORE_DRIVER"     envDefault:"sqlite"`
	DBPath        string   `env:"ROLLBOT_DB_PATH"          envDefault:"data/rollbot.db"`
	PostgresDSN   string   `env:"ROLLBOT_POSTGRES_DSN"`
	MaxDice       int      `env:"ROLLBOT_MAX_DICE"         envDefault:"100"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	tokens := ""
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "slash command HTTP listen address")
	fs.StringVar(&cfg.GRPCAddr, "grpc-addr", cfg.GRPCAddr, "gRPC health listen address (empty disables)")
	fs.StringVar(&tokens, "slack-tokens", "", "comma-separated Slack verification tokens")
	fs.StringVar(&cfg.SlackAPIURL, "slack-api-url", cfg.SlackAPIURL, "Slack Web API base URL")
	fs.StringVar(&cfg.Game, "game", cfg.Game, "game whose dice pool is served")
	fs.StringVar(&cfg.Allocator, "allocator", cfg.Allocator, "participant acting as game master")
	fs.IntVar(&cfg.MaxAttempts, "max-attempts", cfg.MaxAttempts, "pool update attempts before giving up on conflicts")
	fs.StringVar(&cfg.StoreDriver, "store", cfg.StoreDriver, "pool store driver: sqlite, postgres or memory")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite database path")
	fs.StringVar(&cfg.PostgresDSN, "postgres-dsn", cfg.PostgresDSN, "PostgreSQL connection string")
	fs.IntVar(&cfg.MaxDice, "max-dice", cfg.MaxDice, "largest number of dice in one roll")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if tokens != "" {
		cfg.SlackTokens = config.SplitList(tokens)
	}
	if cfg.MaxDice <= 0 {
		return Config{}, fmt.Errorf("max dice must be greater than zero")
	}
	return cfg, nil
}

// Run builds the rollbot app and serves slash commands until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceRollbot, func(ctx context.Context) error {
		if err := server.Run(ctx, server.Config{
			HTTPAddr:      cfg.HTTPAddr,
			GRPCAddr:      cfg.GRPCAddr,
			SlackTokens:   cfg.SlackTokens,
			SlackBotToken: cfg.SlackBotToken,
			SlackAPIURL:   cfg.SlackAPIURL,
			Game:          cfg.Game,
			Allocator:     cfg.Allocator,
			MaxAttempts:   cfg.MaxAttempts,
			MaxDice:       cfg.MaxDice,
			Store: server.StoreConfig{
				Driver:      cfg.StoreDriver,
				SQLitePath:  cfg.DBPath,
				PostgresDSN: cfg.PostgresDSN,
			},
		}); err != nil {
			return fmt.Errorf("serve rollbot: %w", err)
		}
		return nil
	})
}
