// Package poolctl administers a game's dice pool outside of Slack.
//
// The bot never creates a pool on its own, so an operator seeds the first
// record with init and adjusts balances with set or withdraw.
package poolctl

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"gopkg.in/yaml.v3"

	entrypoint "github.com/louisbranch/rollbot/internal/platform/cmd"
	platformgrpc "github.com/louisbranch/rollbot/internal/platform/grpc"
	"github.com/louisbranch/rollbot/internal/platform/timeouts"
	server "github.com/louisbranch/rollbot/internal/services/rollbot/app"
	domain "github.com/louisbranch/rollbot/internal/services/rollbot/domain/pool"
	"github.com/louisbranch/rollbot/internal/services/rollbot/pool"
	"github.com/louisbranch/rollbot/internal/services/rollbot/storage"
)

// Commands understood by Run.
const (
	CommandInit     = "init"
	CommandShow     = "show"
	CommandSet      = "set"
	CommandWithdraw = "withdraw"
	CommandHealth   = "health"
)

// Config holds poolctl command configuration.
type Config struct {
	Game        string        `env:"ROLLBOT_POOL_GAME" envDefault:"Shadowrun"`
	Allocator   string        `env:"ROLLBOT_POOL_ALLOCATOR" envDefault:"seventeen"`
	StoreDriver string        `env:"ROLLBOT_STORE_DRIVER" envDefault:"sqlite"`
	DBPath      string        `env:"ROLLBOT_DB_PATH" envDefault:"data/rollbot.db"`
	PostgresDSN string        `env:"ROLLBOT_POSTGRES_DSN"`
	Timeout     time.Duration `env:"ROLLBOT_POOLCTL_TIMEOUT" envDefault:"30s"`
	HealthAddr  string        `env:"ROLLBOT_POOLCTL_HEALTH_ADDR" envDefault:"localhost:8081"`

	Command     string
	File        string
	Force       bool
	Participant string
	Count       int
	Amount      int
}

// PoolFile is the YAML document accepted by init.
type PoolFile struct {
	Game  string         `yaml:"game"`
	Pools map[string]int `yaml:"pools"`
}

// ParseConfig parses environment, global flags, the command name and its
// flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Game, "game", cfg.Game, "game whose pool is administered")
	fs.StringVar(&cfg.Allocator, "allocator", cfg.Allocator, "participant acting as game master")
	fs.StringVar(&cfg.StoreDriver, "store", cfg.StoreDriver, "pool store driver: sqlite, postgres or memory")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite database path")
	fs.StringVar(&cfg.PostgresDSN, "postgres-dsn", cfg.PostgresDSN, "PostgreSQL connection string")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "overall timeout")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return Config{}, errors.New("command is required: init, show, set, withdraw or health")
	}
	cfg.Command = strings.ToLower(rest[0])

	sub := flag.NewFlagSet(cfg.Command, flag.ContinueOnError)
	sub.SetOutput(fs.Output())
	switch cfg.Command {
	case CommandInit:
		sub.StringVar(&cfg.File, "file", "", "YAML file with the starting pools")
		sub.BoolVar(&cfg.Force, "force", false, "append a new record even if the pool exists")
	case CommandShow:
	case CommandSet:
		sub.StringVar(&cfg.Participant, "participant", "", "participant to adjust")
		sub.IntVar(&cfg.Count, "count", -1, "new dice count")
	case CommandWithdraw:
		sub.StringVar(&cfg.Participant, "participant", "", "participant spending dice")
		sub.IntVar(&cfg.Amount, "amount", 0, "dice to withdraw")
	case CommandHealth:
		sub.StringVar(&cfg.HealthAddr, "addr", cfg.HealthAddr, "rollbot gRPC health address")
	default:
		return Config{}, fmt.Errorf("unknown command %q", rest[0])
	}
	if err := sub.Parse(rest[1:]); err != nil {
		return Config{}, err
	}

	switch cfg.Command {
	case CommandInit:
		if strings.TrimSpace(cfg.File) == "" {
			return Config{}, errors.New("-file is required")
		}
	case CommandSet:
		if strings.TrimSpace(cfg.Participant) == "" {
			return Config{}, errors.New("-participant is required")
		}
		if cfg.Count < 0 {
			return Config{}, errors.New("-count must be >= 0")
		}
	case CommandWithdraw:
		if strings.TrimSpace(cfg.Participant) == "" {
			return Config{}, errors.New("-participant is required")
		}
		if cfg.Amount < 0 {
			return Config{}, errors.New("-amount must be >= 0")
		}
	}
	return cfg, nil
}

// Run executes the configured poolctl command.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}

	if cfg.Command == CommandHealth {
		return checkHealth(ctx, cfg.HealthAddr, out, errOut)
	}

	var file PoolFile
	if cfg.Command == CommandInit {
		var err error
		file, err = readPoolFile(cfg.File)
		if err != nil {
			return err
		}
		if file.Game != "" && file.Game != cfg.Game {
			return fmt.Errorf("pool file %s is for game %q, not %q", cfg.File, file.Game, cfg.Game)
		}
	}

	store, closeStore, err := server.OpenPoolStore(ctx, server.StoreConfig{
		Driver:      cfg.StoreDriver,
		SQLitePath:  cfg.DBPath,
		PostgresDSN: cfg.PostgresDSN,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			fmt.Fprintf(errOut, "Error: close pool store: %v\n", err)
		}
	}()

	return runWithStore(ctx, cfg, file, store, out)
}

func runWithStore(ctx context.Context, cfg Config, file PoolFile, store storage.PoolStore, out io.Writer) error {
	service, err := pool.NewService(store, pool.Config{
		Game:      cfg.Game,
		Allocator: cfg.Allocator,
	})
	if err != nil {
		return err
	}

	var record storage.PoolRecord
	switch cfg.Command {
	case CommandInit:
		record, err = service.Initialize(ctx, file.Pools, cfg.Force)
		if err != nil {
			return fmt.Errorf("initialize pool: %w", err)
		}
	case CommandShow:
		record, err = service.Snapshot(ctx)
		if err != nil {
			return fmt.Errorf("load pool: %w", err)
		}
	case CommandSet:
		record, err = service.Set(ctx, cfg.Participant, cfg.Count)
		if err != nil {
			return fmt.Errorf("set pool: %w", err)
		}
	case CommandWithdraw:
		record, err = service.Withdraw(ctx, cfg.Participant, cfg.Amount)
		if err != nil {
			return fmt.Errorf("withdraw from pool: %w", err)
		}
	default:
		return fmt.Errorf("unknown command %q", cfg.Command)
	}
	return writeRecord(out, record, service.Allocator())
}

func readPoolFile(path string) (PoolFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PoolFile{}, fmt.Errorf("read pool file: %w", err)
	}
	var file PoolFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return PoolFile{}, fmt.Errorf("parse pool file %s: %w", path, err)
	}
	file.Game = strings.TrimSpace(file.Game)
	if len(file.Pools) == 0 {
		return PoolFile{}, fmt.Errorf("pool file %s has no pools", path)
	}
	return file, nil
}

// writeRecord prints record as a table, ordinary participants first in name
// order and the allocator last.
func writeRecord(out io.Writer, record storage.PoolRecord, allocator string) error {
	state, err := domain.NewState(allocator, record.Pools)
	if err != nil {
		return err
	}

	data := pterm.TableData{{"Participant", "Dice"}}
	for _, name := range state.Ordinary() {
		data = append(data, []string{name, fmt.Sprint(state.Get(name))})
	}
	data = append(data, []string{allocator + " (GM)", fmt.Sprint(state.Get(allocator))})
	data = append(data, []string{"Total", fmt.Sprint(state.Total())})

	table, err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("render pool table: %w", err)
	}
	fmt.Fprintf(out, "%s pool, version %d, recorded %s\n", record.Game, record.Version, record.RecordedAt.UTC().Format(time.RFC3339))
	fmt.Fprintln(out, table)
	return nil
}

func checkHealth(ctx context.Context, addr string, out io.Writer, errOut io.Writer) error {
	logger := log.New(errOut, "", 0)
	conn, err := platformgrpc.DialWithHealth(
		ctx,
		nil,
		addr,
		server.PoolHealthService,
		timeouts.GRPCDial,
		logger.Printf,
		platformgrpc.DefaultClientDialOptions()...,
	)
	if err != nil {
		return fmt.Errorf("check rollbot health at %s: %w", addr, err)
	}
	defer conn.Close()
	fmt.Fprintf(out, "%s at %s is SERVING\n", server.PoolHealthService, addr)
	return nil
}
