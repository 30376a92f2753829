package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"github.com/angelmondragon/garmentz-backend/internal/app"
	"github.com/angelmondragon/garmentz-backend/pkg/config"
	"github.com/angelmondragon/garmentz-backend/pkg/db"
	"github.com/angelmondragon/garmentz-backend/pkg/logger"
	"github.com/angelmondragon/garmentz-backend/pkg/redis"
)

func main() {
	cliApp := &cli.App{
		Name:  "matchctl",
		Usage: "Inspect and run supplier matching from the command line",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "read straight from postgres without the redis read cache",
			},
		},
		Commands: []*cli.Command{
			quotesCmd,
			suppliersCmd,
			matchesCmd,
			planCmd,
			assignCmd,
			refreshStatsCmd,
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error: ", err)
		os.Exit(1)
	}
}

// runtime holds the resources a command needs; close releases them.
type runtime struct {
	cfg      *config.Config
	logg     *logger.Logger
	db       *db.Client
	redis    *redis.Client
	services *app.Services
}

func bootstrap(c *cli.Context) (*runtime, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logg := logger.New(logger.Options{
		ServiceName: "matchctl",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Output:      os.Stderr,
	})

	dbClient, err := db.New(c.Context, cfg.DB, logg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap database: %w", err)
	}
	rt := &runtime{cfg: cfg, logg: logg, db: dbClient}

	params := app.Params{Config: cfg, Logger: logg, DB: dbClient}
	if !c.Bool("no-cache") {
		redisClient, err := redis.New(c.Context, cfg.Redis, logg)
		if err != nil {
			return nil, multierr.Append(fmt.Errorf("bootstrap redis: %w", err), dbClient.Close())
		}
		rt.redis = redisClient
		params.Store = redisClient
	}

	services, err := app.Build(params)
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("wire services: %w", err), rt.close())
	}
	rt.services = services
	return rt, nil
}

func (rt *runtime) close() error {
	var errs error
	if rt.redis != nil {
		errs = multierr.Append(errs, rt.redis.Close())
	}
	if rt.db != nil {
		errs = multierr.Append(errs, rt.db.Close())
	}
	return errs
}

// withRuntime runs fn against a bootstrapped runtime and always releases it.
func withRuntime(fn func(ctx context.Context, c *cli.Context, rt *runtime) error) cli.ActionFunc {
	return func(c *cli.Context) (err error) {
		rt, err := bootstrap(c)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, rt.close())
		}()
		return fn(c.Context, c, rt)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
