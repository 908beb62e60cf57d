// Command relgen generates row structs, insertable structs and model
// implementations from a declarative schema definition.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/relgen/relgen/compiler/gen"
	gensql "github.com/relgen/relgen/compiler/gen/sql"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	app := &cli.Command{
		Name:    "relgen",
		Usage:   "Generate data-access code from a schema definition",
		Version: fmt.Sprintf("%s (%s)", version, commit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error)",
				Sources: cli.EnvVars("RELGEN_LOG_LEVEL"),
				Value:   "info",
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			level, err := zerolog.ParseLevel(c.String("log-level"))
			if err != nil {
				return ctx, fmt.Errorf("parse log level: %w", err)
			}
			log = log.Level(level)
			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "Run one generation pass (or keep regenerating with --watch)",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "YAML configuration file",
					},
					&cli.StringFlag{
						Name:    "schema",
						Aliases: []string{"s"},
						Usage:   "schema definition file",
					},
					&cli.StringFlag{
						Name:  "generated-root",
						Usage: "machine-owned output directory",
					},
					&cli.StringFlag{
						Name:  "custom-root",
						Usage: "hand-written tree whose manifest is maintained",
					},
					&cli.StringFlag{
						Name:  "package",
						Usage: "import path of the generated root package",
					},
					&cli.StringFlag{
						Name:  "table",
						Usage: "restrict the run to a single table",
					},
					&cli.StringSliceFlag{
						Name:  "ignore",
						Usage: "table to skip (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "structs-only",
						Usage: "emit row structs and insertables only",
					},
					&cli.BoolFlag{
						Name:  "strict-hooks",
						Usage: "treat hook failures as a run failure",
					},
					&cli.BoolFlag{
						Name:  "watch",
						Usage: "regenerate whenever the schema file changes",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return generate(ctx, log, c)
				},
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("relgen failed")
		os.Exit(1)
	}
}

// generate assembles the engine config from the optional file and the flags
// (flags win) and runs the pipeline, once or under a watch.
func generate(ctx context.Context, log zerolog.Logger, c *cli.Command) error {
	var opts []gen.Option
	if path := c.String("config"); path != "" {
		fc, err := loadFileConfig(path)
		if err != nil {
			return err
		}
		opts = append(opts, fc.options()...)
	}
	if v := c.String("schema"); v != "" {
		opts = append(opts, gen.WithSchemaPath(v))
	}
	if v := c.String("generated-root"); v != "" {
		opts = append(opts, gen.WithGeneratedRoot(v))
	}
	if v := c.String("custom-root"); v != "" {
		opts = append(opts, gen.WithCustomRoot(v))
	}
	if v := c.String("package"); v != "" {
		opts = append(opts, gen.WithPackage(v))
	}
	if v := c.String("table"); v != "" {
		opts = append(opts, gen.WithTable(v))
	}
	if v := c.StringSlice("ignore"); len(v) > 0 {
		opts = append(opts, gen.WithIgnoreTables(v...))
	}
	if c.Bool("structs-only") {
		opts = append(opts, gen.WithStructsOnly())
	}
	opts = append(opts, gen.WithLogger(log))

	cfg, err := gen.NewConfig(opts...)
	if err != nil {
		return err
	}
	strict := c.Bool("strict-hooks")

	run := func(ctx context.Context) error {
		report, err := gensql.Generate(ctx, cfg)
		if err != nil {
			return err
		}
		for _, f := range report.HookFailures {
			log.Warn().
				Str("phase", string(f.Phase)).
				Str("command", f.Command).
				Int("exit", f.ExitCode).
				Str("output", f.Output).
				Msg("hook failed")
		}
		if strict && !report.OK() {
			return fmt.Errorf("%d hook(s) failed", len(report.HookFailures))
		}
		return nil
	}

	if err := run(ctx); err != nil {
		return err
	}
	if c.Bool("watch") {
		if cfg.SchemaPath == "" {
			return fmt.Errorf("--watch requires a schema file path")
		}
		return watchAndRun(ctx, log, cfg.SchemaPath, run)
	}
	return nil
}
