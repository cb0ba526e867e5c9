// Command generic_explorer evaluates Go type expressions in the scope of a package and prints the named types
// they mention, or renders the declarations they reach as TypeScript, JSON Schema or Postgres DDL.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	goTypes "go/types"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/vphpersson/generic_explorer/internal/config"
	xlog "github.com/vphpersson/generic_explorer/internal/log"
	"github.com/vphpersson/generic_explorer/pkg/explorer"
	"github.com/vphpersson/generic_explorer/pkg/handlers/mentioned"
	"github.com/vphpersson/generic_explorer/pkg/loader"
	"github.com/vphpersson/generic_explorer/pkg/producers/jsonschema"
	"github.com/vphpersson/generic_explorer/pkg/producers/postgres"
	"github.com/vphpersson/generic_explorer/pkg/producers/typescript"
	"github.com/vphpersson/generic_explorer/pkg/types/bounds_policy"
	"golang.org/x/sync/errgroup"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout io.Writer, stderr io.Writer) int {
	cfg, showVersion, err := parseConfig(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	if showVersion {
		fmt.Fprintf(stdout, "generic_explorer %s\n", Version)
		return exitOK
	}

	xlog.Configure(xlog.Config{Level: cfg.LogLevel, Output: stderr})
	logger := xlog.WithComponent("cli")

	output, err := execute(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Str(xlog.FieldFormat, cfg.Format).Msg("failed to produce output")
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailure
	}

	if _, err := io.WriteString(stdout, output); err != nil {
		fmt.Fprintf(stderr, "Error writing output: %v\n", err)
		return exitFailure
	}

	return exitOK
}

// parseConfig builds the configuration from the defaults, the TOML file named by -config, and the flags that were
// set explicitly, in that order of precedence.
func parseConfig(args []string, stderr io.Writer) (config.Config, bool, error) {
	fs := flag.NewFlagSet("generic_explorer", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: generic_explorer [flags] <type expression>...\n\nFlags:\n")
		fs.PrintDefaults()
	}

	defaults := config.Default()

	configPath := fs.String("config", "", "path to a TOML configuration file")
	pkg := fs.String("package", defaults.Package, "package in whose scope type expressions are evaluated")
	dir := fs.String("dir", defaults.Dir, "directory in which packages are resolved")
	format := fs.String("format", defaults.Format, "output format: "+strings.Join(config.Formats, ", "))
	implicitBounds := fs.String(
		"implicit-bounds",
		defaults.ImplicitBoundsPolicy.String(),
		"whether the implicit any bound of type parameters is explored: ignore or process",
	)
	logLevel := fs.String("log-level", defaults.LogLevel, "log level (debug, info, warn, error)")
	nominal := fs.Bool("nominal", defaults.NominalTypes, "generate nominal TypeScript type aliases")
	showVersion := fs.Bool("version", false, "print the version and exit")

	if err := fs.Parse(args); err != nil {
		return config.Config{}, false, err
	}

	if *showVersion {
		return config.Config{}, true, nil
	}

	cfg := defaults
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath, cfg)
		if err != nil {
			return config.Config{}, false, err
		}
	}

	var flagErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "package":
			cfg.Package = *pkg
		case "dir":
			cfg.Dir = *dir
		case "format":
			cfg.Format = strings.ToLower(*format)
		case "implicit-bounds":
			policy, err := bounds_policy.Parse(*implicitBounds)
			if err != nil {
				flagErr = fmt.Errorf("%w: -implicit-bounds: %w", errUsage, err)
				return
			}
			cfg.ImplicitBoundsPolicy = policy
		case "log-level":
			cfg.LogLevel = *logLevel
		case "nominal":
			cfg.NominalTypes = *nominal
		}
	})
	if flagErr != nil {
		return config.Config{}, false, flagErr
	}

	if fs.NArg() > 0 {
		cfg.Expressions = fs.Args()
	}

	if err := config.Validate(cfg); err != nil {
		return config.Config{}, false, err
	}

	return cfg, false, nil
}

func execute(ctx context.Context, cfg config.Config, logger zerolog.Logger) (string, error) {
	typeLoader := loader.New(
		loader.WithDir(cfg.Dir),
		loader.WithBuildFlags(cfg.BuildFlags...),
		loader.WithLogger(xlog.WithComponent("loader")),
	)

	pkg, err := typeLoader.Load(ctx, cfg.Package)
	if err != nil {
		return "", fmt.Errorf("loader load: %w", err)
	}

	logger.Debug().
		Str(xlog.FieldPackage, pkg.Path()).
		Str(xlog.FieldFormat, cfg.Format).
		Int("expressions", len(cfg.Expressions)).
		Msg("evaluating type expressions")

	typeList := make([]goTypes.Type, len(cfg.Expressions))
	lines := make([]string, len(cfg.Expressions))

	g, gctx := errgroup.WithContext(ctx)
	for i, expression := range cfg.Expressions {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			t, err := typeLoader.Eval(gctx, cfg.Package, expression)
			if err != nil {
				return fmt.Errorf("eval %q: %w", expression, err)
			}
			typeList[i] = t

			logger.Debug().Str(xlog.FieldExpression, expression).Str("type", t.String()).Msg("evaluated")

			if cfg.Format != config.FormatMentioned {
				return nil
			}

			set, err := mentioned.Get(t, explorer.WithImplicitBoundsPolicy(cfg.ImplicitBoundsPolicy))
			if err != nil {
				return fmt.Errorf("mentioned get %q: %w", expression, err)
			}
			lines[i] = fmt.Sprintf("%s: %s", expression, strings.Join(set.Names(goTypes.RelativeTo(pkg)), ", "))

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	switch cfg.Format {
	case config.FormatMentioned:
		return strings.Join(lines, "\n") + "\n", nil
	case config.FormatTypeScript:
		return typescript.ConvertTypes(typeList, typescript.WithNominalTypes(cfg.NominalTypes))
	case config.FormatJSONSchema:
		output, err := jsonschema.ConvertType(typeList[0])
		if err != nil {
			return "", err
		}
		return output + "\n", nil
	case config.FormatPostgres:
		return postgres.ConvertTypes(typeList...)
	default:
		return "", fmt.Errorf("%w: %q", config.ErrUnknownFormat, cfg.Format)
	}
}
