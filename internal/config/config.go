// Package config holds the settings of the command line tool: defaults, overlaid by a TOML file, overlaid by
// explicit flags.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/vphpersson/generic_explorer/pkg/types/bounds_policy"
)

const (
	FormatMentioned  = "mentioned"
	FormatTypeScript = "typescript"
	FormatJSONSchema = "jsonschema"
	FormatPostgres   = "postgres"
)

var Formats = []string{FormatMentioned, FormatTypeScript, FormatJSONSchema, FormatPostgres}

var (
	ErrUnknownFormat    = errors.New("unknown format")
	ErrEmptyPackage     = errors.New("empty package")
	ErrNoExpressions    = errors.New("no type expressions")
	ErrMultipleSchemata = errors.New("jsonschema takes exactly one type expression")
)

type Config struct {
	Package              string
	Dir                  string
	Format               string
	ImplicitBoundsPolicy bounds_policy.ImplicitBoundsPolicy
	LogLevel             string
	NominalTypes         bool
	BuildFlags           []string
	Expressions          []string
}

func Default() Config {
	return Config{
		Package:              ".",
		Format:               FormatMentioned,
		ImplicitBoundsPolicy: bounds_policy.Ignore,
		LogLevel:             "warn",
	}
}

type fileConfig struct {
	Package        string   `toml:"package"`
	Dir            string   `toml:"dir"`
	Format         string   `toml:"format"`
	ImplicitBounds string   `toml:"implicit_bounds"`
	LogLevel       string   `toml:"log_level"`
	NominalTypes   bool     `toml:"nominal_types"`
	BuildFlags     []string `toml:"build_flags"`
	Expressions    []string `toml:"expressions"`
}

// Load overlays the keys defined in the TOML file at path onto cfg.
func Load(path string, cfg Config) (Config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config: unknown keys %v", undecoded)
	}

	if meta.IsDefined("package") {
		cfg.Package = strings.TrimSpace(raw.Package)
	}

	if meta.IsDefined("dir") {
		cfg.Dir = strings.TrimSpace(raw.Dir)
	}

	if meta.IsDefined("format") {
		cfg.Format = strings.ToLower(strings.TrimSpace(raw.Format))
	}

	if meta.IsDefined("implicit_bounds") {
		policy, err := bounds_policy.Parse(raw.ImplicitBounds)
		if err != nil {
			return Config{}, fmt.Errorf("parse implicit_bounds: %w", err)
		}
		cfg.ImplicitBoundsPolicy = policy
	}

	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}

	if meta.IsDefined("nominal_types") {
		cfg.NominalTypes = raw.NominalTypes
	}

	if meta.IsDefined("build_flags") {
		cfg.BuildFlags = raw.BuildFlags
	}

	if meta.IsDefined("expressions") {
		cfg.Expressions = normalizeExpressions(raw.Expressions)
	}

	return cfg, nil
}

func normalizeExpressions(expressions []string) []string {
	var out []string
	for _, expression := range expressions {
		if expression = strings.TrimSpace(expression); expression != "" {
			out = append(out, expression)
		}
	}
	return out
}

func Validate(cfg Config) error {
	if !slices.Contains(Formats, cfg.Format) {
		return fmt.Errorf("%w: %q (expected one of %s)", ErrUnknownFormat, cfg.Format, strings.Join(Formats, ", "))
	}

	if strings.TrimSpace(cfg.Package) == "" {
		return ErrEmptyPackage
	}

	if len(cfg.Expressions) == 0 {
		return ErrNoExpressions
	}

	if cfg.Format == FormatJSONSchema && len(cfg.Expressions) != 1 {
		return ErrMultipleSchemata
	}

	return nil
}
