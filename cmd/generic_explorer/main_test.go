package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vphpersson/generic_explorer/internal/config"
	"github.com/vphpersson/generic_explorer/pkg/types/bounds_policy"
)

const fixturesPath = "github.com/vphpersson/generic_explorer/internal/fixtures"

func TestParseConfig(t *testing.T) {
	t.Parallel()

	t.Run("defaults and positional expressions", func(t *testing.T) {
		t.Parallel()

		cfg, showVersion, err := parseConfig([]string{"Item", "Pair[string, int]"}, &bytes.Buffer{})
		require.NoError(t, err)
		assert.False(t, showVersion)
		assert.Equal(t, ".", cfg.Package)
		assert.Equal(t, config.FormatMentioned, cfg.Format)
		assert.Equal(t, []string{"Item", "Pair[string, int]"}, cfg.Expressions)
	})

	t.Run("flags override file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "config.toml")
		content := "package = \"example.com/a\"\nformat = \"postgres\"\nimplicit_bounds = \"process\"\nexpressions = [\"A\"]\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		cfg, _, err := parseConfig([]string{"-config", path, "-format", "TypeScript", "-nominal"}, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, "example.com/a", cfg.Package)
		assert.Equal(t, config.FormatTypeScript, cfg.Format)
		assert.Equal(t, bounds_policy.Process, cfg.ImplicitBoundsPolicy)
		assert.True(t, cfg.NominalTypes)
		assert.Equal(t, []string{"A"}, cfg.Expressions)
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()

		testCases := [][]string{
			{},
			{"-format", "xml", "Item"},
			{"-implicit-bounds", "sometimes", "Item"},
			{"-format", "jsonschema", "Item", "Page[int]"},
			{"-unknown"},
		}
		for _, args := range testCases {
			_, _, err := parseConfig(args, &bytes.Buffer{})
			assert.Error(t, err, "args %v", args)
		}
	})

	t.Run("version", func(t *testing.T) {
		t.Parallel()

		_, showVersion, err := parseConfig([]string{"-version"}, &bytes.Buffer{})
		require.NoError(t, err)
		assert.True(t, showVersion)
	})
}

// The logger is configured once per process, so the runs share it and are not parallel.
func TestRun(t *testing.T) {
	testCases := []struct {
		name     string
		args     []string
		exitCode int
		expected string
		contains []string
	}{
		{
			name: "mentioned",
			args: []string{"-package", fixturesPath, "Pair[Status, Page[int]]", "Item", "IDs"},
			expected: "Pair[Status, Page[int]]: Page, Pair, Status, int\n" +
				"Item: Item\n" +
				"IDs: IDs, int\n",
		},
		{
			name:     "postgres",
			args:     []string{"-package", fixturesPath, "-format", "postgres", "Item"},
			expected: "CREATE TABLE item (\n\tname text NOT NULL,\n\tcreated_at timestamptz NOT NULL,\n\tstatus text,\n\tid uuid PRIMARY KEY DEFAULT gen_random_uuid()\n);\n",
		},
		{
			name: "typescript",
			args: []string{"-package", fixturesPath, "-format", "typescript", "Item"},
			expected: "export interface Item {\n" +
				"\tname: string;\n" +
				"\tcreated_at: string;\n" +
				"\tstatus?: Status;\n" +
				"}\n" +
				"\nexport type Status = \"active\" | \"archived\";\n",
		},
		{
			name: "jsonschema",
			args: []string{"-package", fixturesPath, "-format", "jsonschema", "Dict[string, Item]"},
			contains: []string{
				`"title":"DictStringItem"`,
				`"$ref":"#/$defs/DictStringItem"`,
				`"Status":{"enum":["active","archived"],"type":"string"}`,
			},
		},
		{
			name:     "implicit bounds processed",
			args:     []string{"-package", fixturesPath, "-implicit-bounds", "process", "Pair[Status, Page[int]]"},
			expected: "Pair[Status, Page[int]]: Page, Pair, Status, int\n",
		},
		{
			name:     "version",
			args:     []string{"-version"},
			expected: "generic_explorer dev\n",
		},
		{
			name:     "usage",
			args:     []string{"-format", "xml", "Item"},
			exitCode: exitUsage,
		},
		{
			name:     "unknown type",
			args:     []string{"-package", fixturesPath, "Missing"},
			exitCode: exitFailure,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			exitCode := run(context.Background(), testCase.args, &stdout, &stderr)

			require.Equal(t, testCase.exitCode, exitCode, stderr.String())
			if testCase.exitCode != exitOK {
				return
			}
			if testCase.contains != nil {
				for _, expected := range testCase.contains {
					assert.Contains(t, stdout.String(), expected)
				}
				return
			}
			assert.Equal(t, testCase.expected, stdout.String())
		})
	}
}
