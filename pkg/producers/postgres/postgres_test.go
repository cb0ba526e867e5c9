package postgres

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vphpersson/generic_explorer/internal/fixtures"
	"github.com/vphpersson/generic_explorer/internal/type_check"
	"github.com/vphpersson/generic_explorer/pkg/loader"
	postgresErrors "github.com/vphpersson/generic_explorer/pkg/producers/postgres/errors"
	"github.com/vphpersson/generic_explorer/pkg/reflect_bridge"
)

const source = `package fixture

import "time"

type Status string

const StatusActive Status = "active"

type Tag struct {
	Name string ` + "`json:\"name\" postgres:\",unique\"`" + `
}

type Author struct {
	Name   string ` + "`json:\"name\" postgres:\",indexed\"`" + `
	Email  string ` + "`json:\"email,omitempty\" postgres:\"email_address,type:citext,uniquecomposite\"`" + `
	Handle string ` + "`json:\"handle\" postgres:\",uniquecomposite\"`" + `
}

type BlogPost struct {
	ID          int64          ` + "`json:\"id\" postgres:\",primarykey\"`" + `
	Title       string         ` + "`json:\"title\"`" + `
	Status      Status         ` + "`json:\"status\"`" + `
	Author      Author         ` + "`json:\"author\" postgres:\",ondelete:CASCADE\"`" + `
	Tags        []Tag          ` + "`json:\"tags\"`" + `
	Ratings     []float32      ` + "`json:\"ratings,omitempty\"`" + `
	Raw         []byte         ` + "`json:\"raw\"`" + `
	Meta        map[string]any ` + "`json:\"meta,omitempty\"`" + `
	PublishedAt *time.Time     ` + "`json:\"published_at,omitempty\"`" + `
	Internal    string         ` + "`postgres:\"-\"`" + `
}

type Job struct {
	Name     string        ` + "`json:\"name\"`" + `
	Timeout  time.Duration ` + "`json:\"timeout\"`" + `
	Archived []Tag         ` + "`postgres:\"-\"`" + `
}

type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

type Wrapped struct {
	Pair Pair[string, int]
}

type Tree []Tree

type Forest struct {
	Trees Tree
}
`

func TestConvertTypes(t *testing.T) {
	t.Parallel()

	pkg := type_check.MustCheck(t, "fixture", source)

	output, err := ConvertTypes(pkg.MustEval(t, "BlogPost"))
	require.NoError(t, err)

	expected := strings.Join(
		[]string{
			"CREATE TABLE author (\n" +
				"\tname text NOT NULL,\n" +
				"\temail_address citext,\n" +
				"\thandle text NOT NULL,\n" +
				"\tUNIQUE (email_address, handle),\n" +
				"\tid uuid PRIMARY KEY DEFAULT gen_random_uuid()\n" +
				");\n\n" +
				"CREATE INDEX author_name_idx ON author(name);\n",
			"CREATE TABLE tag (\n" +
				"\tname text UNIQUE NOT NULL,\n" +
				"\tid uuid PRIMARY KEY DEFAULT gen_random_uuid()\n" +
				");\n",
			"CREATE TABLE blog_post (\n" +
				"\tid bigint PRIMARY KEY NOT NULL,\n" +
				"\ttitle text NOT NULL,\n" +
				"\tstatus text NOT NULL,\n" +
				"\tauthor uuid REFERENCES author(id) ON DELETE CASCADE NOT NULL,\n" +
				"\tratings real[],\n" +
				"\traw bytea NOT NULL,\n" +
				"\tmeta jsonb,\n" +
				"\tpublished_at timestamptz\n" +
				");\n\n" +
				"CREATE TABLE blog_post_tag (\n" +
				"\tblog_post_id uuid NOT NULL REFERENCES blog_post(id) ON DELETE CASCADE,\n" +
				"\ttag_id uuid NOT NULL REFERENCES tag(id) ON DELETE CASCADE,\n" +
				"\tPRIMARY KEY (blog_post_id, tag_id)\n" +
				");\n",
		},
		"\n",
	)
	assert.Equal(t, expected, output)
}

func TestConvertTypes_SkippedAndDuration(t *testing.T) {
	t.Parallel()

	pkg := type_check.MustCheck(t, "fixture", source)

	output, err := ConvertTypes(pkg.MustEval(t, "Job"))
	require.NoError(t, err)

	assert.Contains(
		t,
		output,
		"CREATE TABLE job (\n"+
			"\tname text NOT NULL,\n"+
			"\ttimeout bigint NOT NULL,\n"+
			"\tid uuid PRIMARY KEY DEFAULT gen_random_uuid()\n"+
			");\n",
	)
	assert.NotContains(t, output, "job_tag")
}

func TestConvertTypes_Errors(t *testing.T) {
	t.Parallel()

	pkg := type_check.MustCheck(t, "fixture", source)

	testCases := []struct {
		expression string
		expected   error
	}{
		{"Wrapped", postgresErrors.ErrGenericTypesUnsupported},
		{"Pair[string, int]", postgresErrors.ErrGenericTypesUnsupported},
		{"Forest", postgresErrors.ErrRecursiveType},
	}

	for _, testCase := range testCases {
		t.Run(testCase.expression, func(t *testing.T) {
			t.Parallel()

			_, err := ConvertTypes(pkg.MustEval(t, testCase.expression))
			assert.ErrorIs(t, err, testCase.expected)
		})
	}
}

func TestConvert(t *testing.T) {
	t.Parallel()

	bridge := reflect_bridge.New(loader.New())

	output, err := Convert(context.Background(), bridge, fixtures.Item{})
	require.NoError(t, err)

	expected := "CREATE TABLE item (\n" +
		"\tname text NOT NULL,\n" +
		"\tcreated_at timestamptz NOT NULL,\n" +
		"\tstatus text,\n" +
		"\tid uuid PRIMARY KEY DEFAULT gen_random_uuid()\n" +
		");\n"
	assert.Equal(t, expected, output)
}
