package testutil

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	pg_query "github.com/pganalyze/pg_query_go/v2"
	"github.com/stretchr/testify/assert"

	"github.com/sqldef/revdef/migration"
	"github.com/sqldef/revdef/schema"
	"github.com/sqldef/revdef/util"
)

type TestCase struct {
	Config     Config                // default: quoted identifiers, no decamelize
	Operations []migration.Operation // compiled as one migration document
	Up         *string               // expected up script
	Down       *string               // expected down script
	Error      *string               // expected error of the up script
	DownError  *string               `yaml:"down_error"` // expected error of the down script
}

type Config struct {
	Decamelize bool
	Quote      *bool // default: true
	Shorthands schema.Shorthands
}

func init() {
	util.InitSlog()

	// Keep debug logs of the builders out of test output unless LOG_LEVEL asks for them.
	if os.Getenv("LOG_LEVEL") == "" {
		util.SetLogLevel(slog.LevelWarn)
	}
}

func ReadTests(pattern string) (map[string]TestCase, error) {
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}

	ret := map[string]TestCase{}
	// Track which file each test case came from for better error messages
	testFileMap := map[string]string{}

	for _, file := range files {
		var tests map[string]*TestCase

		buf, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}

		dec := yaml.NewDecoder(bytes.NewReader(buf), yaml.DisallowUnknownField())
		err = dec.Decode(&tests)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}

		for name, test := range tests {
			if (test.Up == nil) == (test.Error == nil) {
				return nil, fmt.Errorf("%s: test case '%s': exactly one of 'up' and 'error' must be specified", file, name)
			}
			if test.Down != nil && test.DownError != nil {
				return nil, fmt.Errorf("%s: test case '%s': 'down' and 'down_error' can't be specified together", file, name)
			}
			if existingFile, ok := testFileMap[name]; ok {
				return nil, fmt.Errorf("duplicate test case name '%s': defined in both '%s' and '%s'", name, existingFile, file)
			}
			testFileMap[name] = file
			ret[name] = *test
		}
	}

	return ret, nil
}

func (c Config) Generator() *schema.Generator {
	quote := true
	if c.Quote != nil {
		quote = *c.Quote
	}
	return schema.NewGenerator(schema.Qualifier{Decamelize: c.Decamelize, Quote: quote}, c.Shorthands)
}

// Compile returns the script of a test case in the given direction.
func Compile(test TestCase, direction migration.Direction) (string, error) {
	doc := &migration.Document{Operations: test.Operations}
	stmts, err := migration.Compile(test.Config.Generator(), doc, direction)
	if err != nil {
		return "", err
	}
	return strings.Join(stmts, "\n"), nil
}

func RunTest(t *testing.T, test TestCase) {
	t.Helper()

	// Up script
	up, err := Compile(test, migration.Up)
	if test.Error != nil {
		if err == nil {
			t.Errorf("[Up] expected error: %s, but got no error", *test.Error)
		} else if err.Error() != *test.Error {
			t.Errorf("[Up] expected error: %s, but got: %s", *test.Error, err.Error())
		}
		return
	}
	if err != nil {
		t.Fatalf("[Up] Failed to compile: %v", err)
	}
	assert.Equal(t, strings.TrimSpace(*test.Up), up, "[Up] unexpected up script")
	AssertParsable(t, up)

	// Down script
	if test.Down == nil && test.DownError == nil {
		return
	}
	down, err := Compile(test, migration.Down)
	if test.DownError != nil {
		if err == nil {
			t.Errorf("[Down] expected error: %s, but got no error", *test.DownError)
		} else if err.Error() != *test.DownError {
			t.Errorf("[Down] expected error: %s, but got: %s", *test.DownError, err.Error())
		}
		return
	}
	if err != nil {
		t.Fatalf("[Down] Failed to compile: %v", err)
	}
	assert.Equal(t, strings.TrimSpace(*test.Down), down, "[Down] unexpected down script")
	AssertParsable(t, down)
}

// AssertParsable checks that PostgreSQL's own parser accepts sql.
func AssertParsable(t *testing.T, sql string) {
	t.Helper()
	if sql == "" {
		return
	}
	if _, err := pg_query.Parse(sql); err != nil {
		t.Errorf("generated SQL is not parsable by PostgreSQL: %s\n```\n%s\n```", err, sql)
	}
}
