package migration

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqldef/revdef/schema"
)

func newGenerator() *schema.Generator {
	return schema.NewGenerator(schema.Qualifier{Quote: true}, nil)
}

func TestCompileUpAndDown(t *testing.T) {
	doc, err := ParseDocument([]byte(createAndRename))
	require.NoError(t, err)
	g := newGenerator()

	up, err := Compile(g, doc, Up)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"CREATE FUNCTION \"app\".\"f\"(\"a\" integer DEFAULT 1)\n  RETURNS integer\n  LANGUAGE sql\n  AS $pg1$SELECT a$pg1$;",
		`ALTER FUNCTION "app"."f"(integer) RENAME TO "g";`,
	}, up)

	down, err := Compile(g, doc, Down)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"ALTER FUNCTION \"g\"(integer) SET SCHEMA \"app\";\nALTER FUNCTION \"app\".\"g\"(integer) RENAME TO \"f\";",
		`DROP FUNCTION "app"."f"("a" integer);`,
	}, down)
}

func TestCompileExplicitDown(t *testing.T) {
	doc, err := ParseDocument([]byte(`
operations:
  - drop_function: {name: f}
down: CREATE FUNCTION f() RETURNS void LANGUAGE sql AS 'SELECT 1';
`))
	require.NoError(t, err)
	g := newGenerator()

	up, err := Compile(g, doc, Up)
	require.NoError(t, err)
	assert.Equal(t, []string{`DROP FUNCTION "f"();`}, up)

	down, err := Compile(g, doc, Down)
	require.NoError(t, err)
	assert.Equal(t, []string{"CREATE FUNCTION f() RETURNS void LANGUAGE sql AS 'SELECT 1';"}, down)
}

func TestCompileIrreversible(t *testing.T) {
	doc := &Document{Operations: []Operation{
		{SQL: &SQL{Up: "SELECT 1;"}},
		{DropFunction: &DropFunction{Name: schema.Ident("f")}},
	}}

	_, err := Compile(newGenerator(), doc, Down)
	assert.ErrorIs(t, err, ErrIrreversible)
	// The last operation is undone first.
	assert.EqualError(t, err, "operation 2 (drop_function): operation is not reversible")
}

func TestCompileConfigError(t *testing.T) {
	doc := &Document{Operations: []Operation{
		{CreateFunction: &CreateFunction{Name: schema.Ident("f"), Definition: schema.String("SELECT 1")}},
	}}

	_, err := Compile(newGenerator(), doc, Up)
	var configErr *schema.ConfigError
	require.True(t, errors.As(err, &configErr))
	assert.ErrorIs(t, err, schema.ErrLanguageRequired)

	// Down needs the same statement to be compilable.
	_, err = Compile(newGenerator(), doc, Down)
	assert.ErrorIs(t, err, schema.ErrLanguageRequired)
}

func TestCompileEmptyDocument(t *testing.T) {
	stmts, err := Compile(newGenerator(), &Document{}, Up)
	require.NoError(t, err)
	assert.Empty(t, stmts)
}

func TestCompileSkipsEmptyStatements(t *testing.T) {
	doc, err := ParseDocument([]byte(`
operations:
  - alter_function:
      name: f
      options: {language: sql}
  - sql: {up: "", down: "SELECT 1;"}
  - drop_function: {name: g}
`))
	require.NoError(t, err)

	up, err := Compile(newGenerator(), doc, Up)
	require.NoError(t, err)
	assert.Equal(t, []string{`DROP FUNCTION "g"();`}, up)

	nothing := &Document{Operations: []Operation{
		{AlterFunction: &AlterFunction{Name: schema.Ident("f")}},
	}}
	stmts, err := Compile(newGenerator(), nothing, Up)
	require.NoError(t, err)
	assert.Empty(t, stmts)

	stmts, err = Compile(newGenerator(), &Document{Down: ptr("")}, Down)
	require.NoError(t, err)
	assert.Empty(t, stmts)
}

func TestCompileAllKeepsOrder(t *testing.T) {
	docs := make([]*Document, 20)
	for i := range docs {
		docs[i] = &Document{Operations: []Operation{
			{SQL: &SQL{Up: "SELECT {n};", Args: map[string]schema.Value{"n": schema.Int(int64(i))}}},
		}}
	}

	for _, concurrency := range []int{-1, 0, 1, 3} {
		t.Run(fmt.Sprintf("concurrency=%d", concurrency), func(t *testing.T) {
			scripts, err := CompileAll(newGenerator(), docs, Up, concurrency)
			require.NoError(t, err)
			require.Len(t, scripts, len(docs))
			for i, stmts := range scripts {
				assert.Equal(t, []string{fmt.Sprintf("SELECT %d;", i)}, stmts)
			}
		})
	}
}

func TestCompileAllError(t *testing.T) {
	docs := []*Document{
		{Operations: []Operation{{SQL: &SQL{Up: "SELECT 1;", Down: ptr("SELECT 2;")}}}},
		{Operations: []Operation{{AlterFunction: &AlterFunction{Name: schema.Ident("f")}}}},
	}

	_, err := CompileAll(newGenerator(), docs, Down, -1)
	assert.ErrorIs(t, err, ErrIrreversible)
}

func TestDirectionString(t *testing.T) {
	assert.Equal(t, "up", Up.String())
	assert.Equal(t, "down", Down.String())
}

func ptr[T any](v T) *T {
	return &v
}
