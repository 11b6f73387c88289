package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqldef/revdef/schema"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.False(t, cfg.Decamelize)
	assert.True(t, cfg.Quote)
	assert.Equal(t, 0, cfg.Concurrency)
	assert.Nil(t, cfg.Shorthands)
	assert.Equal(t, schema.Qualifier{Quote: true}, cfg.Qualifier())
}

func TestLoadFileAndInlineInOrder(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "revdef.yml", "decamelize: true\nquote: false\nconcurrency: 4\n")

	loader := NewLoader()
	loader.File(path)
	loader.Inline("{quote: true}")
	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.True(t, cfg.Decamelize)
	assert.True(t, cfg.Quote)
	assert.Equal(t, 4, cfg.Concurrency)
}

func TestLoadShorthands(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "revdef.yml", `
shorthands:
  email: {type: string, not_null: true}
  flag: bool
`)

	loader := NewLoader()
	loader.File(path)
	loader.Inline("{shorthands: {counter: {type: int, default: 0}}}")
	cfg, err := loader.Load()
	require.NoError(t, err)
	require.Len(t, cfg.Shorthands, 3)
	assert.Equal(t, "string", cfg.Shorthands["email"].Type)
	require.NotNil(t, cfg.Shorthands["email"].NotNull)
	assert.True(t, *cfg.Shorthands["email"].NotNull)
	assert.Equal(t, schema.Type{Type: "bool"}, cfg.Shorthands["flag"])
	require.NotNil(t, cfg.Shorthands["counter"].Default)
	assert.Equal(t, "0", schema.Escape(*cfg.Shorthands["counter"].Default))

	params, err := cfg.Generator().FormatParams([]schema.Param{{Name: "address", Type: "email"}})
	require.NoError(t, err)
	assert.Equal(t, `("address" text)`, params)
}

func TestLoadInvalidShorthands(t *testing.T) {
	loader := NewLoader()
	loader.Inline("{shorthands: [a, b]}")
	_, err := loader.Load()
	assert.ErrorContains(t, err, "shorthands must be a mapping")
}

func TestLoadEnvOverridesFiles(t *testing.T) {
	t.Setenv("REVDEF_DECAMELIZE", "true")
	t.Setenv("REVDEF_CONCURRENCY", "-1")

	loader := NewLoader()
	loader.Inline("{decamelize: false, concurrency: 2}")
	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.True(t, cfg.Decamelize)
	assert.Equal(t, -1, cfg.Concurrency)
}

func TestLoadSetOverridesEnv(t *testing.T) {
	t.Setenv("REVDEF_QUOTE", "true")

	loader := NewLoader()
	loader.Set("quote", false)
	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.False(t, cfg.Quote)
}

func TestLoadErrors(t *testing.T) {
	loader := NewLoader()
	loader.File(filepath.Join(t.TempDir(), "missing.yml"))
	_, err := loader.Load()
	assert.ErrorContains(t, err, "error reading config file")

	loader = NewLoader()
	loader.Inline("{decamelize: [")
	_, err = loader.Load()
	assert.ErrorContains(t, err, "error parsing inline config")
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, "", FindConfigFile(dir))

	alt := writeConfig(t, dir, ConfigFileNameAlt, "quote: false\n")
	assert.Equal(t, alt, FindConfigFile(dir))

	path := writeConfig(t, dir, ConfigFileName, "quote: false\n")
	assert.Equal(t, path, FindConfigFile(dir))
}
