// Package config loads the settings a schema.Generator is built from.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/sqldef/revdef/schema"
)

// ConfigFileName is looked up in the working directory when no --config is given.
const ConfigFileName = "revdef.yml"

// ConfigFileNameAlt is the alternate name of the config file.
const ConfigFileNameAlt = "revdef.yaml"

// EnvPrefix prefixes environment variables overriding scalar settings, e.g. REVDEF_DECAMELIZE=true.
const EnvPrefix = "REVDEF_"

type Config struct {
	// Decamelize converts camelCase identifiers to snake_case.
	Decamelize bool `koanf:"decamelize"`
	// Quote wraps identifiers in double quotes. Defaults to true.
	Quote bool `koanf:"quote"`
	// Concurrency limits how many migration files are compiled at once.
	// 0 compiles them one by one and a negative value removes the limit.
	Concurrency int `koanf:"concurrency"`
	// Shorthands extends schema.DefaultShorthands.
	Shorthands schema.Shorthands `koanf:"-"`
}

func (c *Config) Qualifier() schema.Qualifier {
	return schema.Qualifier{Decamelize: c.Decamelize, Quote: c.Quote}
}

func (c *Config) Generator() *schema.Generator {
	return schema.NewGenerator(c.Qualifier(), c.Shorthands)
}

var defaults = map[string]any{
	"decamelize":  false,
	"quote":       true,
	"concurrency": 0,
}

// Loader merges config sources in the order they are added. Later sources
// override earlier ones key by key, environment variables override the
// sources, and values given to Set override everything.
type Loader struct {
	k         *koanf.Koanf
	overrides map[string]any
	err       error
}

func NewLoader() *Loader {
	k := koanf.New(".")
	l := &Loader{k: k, overrides: map[string]any{}}
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		l.err = fmt.Errorf("failed to load defaults: %w", err)
	}
	return l
}

// File adds a YAML config file.
func (l *Loader) File(path string) {
	if l.err != nil {
		return
	}
	if err := l.k.Load(file.Provider(path), kyaml.Parser()); err != nil {
		l.err = fmt.Errorf("error reading config file %s: %w", path, err)
	}
}

// Inline adds a YAML object given as a string, e.g. "{decamelize: true}".
func (l *Loader) Inline(src string) {
	if l.err != nil {
		return
	}
	m, err := kyaml.Parser().Unmarshal([]byte(src))
	if err != nil {
		l.err = fmt.Errorf("error parsing inline config %q: %w", src, err)
		return
	}
	if err := l.k.Load(confmap.Provider(m, "."), nil); err != nil {
		l.err = fmt.Errorf("error loading inline config %q: %w", src, err)
	}
}

// Set overrides a single key, e.g. from a command line flag.
func (l *Loader) Set(key string, value any) {
	l.overrides[key] = value
}

func (l *Loader) Load() (*Config, error) {
	if l.err != nil {
		return nil, l.err
	}

	// REVDEF_DECAMELIZE -> decamelize
	if err := l.k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}
	if err := l.k.Load(confmap.Provider(l.overrides, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load flags: %w", err)
	}

	var cfg Config
	if err := l.k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	shorthands, err := decodeShorthands(l.k.Get("shorthands"))
	if err != nil {
		return nil, err
	}
	cfg.Shorthands = shorthands
	return &cfg, nil
}

// Shorthands go through the same YAML decoding as migration files, so a
// shorthand can be written exactly like a parameter type.
func decodeShorthands(raw any) (schema.Shorthands, error) {
	if raw == nil {
		return nil, nil
	}
	if _, ok := raw.(map[string]any); !ok {
		return nil, fmt.Errorf("shorthands must be a mapping, got %T", raw)
	}

	buf, err := yaml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to encode shorthands: %w", err)
	}
	var shorthands schema.Shorthands
	dec := yaml.NewDecoder(bytes.NewReader(buf), yaml.DisallowUnknownField())
	if err := dec.Decode(&shorthands); err != nil {
		return nil, fmt.Errorf("invalid shorthands: %w", err)
	}
	return shorthands, nil
}

// FindConfigFile returns the config file in dir, or "" if there is none.
func FindConfigFile(dir string) string {
	for _, name := range []string{ConfigFileName, ConfigFileNameAlt} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
