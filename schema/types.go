package schema

import (
	"log/slog"
	"maps"
	"slices"
	"strings"
)

// Type describes a column or routine parameter. Type may name a shorthand,
// which expands into further attributes. Pointer fields are nil when absent.
type Type struct {
	Type       string  `yaml:"type"`
	Mode       string  `yaml:"mode,omitempty"`
	Name       string  `yaml:"name,omitempty"`
	Default    *Value  `yaml:"default,omitempty"`
	PrimaryKey *bool   `yaml:"primary_key,omitempty"`
	NotNull    *bool   `yaml:"not_null,omitempty"`
	Unique     *bool   `yaml:"unique,omitempty"`
	References string  `yaml:"references,omitempty"`
	OnDelete   string  `yaml:"on_delete,omitempty"`
	OnUpdate   string  `yaml:"on_update,omitempty"`
	Check      string  `yaml:"check,omitempty"`
	Collation  string  `yaml:"collation,omitempty"`
	Comment    *string `yaml:"comment,omitempty"`
}

// Param is a routine parameter: a Type whose Mode, Name and Default are meaningful.
type Param = Type

// UnmarshalYAML accepts either a bare type name or a full mapping.
func (t *Type) UnmarshalYAML(unmarshal func(any) error) error {
	var x any
	if err := unmarshal(&x); err != nil {
		return err
	}
	if s, ok := x.(string); ok {
		*t = Type{Type: s}
		return nil
	}

	type plain Type
	var p plain
	if err := unmarshal(&p); err != nil {
		return err
	}
	*t = Type(p)
	return nil
}

// overlay returns base with every field that is set on t replacing it.
func (t Type) overlay(base Type) Type {
	if t.Type != "" {
		base.Type = t.Type
	}
	if t.Mode != "" {
		base.Mode = t.Mode
	}
	if t.Name != "" {
		base.Name = t.Name
	}
	if t.Default != nil {
		base.Default = t.Default
	}
	if t.PrimaryKey != nil {
		base.PrimaryKey = t.PrimaryKey
	}
	if t.NotNull != nil {
		base.NotNull = t.NotNull
	}
	if t.Unique != nil {
		base.Unique = t.Unique
	}
	if t.References != "" {
		base.References = t.References
	}
	if t.OnDelete != "" {
		base.OnDelete = t.OnDelete
	}
	if t.OnUpdate != "" {
		base.OnUpdate = t.OnUpdate
	}
	if t.Check != "" {
		base.Check = t.Check
	}
	if t.Collation != "" {
		base.Collation = t.Collation
	}
	if t.Comment != nil {
		base.Comment = t.Comment
	}
	return base
}

// Shorthands maps an alias to the partial type it expands to.
type Shorthands map[string]Type

var primaryKey = true

// DefaultShorthands is always available unless overridden by a caller's entry of the same name.
var DefaultShorthands = Shorthands{
	"id": {Type: "serial", PrimaryKey: &primaryKey},
}

// MergeShorthands layers the given tables over DefaultShorthands; later tables win.
func MergeShorthands(tables ...Shorthands) Shorthands {
	merged := maps.Clone(DefaultShorthands)
	for _, table := range tables {
		maps.Copy(merged, table)
	}
	return merged
}

// Portable type names and the PostgreSQL types they stand for.
var typeAdapters = map[string]string{
	"int":      "integer",
	"string":   "text",
	"float":    "real",
	"double":   "double precision",
	"datetime": "timestamp",
	"bool":     "boolean",
}

func applyTypeAdapters(typeName string) string {
	if adapted, ok := typeAdapters[typeName]; ok {
		return adapted
	}
	return typeName
}

// TypeResolver expands shorthands. It never mutates its table and is safe for concurrent use.
type TypeResolver struct {
	shorthands Shorthands
}

func NewTypeResolver(shorthands Shorthands) *TypeResolver {
	return &TypeResolver{shorthands: MergeShorthands(shorthands)}
}

// Resolve follows the shorthand chain starting at t.Type. Attributes implied
// closer to the caller win over those implied further down the chain, and
// attributes set on t itself win over all of them. The resulting Type is the
// final type name of the chain mapped through the portable aliases.
func (r *TypeResolver) Resolve(t Type) (Type, error) {
	chain := []string{t.Type}
	var ext *Type

	for {
		shorthand, ok := r.shorthands[chain[len(chain)-1]]
		if !ok {
			break
		}

		next := shorthand
		if ext != nil {
			accumulated := *ext
			accumulated.Type = ""
			next = accumulated.overlay(shorthand)
		}
		if slices.Contains(chain, next.Type) {
			return Type{}, &ConfigError{
				Object: strings.Join(append(chain, next.Type), ", "),
				Err:    ErrCyclicShorthand,
			}
		}
		chain = append(chain, next.Type)
		ext = &next
	}

	if ext == nil {
		ext = &Type{Type: t.Type}
	} else {
		slog.Debug("Expanded type shorthand", "chain", strings.Join(chain, " -> "))
	}

	resolved := t.overlay(*ext)
	resolved.Type = applyTypeAdapters(ext.Type)
	return resolved, nil
}
