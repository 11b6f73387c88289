// Package migration compiles migration documents, YAML lists of schema
// operations, into up and down scripts.
package migration

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/sqldef/revdef/schema"
)

var (
	ErrIrreversible     = errors.New("operation is not reversible")
	ErrUnknownOperation = errors.New("operation must set exactly one kind")
)

// Document is the content of one migration file.
type Document struct {
	Operations []Operation `yaml:"operations"`
	// Down replaces the generated down script. It makes irreversible operations usable.
	Down *string `yaml:"down,omitempty"`
}

// Operation sets exactly one of its fields.
type Operation struct {
	CreateFunction *CreateFunction `yaml:"create_function,omitempty"`
	AlterFunction  *AlterFunction  `yaml:"alter_function,omitempty"`
	RenameFunction *RenameFunction `yaml:"rename_function,omitempty"`
	DropFunction   *DropFunction   `yaml:"drop_function,omitempty"`
	SQL            *SQL            `yaml:"sql,omitempty"`
}

type CreateFunction struct {
	Name       schema.Name            `yaml:"name"`
	Params     []schema.Param         `yaml:"params,omitempty"`
	Options    schema.FunctionOptions `yaml:"options"`
	Definition schema.Value           `yaml:"definition"`
}

type AlterFunction struct {
	Name    schema.Name            `yaml:"name"`
	Params  []schema.Param         `yaml:"params,omitempty"`
	Options schema.FunctionOptions `yaml:"options"`
}

type RenameFunction struct {
	Name    schema.Name    `yaml:"name"`
	Params  []schema.Param `yaml:"params,omitempty"`
	NewName schema.Name    `yaml:"new_name"`
}

type DropFunction struct {
	Name     schema.Name    `yaml:"name"`
	Params   []schema.Param `yaml:"params,omitempty"`
	IfExists bool           `yaml:"if_exists,omitempty"`
	Cascade  bool           `yaml:"cascade,omitempty"`
}

// SQL is a hand-written statement. {key} placeholders are replaced by escaped Args.
type SQL struct {
	Up   string                  `yaml:"up"`
	Down *string                 `yaml:"down,omitempty"`
	Args map[string]schema.Value `yaml:"args,omitempty"`
}

func ParseDocument(buf []byte) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(buf), yaml.DisallowUnknownField())
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	for i, op := range doc.Operations {
		if _, err := op.change(); err != nil {
			return nil, fmt.Errorf("operation %d: %w", i+1, err)
		}
	}
	return &doc, nil
}

func ReadDocument(path string) (*Document, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := ParseDocument(buf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// change is implemented by each operation kind.
type change interface {
	kind() string
	up(g *schema.Generator) (string, error)
	down(g *schema.Generator) (string, error)
}

func (op Operation) change() (change, error) {
	var changes []change
	if op.CreateFunction != nil {
		changes = append(changes, op.CreateFunction)
	}
	if op.AlterFunction != nil {
		changes = append(changes, op.AlterFunction)
	}
	if op.RenameFunction != nil {
		changes = append(changes, op.RenameFunction)
	}
	if op.DropFunction != nil {
		changes = append(changes, op.DropFunction)
	}
	if op.SQL != nil {
		changes = append(changes, op.SQL)
	}
	if len(changes) != 1 {
		return nil, fmt.Errorf("%w, got %d", ErrUnknownOperation, len(changes))
	}
	return changes[0], nil
}

func (c *CreateFunction) kind() string { return "create_function" }

func (c *CreateFunction) up(g *schema.Generator) (string, error) {
	result, err := g.CreateFunction(c.Name, c.Params, c.Options, c.Definition)
	if err != nil {
		return "", err
	}
	return result.SQL, nil
}

func (c *CreateFunction) down(g *schema.Generator) (string, error) {
	result, err := g.CreateFunction(c.Name, c.Params, c.Options, c.Definition)
	if err != nil {
		return "", err
	}
	return result.Reverse(c.Name, c.Params, schema.DropOptions{})
}

func (a *AlterFunction) kind() string { return "alter_function" }

func (a *AlterFunction) up(g *schema.Generator) (string, error) {
	return g.AlterFunction(a.Name, a.Params, a.Options)
}

// The previous owner, options and comment are unknown, so there is nothing to go back to.
func (a *AlterFunction) down(g *schema.Generator) (string, error) {
	return "", ErrIrreversible
}

func (r *RenameFunction) kind() string { return "rename_function" }

func (r *RenameFunction) up(g *schema.Generator) (string, error) {
	result, err := g.RenameFunction(r.Name, r.Params, r.NewName)
	if err != nil {
		return "", err
	}
	return result.SQL, nil
}

func (r *RenameFunction) down(g *schema.Generator) (string, error) {
	result, err := g.RenameFunction(r.Name, r.Params, r.NewName)
	if err != nil {
		return "", err
	}
	return result.Reverse(r.Name, r.Params, r.NewName)
}

func (d *DropFunction) kind() string { return "drop_function" }

func (d *DropFunction) up(g *schema.Generator) (string, error) {
	return g.DropFunction(d.Name, d.Params, schema.DropOptions{IfExists: d.IfExists, Cascade: d.Cascade})
}

// The definition of a dropped function isn't part of the operation.
func (d *DropFunction) down(g *schema.Generator) (string, error) {
	return "", ErrIrreversible
}

func (s *SQL) kind() string { return "sql" }

func (s *SQL) up(g *schema.Generator) (string, error) {
	return schema.Interpolate(s.Up, s.Args), nil
}

func (s *SQL) down(g *schema.Generator) (string, error) {
	if s.Down == nil {
		return "", ErrIrreversible
	}
	return schema.Interpolate(*s.Down, s.Args), nil
}
