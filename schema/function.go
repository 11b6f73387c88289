package schema

import (
	"fmt"
	"log/slog"
)

// FunctionOptions lists every routine property the builders understand.
// Zero values and nil pointers are left out of the generated SQL.
type FunctionOptions struct {
	Replace  bool   `yaml:"replace,omitempty"`
	Returns  string `yaml:"returns,omitempty"` // default: void
	Language string `yaml:"language,omitempty"`

	Behavior string `yaml:"behavior,omitempty"` // IMMUTABLE, STABLE or VOLATILE
	Window   bool   `yaml:"window,omitempty"`
	// OnNull and Strict both select null handling. If either is true the function
	// RETURNS NULL ON NULL INPUT; if only false values are given it is CALLED ON NULL INPUT.
	OnNull   *bool    `yaml:"on_null,omitempty"`
	Strict   *bool    `yaml:"strict,omitempty"`
	Security string   `yaml:"security,omitempty"` // DEFINER or INVOKER
	Parallel string   `yaml:"parallel,omitempty"` // UNSAFE, RESTRICTED or SAFE
	Cost     *float64 `yaml:"cost,omitempty"`
	Rows     *float64 `yaml:"rows,omitempty"`
	Support  string   `yaml:"support,omitempty"`

	Owner   string  `yaml:"owner,omitempty"`
	Comment *string `yaml:"comment,omitempty"`
}

type DropOptions struct {
	IfExists bool `yaml:"if_exists,omitempty"`
	Cascade  bool `yaml:"cascade,omitempty"`
}

// DropFunctionFunc has the signature of Generator.DropFunction.
type DropFunctionFunc func(name Name, params []Param, options DropOptions) (string, error)

// RenameFunctionFunc has the signature of Generator.RenameFunction's text output.
type RenameFunctionFunc func(oldName Name, params []Param, newName Name) (string, error)

// CreateFunctionResult is a CREATE FUNCTION statement and the operation that undoes it.
type CreateFunctionResult struct {
	SQL     string
	Reverse DropFunctionFunc
}

// RenameFunctionResult is a rename and the operation that undoes it.
type RenameFunctionResult struct {
	SQL     string
	Reverse RenameFunctionFunc
}

// The clauses are always emitted in this order, whatever order they were given in.
func functionOptionClauses(options FunctionOptions) []string {
	var clauses []string
	if options.Behavior != "" {
		clauses = append(clauses, options.Behavior)
	}
	if options.Window {
		clauses = append(clauses, "WINDOW")
	}
	if options.OnNull != nil || options.Strict != nil {
		if (options.OnNull != nil && *options.OnNull) || (options.Strict != nil && *options.Strict) {
			clauses = append(clauses, "RETURNS NULL ON NULL INPUT")
		} else {
			clauses = append(clauses, "CALLED ON NULL INPUT")
		}
	}
	if options.Security != "" {
		clauses = append(clauses, "SECURITY "+options.Security)
	}
	if options.Parallel != "" {
		clauses = append(clauses, "PARALLEL "+options.Parallel)
	}
	// COST and ROWS only take numeric literals.
	if options.Cost != nil {
		if isFinite(*options.Cost) {
			clauses = append(clauses, "COST "+formatNumber(*options.Cost))
		} else {
			slog.Warn("Ignoring non-finite function option", "option", "cost", "value", *options.Cost)
		}
	}
	if options.Rows != nil {
		if isFinite(*options.Rows) {
			clauses = append(clauses, "ROWS "+formatNumber(*options.Rows))
		} else {
			slog.Warn("Ignoring non-finite function option", "option", "rows", "value", *options.Rows)
		}
	}
	if options.Support != "" {
		clauses = append(clauses, "SUPPORT "+options.Support)
	}
	return clauses
}

func formatClauses(clauses []string) string {
	var s string
	for _, clause := range clauses {
		s += "\n  " + clause
	}
	return s
}

// functionIdentity renders `<name>(<params>)`, which is how PostgreSQL identifies an overload.
func (g *Generator) functionIdentity(name Name, params []Param) (string, error) {
	paramsStr, err := g.formatSignature(params)
	if err != nil {
		return "", fmt.Errorf("function %s: %w", name, err)
	}
	return g.qualifier.Qualify(name) + paramsStr, nil
}

func (g *Generator) CreateFunction(name Name, params []Param, options FunctionOptions, definition Value) (*CreateFunctionResult, error) {
	id, err := g.functionIdentity(name, params)
	if err != nil {
		return nil, err
	}
	paramsStr, err := g.FormatParams(params)
	if err != nil {
		return nil, fmt.Errorf("function %s: %w", name, err)
	}
	if options.Language == "" {
		return nil, &ConfigError{Object: "function " + id, Err: ErrLanguageRequired}
	}

	replace := ""
	if options.Replace {
		replace = " OR REPLACE"
	}
	returns := options.Returns
	if returns == "" {
		returns = "void"
	}

	stmts := []string{
		fmt.Sprintf("CREATE%s FUNCTION %s\n  RETURNS %s\n  LANGUAGE %s\n  AS %s%s;",
			replace, g.qualifier.Qualify(name)+paramsStr, returns, options.Language, Escape(definition), formatClauses(functionOptionClauses(options))),
	}
	if options.Comment != nil {
		stmts = append(stmts, CommentOn("FUNCTION", id, options.Comment))
	}
	slog.Debug("Compiled CREATE FUNCTION", "function", id)

	return &CreateFunctionResult{
		SQL:     joinStatements(stmts),
		Reverse: g.DropFunction,
	}, nil
}

func (g *Generator) DropFunction(name Name, params []Param, options DropOptions) (string, error) {
	id, err := g.functionIdentity(name, params)
	if err != nil {
		return "", err
	}

	ifExists := ""
	if options.IfExists {
		ifExists = " IF EXISTS"
	}
	cascade := ""
	if options.Cascade {
		cascade = " CASCADE"
	}
	return fmt.Sprintf("DROP FUNCTION%s %s%s;", ifExists, id, cascade), nil
}

// AlterFunction changes the owner, the option clauses and the comment, each only if given.
// Replace, Returns and Language have no meaning here and are ignored.
func (g *Generator) AlterFunction(name Name, params []Param, options FunctionOptions) (string, error) {
	id, err := g.functionIdentity(name, params)
	if err != nil {
		return "", err
	}

	var stmts []string
	if options.Owner != "" {
		stmts = append(stmts, fmt.Sprintf("ALTER FUNCTION %s\n  OWNER TO %s;", id, options.Owner))
	}
	if clauses := functionOptionClauses(options); len(clauses) > 0 {
		stmts = append(stmts, fmt.Sprintf("ALTER FUNCTION %s%s;", id, formatClauses(clauses)))
	}
	if options.Comment != nil {
		stmts = append(stmts, CommentOn("FUNCTION", id, options.Comment))
	}
	return joinStatements(stmts), nil
}

// RenameFunction moves a function to newName's schema (if it names a different
// one) and then renames it (if the name differs).
func (g *Generator) RenameFunction(oldName Name, params []Param, newName Name) (*RenameFunctionResult, error) {
	sql, err := g.renameFunction(oldName, params, newName)
	if err != nil {
		return nil, err
	}
	return &RenameFunctionResult{
		SQL: sql,
		Reverse: func(oldName Name, params []Param, newName Name) (string, error) {
			return g.renameFunction(newName, params, oldName)
		},
	}, nil
}

func (g *Generator) renameFunction(oldName Name, params []Param, newName Name) (string, error) {
	paramsStr, err := g.formatSignature(params)
	if err != nil {
		return "", fmt.Errorf("function %s: %w", oldName, err)
	}

	var stmts []string
	current := oldName
	if newName.Schema != "" && newName.Schema != current.Schema {
		stmts = append(stmts, fmt.Sprintf("ALTER FUNCTION %s%s SET SCHEMA %s;",
			g.qualifier.Qualify(current), paramsStr, g.qualifier.Ident(newName.Schema)))
		current.Schema = newName.Schema
	}
	if newName.Name != current.Name {
		stmts = append(stmts, fmt.Sprintf("ALTER FUNCTION %s%s RENAME TO %s;",
			g.qualifier.Qualify(current), paramsStr, g.qualifier.Ident(newName.Name)))
	}
	return joinStatements(stmts), nil
}
