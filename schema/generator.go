// Package schema compiles declarative schema changes into PostgreSQL DDL.
package schema

import (
	"fmt"
	"strings"
)

// Generator holds the read-only settings shared by every builder: how
// identifiers are rendered and which type shorthands exist. A Generator
// keeps no state between calls and may be used from several goroutines.
type Generator struct {
	qualifier Qualifier
	resolver  *TypeResolver
}

func NewGenerator(qualifier Qualifier, shorthands Shorthands) *Generator {
	return &Generator{
		qualifier: qualifier,
		resolver:  NewTypeResolver(shorthands),
	}
}

func (g *Generator) Qualifier() Qualifier {
	return g.qualifier
}

func (g *Generator) ResolveType(t Type) (Type, error) {
	return g.resolver.Resolve(t)
}

// CommentOn renders `COMMENT ON <object> <name> IS <text>;`. A nil or empty
// text removes the comment.
func CommentOn(object string, name string, text *string) string {
	comment := Null()
	if text != nil && *text != "" {
		comment = String(*text)
	}
	return fmt.Sprintf("COMMENT ON %s %s IS %s;", object, name, Escape(comment))
}

func joinStatements(stmts []string) string {
	return strings.Join(stmts, "\n")
}
