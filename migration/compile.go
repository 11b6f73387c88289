package migration

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/sqldef/revdef/schema"
)

type Direction int

const (
	Up Direction = iota
	Down
)

func (d Direction) String() string {
	if d == Down {
		return "down"
	}
	return "up"
}

// Compile returns the statements of a document in the given direction. Down
// scripts undo the operations last to first, unless the document gives its own.
// Operations that change nothing contribute no statement.
func Compile(g *schema.Generator, doc *Document, direction Direction) ([]string, error) {
	if direction == Down && doc.Down != nil {
		if *doc.Down == "" {
			return nil, nil
		}
		return []string{*doc.Down}, nil
	}

	changes := make([]change, len(doc.Operations))
	for i, op := range doc.Operations {
		c, err := op.change()
		if err != nil {
			return nil, fmt.Errorf("operation %d: %w", i+1, err)
		}
		changes[i] = c
	}

	var stmts []string
	if direction == Up {
		for i, c := range changes {
			sql, err := c.up(g)
			if err != nil {
				return nil, fmt.Errorf("operation %d (%s): %w", i+1, c.kind(), err)
			}
			slog.Debug("Compiled operation", "index", i+1, "kind", c.kind(), "direction", direction)
			if sql != "" {
				stmts = append(stmts, sql)
			}
		}
		return stmts, nil
	}

	for i, c := range slices.Backward(changes) {
		sql, err := c.down(g)
		if err != nil {
			return nil, fmt.Errorf("operation %d (%s): %w", i+1, c.kind(), err)
		}
		slog.Debug("Compiled operation", "index", i+1, "kind", c.kind(), "direction", direction)
		if sql != "" {
			stmts = append(stmts, sql)
		}
	}
	return stmts, nil
}

// CompileAll compiles documents concurrently, at most concurrency at a time
// (0: one at a time, negative: unlimited). Results keep the order of docs.
func CompileAll(g *schema.Generator, docs []*Document, direction Direction, concurrency int) ([][]string, error) {
	return ConcurrentMapFuncWithError(docs, concurrency, func(doc *Document) ([]string, error) {
		return Compile(g, doc, direction)
	})
}
