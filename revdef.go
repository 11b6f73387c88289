package revdef

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/k0kubun/pp/v3"
	"golang.org/x/term"

	"github.com/sqldef/revdef/migration"
	"github.com/sqldef/revdef/schema"
)

type Options struct {
	Files       []string
	Direction   migration.Direction
	Concurrency int
	Debug       bool
}

// Main function shared by all commands. It writes the up script of every file
// to w in the order the files were given, or their down scripts last to first.
func Run(w io.Writer, generator *schema.Generator, options *Options) error {
	files := slices.Clone(options.Files)
	if options.Direction == migration.Down {
		slices.Reverse(files)
	}

	docs := make([]*migration.Document, len(files))
	for i, file := range files {
		buf, err := ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read '%s': %w", file, err)
		}
		doc, err := migration.ParseDocument([]byte(buf))
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		if options.Debug {
			pp.Fprintln(os.Stderr, doc)
		}
		docs[i] = doc
	}

	scripts, err := migration.CompileAll(generator, docs, options.Direction, options.Concurrency)
	if err != nil {
		return err
	}
	slog.Debug("Compiled migrations", "files", len(docs), "direction", options.Direction)

	for i, stmts := range scripts {
		if len(files) > 1 {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "-- %s (%s) --\n", files[i], options.Direction)
		}
		if len(stmts) == 0 {
			fmt.Fprintln(w, "-- Nothing is modified --")
			continue
		}
		fmt.Fprintln(w, strings.Join(stmts, "\n\n"))
	}
	return nil
}

// ParseFiles defaults to stdin when no file is given.
func ParseFiles(files []string) []string {
	if len(files) == 0 {
		return []string{"-"}
	}
	return files
}

func ReadFile(filepath string) (string, error) {
	var err error
	var buf []byte

	if filepath == "-" {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return "", fmt.Errorf("stdin is not piped")
		}

		buf, err = io.ReadAll(os.Stdin)
	} else {
		buf, err = os.ReadFile(filepath)
	}

	if err != nil {
		return "", err
	}
	return string(buf), nil
}
