// fix-tests rewrites the expected up and down scripts of YAML test cases with
// what the builders currently generate. Review the diff before committing it.
//
// Usage: go run ./cmd/fix-tests [pattern]
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sqldef/revdef/migration"
	"github.com/sqldef/revdef/testutil"
	"github.com/sqldef/revdef/util"
)

type TestFailure struct {
	TestName string
	YamlFile string
	Field    string
	Expected string
	Actual   string
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	pattern := "schema/testdata/*.yml"
	if len(os.Args) > 1 && os.Args[1] != "" {
		pattern = os.Args[1]
	}

	files, err := filepath.Glob(pattern)
	if err != nil {
		return err
	}

	var failures []TestFailure
	for _, file := range files {
		found, err := findFailures(file)
		if err != nil {
			return err
		}
		failures = append(failures, found...)
	}

	fmt.Printf("Found %d outdated expectations\n", len(failures))

	fixed := 0
	for _, failure := range failures {
		if err := updateYamlFile(failure.YamlFile, failure.TestName, failure.Field, failure.Actual); err != nil {
			log.Printf("Failed to fix test %s: %v", failure.TestName, err)
			continue
		}
		fmt.Printf("Fixed %s of test: %s in %s\n", failure.Field, failure.TestName, filepath.Base(failure.YamlFile))
		fixed++
	}

	fmt.Printf("\n=== Summary ===\n")
	fmt.Printf("Outdated: %d\n", len(failures))
	fmt.Printf("Fixed: %d\n", fixed)
	fmt.Printf("Failed to fix: %d\n", len(failures)-fixed)
	return nil
}

// findFailures compiles every case in file that expects a script and returns
// the ones whose script changed. Cases expecting an error are left alone.
func findFailures(file string) ([]TestFailure, error) {
	tests, err := testutil.ReadTests(file)
	if err != nil {
		return nil, err
	}

	var failures []TestFailure
	for name, test := range util.CanonicalMapIter(tests) {
		expectations := []struct {
			field     string
			expected  *string
			direction migration.Direction
		}{
			{"up", test.Up, migration.Up},
			{"down", test.Down, migration.Down},
		}
		for _, e := range expectations {
			if e.expected == nil {
				continue
			}
			actual, err := testutil.Compile(test, e.direction)
			if err != nil {
				log.Printf("Skipping %s of test %s: %v", e.field, name, err)
				continue
			}
			if strings.TrimSpace(*e.expected) != actual {
				failures = append(failures, TestFailure{
					TestName: name,
					YamlFile: file,
					Field:    e.field,
					Expected: *e.expected,
					Actual:   actual,
				})
			}
		}
	}
	return failures, nil
}

func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " "))
}

// updateYamlFile replaces the block scalar `field: |` of a top-level test case,
// leaving the rest of the file untouched.
func updateYamlFile(filename, testName, field, newValue string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	lines := strings.Split(string(data), "\n")

	start := slices.Index(lines, testName+":")
	if start < 0 {
		return fmt.Errorf("test %s not found in %s", testName, filename)
	}

	// Fields of the test case share the indent of its first line. Deeper lines
	// belong to operations, which may carry their own `down: |`.
	fieldIndent := -1
	for i := start + 1; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if indentOf(line) == 0 {
			break // next test case
		}
		if fieldIndent < 0 {
			fieldIndent = indentOf(line)
		}
		if indentOf(line) != fieldIndent || !strings.HasPrefix(trimmed, field+": |") {
			continue
		}

		end := i + 1
		for end < len(lines) {
			next := lines[end]
			if strings.TrimSpace(next) != "" && indentOf(next) <= fieldIndent {
				break
			}
			end++
		}
		// Keep the blank lines separating this field from what follows.
		for end > i+1 && strings.TrimSpace(lines[end-1]) == "" {
			end--
		}

		var value []string
		for vline := range strings.SplitSeq(newValue, "\n") {
			value = append(value, strings.Repeat(" ", fieldIndent+2)+vline)
		}
		lines = slices.Concat(lines[:i+1], value, lines[end:])
		return os.WriteFile(filename, []byte(strings.Join(lines, "\n")), 0o644)
	}
	return fmt.Errorf("field %s: | not found in test %s", field, testName)
}
