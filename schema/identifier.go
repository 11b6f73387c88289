package schema

import (
	"fmt"
	"regexp"

	"github.com/lib/pq"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Name is a possibly schema-qualified object name. An empty Schema renders unqualified.
type Name struct {
	Schema string `yaml:"schema,omitempty"`
	Name   string `yaml:"name"`
}

func Ident(name string) Name {
	return Name{Name: name}
}

func QualifiedName(schema, name string) Name {
	return Name{Schema: schema, Name: name}
}

func (n Name) String() string {
	if n.Schema == "" {
		return n.Name
	}
	return n.Schema + "." + n.Name
}

// UnmarshalYAML accepts either a bare string or a {schema, name} mapping.
func (n *Name) UnmarshalYAML(unmarshal func(any) error) error {
	var x any
	if err := unmarshal(&x); err != nil {
		return err
	}
	if s, ok := x.(string); ok {
		*n = Ident(s)
		return nil
	}

	type plain Name
	var p plain
	if err := unmarshal(&p); err != nil {
		return err
	}
	if p.Name == "" {
		return fmt.Errorf("name is required in %v", x)
	}
	*n = Name(p)
	return nil
}

// Qualifier renders identifiers. Every identifier in generated SQL goes through it.
type Qualifier struct {
	// Decamelize turns camelCase segments into snake_case before quoting.
	Decamelize bool
	// Quote wraps each segment in double quotes.
	Quote bool
}

// Qualify renders a name, transforming schema and name segments independently.
func (q Qualifier) Qualify(n Name) string {
	if n.Schema == "" {
		return q.Ident(n.Name)
	}
	return q.Ident(n.Schema) + "." + q.Ident(n.Name)
}

// Ident renders a single identifier segment.
func (q Qualifier) Ident(s string) string {
	if q.Decamelize {
		s = decamelize(s)
	}
	if q.Quote {
		s = pq.QuoteIdentifier(s)
	}
	return s
}

var (
	lowerUpperRegex = regexp.MustCompile(`([\p{Ll}\d])(\p{Lu})`)
	upperRunRegex   = regexp.MustCompile(`(\p{Lu}+)(\p{Lu}[\p{Ll}\d]+)`)
)

// decamelize converts "userId" to "user_id" and "XMLHttpRequest" to "xml_http_request".
func decamelize(s string) string {
	s = lowerUpperRegex.ReplaceAllString(s, "${1}_${2}")
	s = upperRunRegex.ReplaceAllString(s, "${1}_${2}")
	// A Caser is stateful, so it can't be shared between concurrent callers.
	return cases.Lower(language.Und).String(s)
}
