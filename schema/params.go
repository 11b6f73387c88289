package schema

import (
	"fmt"
	"strings"
)

// FormatParams renders a parenthesised parameter list, e.g. `(IN "a" integer DEFAULT 1, text)`.
func (g *Generator) FormatParams(params []Param) (string, error) {
	return g.formatParams(params, true)
}

// formatSignature renders params without defaults, as DROP, ALTER and COMMENT
// ON accept them.
func (g *Generator) formatSignature(params []Param) (string, error) {
	return g.formatParams(params, false)
}

func (g *Generator) formatParams(params []Param, withDefaults bool) (string, error) {
	formatted := make([]string, len(params))
	for i, param := range params {
		p, err := g.formatParam(param, withDefaults)
		if err != nil {
			return "", fmt.Errorf("parameter %d: %w", i+1, err)
		}
		formatted[i] = p
	}
	return "(" + strings.Join(formatted, ", ") + ")", nil
}

func (g *Generator) formatParam(param Param, withDefaults bool) (string, error) {
	resolved, err := g.resolver.Resolve(param)
	if err != nil {
		return "", err
	}

	var parts []string
	if resolved.Mode != "" {
		parts = append(parts, resolved.Mode)
	}
	if resolved.Name != "" {
		parts = append(parts, g.qualifier.Ident(resolved.Name))
	}
	if resolved.Type != "" {
		parts = append(parts, resolved.Type)
	}
	if withDefaults && resolved.Default != nil {
		parts = append(parts, "DEFAULT "+Escape(*resolved.Default))
	}
	return strings.Join(parts, " "), nil
}
