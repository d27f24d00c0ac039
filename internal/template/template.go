// Package template fills fixed-shape prompt templates with named string values.
//
// Placeholders use the `{name}` form. Filling is a single literal pass over the
// template: bound values are inserted as-is and never re-scanned, so a value that
// itself contains braces (Go source, for instance) cannot trip the check for
// unfilled placeholders.
package template

import (
	"fmt"
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{[A-Za-z_][A-Za-z0-9_]*\}`)

// UnresolvedError reports a placeholder that had no binding.
type UnresolvedError struct {
	Placeholder string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("expected variable: %s", e.Placeholder)
}

// Fill normalizes tpl and replaces every `{name}` with bindings[name].
// It fails with *UnresolvedError if any placeholder is left without a value.
func Fill(tpl string, bindings map[string]string) (string, error) {
	normalized := Normalize(tpl)

	var unresolved string
	result := placeholderPattern.ReplaceAllStringFunc(normalized, func(token string) string {
		name := token[1 : len(token)-1]
		if value, ok := bindings[name]; ok {
			return value
		}
		if unresolved == "" {
			unresolved = token
		}
		return token
	})

	if unresolved != "" {
		return "", &UnresolvedError{Placeholder: unresolved}
	}
	return result, nil
}

// Placeholders returns the distinct placeholder names of tpl in order of first appearance.
func Placeholders(tpl string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, token := range placeholderPattern.FindAllString(tpl, -1) {
		name := token[1 : len(token)-1]
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// Normalize drops leading blank lines and trailing whitespace, then removes the
// indentation common to every non-blank line.
func Normalize(tpl string) string {
	trimmed := strings.TrimRightFunc(strings.TrimLeft(tpl, "\r\n"), isSpace)
	return dedent(trimmed)
}

func dedent(s string) string {
	lines := strings.Split(s, "\n")

	margin := ""
	first := true
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if first {
			margin = indent
			first = false
			continue
		}
		margin = commonPrefix(margin, indent)
		if margin == "" {
			break
		}
	}

	if margin == "" {
		return s
	}
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ""
			continue
		}
		lines[i] = strings.TrimPrefix(line, margin)
	}
	return strings.Join(lines, "\n")
}

func commonPrefix(a, b string) string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:n]
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
