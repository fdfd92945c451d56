package database

import (
	"fmt"
	"regexp"
)

// TableClassifier decides whether a table holds constant reference data.
// Classification is pure: it looks only at the table name.
type TableClassifier struct {
	names    map[string]struct{}
	patterns []*regexp.Regexp
}

// NewTableClassifier compiles a classifier from exact names and regular
// expression patterns. Patterns are matched from the start of the table
// name, so "legacy_" style prefixes work without anchoring.
func NewTableClassifier(names []string, patterns []string) (*TableClassifier, error) {
	c := &TableClassifier{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		c.names[n] = struct{}{}
	}
	for _, p := range patterns {
		re, err := regexp.Compile(`\A(?:` + p + `)`)
		if err != nil {
			return nil, fmt.Errorf("invalid const table pattern %q: %w", p, err)
		}
		c.patterns = append(c.patterns, re)
	}
	return c, nil
}

// IsConst reports whether name designates a constant table.
func (c *TableClassifier) IsConst(name string) bool {
	if _, ok := c.names[name]; ok {
		return true
	}
	for _, re := range c.patterns {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}
