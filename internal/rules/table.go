// Package rules holds the static rule table and the analyzer that applies it
// to source text line by line.
package rules

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/sevigo/hybrid-warden/internal/core"
)

// ErrInvalidRule is returned when a rule definition cannot be compiled into the table.
var ErrInvalidRule = errors.New("invalid rule")

// Definition describes one static rule before compilation.
type Definition struct {
	ID          string
	Category    core.Category
	Description string
	// Pattern is matched against every line of a file.
	Pattern string
	// Exclude, when set, suppresses a match whose text it matches.
	Exclude         string
	CaseInsensitive bool
}

// Rule is a compiled Definition.
type Rule struct {
	ID          string
	Category    core.Category
	Description string

	pattern *regexp.Regexp
	exclude *regexp.Regexp
}

// Table is an immutable, ordered set of compiled rules.
// It is safe for concurrent use.
type Table struct {
	rules []Rule
}

// NewTable compiles the definitions in order. Every definition must have a
// unique ID, a known category and a pattern that compiles.
func NewTable(defs []Definition) (*Table, error) {
	seen := make(map[string]struct{}, len(defs))
	rules := make([]Rule, 0, len(defs))

	for _, d := range defs {
		if d.ID == "" {
			return nil, fmt.Errorf("%w: rule without id", ErrInvalidRule)
		}
		if _, dup := seen[d.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate rule id %q", ErrInvalidRule, d.ID)
		}
		seen[d.ID] = struct{}{}

		if !d.Category.Valid() {
			return nil, fmt.Errorf("%w: rule %q has unknown category %q", ErrInvalidRule, d.ID, d.Category)
		}

		pattern, err := compile(d.Pattern, d.CaseInsensitive)
		if err != nil {
			return nil, fmt.Errorf("%w: rule %q: %w", ErrInvalidRule, d.ID, err)
		}

		var exclude *regexp.Regexp
		if d.Exclude != "" {
			exclude, err = compile(d.Exclude, d.CaseInsensitive)
			if err != nil {
				return nil, fmt.Errorf("%w: rule %q exclude: %w", ErrInvalidRule, d.ID, err)
			}
		}

		rules = append(rules, Rule{
			ID:          d.ID,
			Category:    d.Category,
			Description: d.Description,
			pattern:     pattern,
			exclude:     exclude,
		})
	}

	return &Table{rules: rules}, nil
}

func compile(expr string, caseInsensitive bool) (*regexp.Regexp, error) {
	if expr == "" {
		return nil, errors.New("empty pattern")
	}
	if caseInsensitive {
		expr = "(?i)" + expr
	}
	return regexp.Compile(expr)
}

// Rules returns a copy of the compiled rules in table order.
func (t *Table) Rules() []Rule {
	out := make([]Rule, len(t.rules))
	copy(out, t.rules)
	return out
}

// Len returns the number of rules in the table.
func (t *Table) Len() int { return len(t.rules) }

// Categories returns the distinct categories covered by the table.
func (t *Table) Categories() []core.Category {
	seen := make(map[core.Category]bool)
	for _, r := range t.rules {
		seen[r.Category] = true
	}
	var out []core.Category
	for _, c := range core.Categories() {
		if seen[c] {
			out = append(out, c)
		}
	}
	return out
}

// matches returns the [start, end) byte ranges of every non-excluded match in line.
func (r *Rule) matches(line string) [][]int {
	locs := r.pattern.FindAllStringIndex(line, -1)
	if r.exclude == nil {
		return locs
	}
	kept := locs[:0]
	for _, loc := range locs {
		if r.exclude.MatchString(line[loc[0]:loc[1]]) {
			continue
		}
		kept = append(kept, loc)
	}
	return kept
}
