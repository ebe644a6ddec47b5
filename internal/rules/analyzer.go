package rules

import (
	"cmp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/sevigo/hybrid-warden/internal/core"
)

// maxSnippetLen bounds the snippet stored for a finding.
const maxSnippetLen = 200

// Analyzer applies a Table to source text.
type Analyzer struct {
	table *Table
}

// NewAnalyzer creates an Analyzer. It panics if table is nil.
func NewAnalyzer(table *Table) *Analyzer {
	if table == nil {
		panic("table is required")
	}
	return &Analyzer{table: table}
}

// Table returns the rule table the analyzer applies.
func (a *Analyzer) Table() *Table { return a.table }

// Analyze returns every finding in code, ordered by line, then column, then
// table order. The same input always yields the same findings.
func (a *Analyzer) Analyze(code string) []core.StaticFinding {
	if code == "" {
		return nil
	}

	var findings []core.StaticFinding
	for i, line := range strings.Split(code, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		findings = append(findings, a.analyzeLine(i+1, line)...)
	}
	return findings
}

func (a *Analyzer) analyzeLine(lineNo int, line string) []core.StaticFinding {
	var (
		found   []core.StaticFinding
		snippet string
	)
	for ri := range a.table.rules {
		rule := &a.table.rules[ri]
		for _, loc := range rule.matches(line) {
			if snippet == "" {
				snippet = truncate(strings.TrimSpace(line), maxSnippetLen)
			}
			found = append(found, core.StaticFinding{
				RuleID:   rule.ID,
				Category: rule.Category,
				Line:     lineNo,
				Column:   loc[0] + 1,
				Match:    line[loc[0]:loc[1]],
				Snippet:  snippet,
			})
		}
	}
	if len(found) < 2 {
		return found
	}
	// Stable so that table order breaks ties at the same column.
	slices.SortStableFunc(found, func(x, y core.StaticFinding) int {
		return cmp.Compare(x.Column, y.Column)
	})
	return found
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
