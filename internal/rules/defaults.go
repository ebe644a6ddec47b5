package rules

import "github.com/sevigo/hybrid-warden/internal/core"

const sqlVerb = `(?:SELECT|INSERT|UPDATE|DELETE)\s`

// callArgs matches a parenthesised argument list on a single line, skipping
// over quoted strings that may contain a closing parenthesis.
const callArgs = `\((?:"[^"\n]*"|'[^'\n]*'|[^)\n])*\)`

// literalOnlyCall matches a call with no arguments or only string literal arguments.
const literalOnlyCall = `^[\w.]+\s*\(\s*(?:[rRbBuU]?(?:"[^"\n]*"|'[^'\n]*')\s*,?\s*)*\)$`

// literalEnd requires a string literal to be the whole value: it must be followed by
// the end of the line, a comment or a closing delimiter, not by an operator.
const literalEnd = `\s*(?:[,;)}\]]|#|$)`

// DefaultDefinitions returns the built-in rule set. Each rule targets one
// of the three categories and is written for Python sources.
func DefaultDefinitions() []Definition {
	return []Definition{
		{
			ID:          "sql-string-concat",
			Category:    core.CategorySQLInjection,
			Description: "SQL statement built by concatenating a string literal with a variable",
			Pattern:     `["']` + sqlVerb + `[^\n]*?["']\s*\+\s*[A-Za-z_]`,
		},
		{
			ID:          "sql-fstring",
			Category:    core.CategorySQLInjection,
			Description: "SQL statement built with an f-string interpolation",
			Pattern:     `\b[rR]?[fF][rR]?["']` + sqlVerb + `[^\n]*\{[^}\n]+\}`,
		},
		{
			ID:          "sql-percent-format",
			Category:    core.CategorySQLInjection,
			Description: "SQL statement built with %-formatting",
			Pattern:     `["']` + sqlVerb + `[^\n]*%[sd][^\n]*["']\s*%\s*[A-Za-z_(]`,
		},
		{
			ID:          "sql-str-format",
			Category:    core.CategorySQLInjection,
			Description: "SQL statement built with str.format",
			Pattern:     `["']` + sqlVerb + `[^\n]*\{[^}\n]*\}[^\n]*["']\.format\(`,
		},
		{
			ID:              "credential-assignment",
			Category:        core.CategoryHardcodedCredential,
			Description:     "Credential-like name assigned a string literal",
			Pattern:         `\b[A-Za-z_]*(?:password|passwd|pwd|secret|api_?key|token|access_?key|private_?key)[A-Za-z0-9_]*["']?\s*(?::\s*\w+\s*)?[:=]\s*[rbu]?["'][^"'\n]+["']` + literalEnd,
			CaseInsensitive: true,
		},
		{
			ID:          "aws-access-key-id",
			Category:    core.CategoryHardcodedCredential,
			Description: "AWS access key id literal",
			Pattern:     `\bAKIA[0-9A-Z]{16}\b`,
		},
		{
			ID:          "dynamic-eval",
			Category:    core.CategoryUnsafeDynamicExec,
			Description: "eval or exec called with a non-literal argument",
			Pattern:     `\b(?:eval|exec)\s*` + callArgs,
			Exclude:     literalOnlyCall,
		},
		{
			ID:          "os-command-exec",
			Category:    core.CategoryUnsafeDynamicExec,
			Description: "os.system or os.popen called with a non-literal argument",
			Pattern:     `\bos\.(?:system|popen)\s*` + callArgs,
			Exclude:     literalOnlyCall,
		},
	}
}

// DefaultTable compiles DefaultDefinitions. The built-in set always compiles.
func DefaultTable() *Table {
	t, err := NewTable(DefaultDefinitions())
	if err != nil {
		panic("rules: default table does not compile: " + err.Error())
	}
	return t
}
