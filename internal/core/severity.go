package core

import (
	"fmt"
	"strings"
)

// Severity is the risk tier assigned to a file or a whole review.
// The zero value is SeveritySafe and the constants are ordered so that
// a larger value is always the more severe one.
type Severity int

const (
	SeveritySafe Severity = iota
	SeverityMedium
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeveritySafe:
		return "Safe"
	case SeverityMedium:
		return "Medium"
	case SeverityHigh:
		return "High"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// MarshalText encodes the severity by name so JSON and database columns stay readable.
func (s Severity) MarshalText() ([]byte, error) {
	switch s {
	case SeveritySafe, SeverityMedium, SeverityHigh:
		return []byte(s.String()), nil
	default:
		return nil, fmt.Errorf("unknown severity %d", int(s))
	}
}

// UnmarshalText accepts any casing of Safe, Medium or High.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSeverity converts a severity name into a Severity.
func ParseSeverity(name string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "safe":
		return SeveritySafe, nil
	case "medium":
		return SeverityMedium, nil
	case "high":
		return SeverityHigh, nil
	default:
		return SeveritySafe, fmt.Errorf("unknown severity %q", name)
	}
}

// MaxSeverity returns the more severe of a and b.
func MaxSeverity(a, b Severity) Severity {
	if a > b {
		return a
	}
	return b
}

// Category names the family of a static rule.
type Category string

const (
	CategorySQLInjection        Category = "sql_injection"
	CategoryHardcodedCredential Category = "hardcoded_credential"
	CategoryUnsafeDynamicExec   Category = "unsafe_dynamic_exec"
)

// Categories lists every known category in display order.
func Categories() []Category {
	return []Category{CategorySQLInjection, CategoryHardcodedCredential, CategoryUnsafeDynamicExec}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategorySQLInjection, CategoryHardcodedCredential, CategoryUnsafeDynamicExec:
		return true
	default:
		return false
	}
}
