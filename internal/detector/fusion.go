// Package detector fuses the static rule analyzer and the linear classifier
// into a single severity per file.
package detector

import (
	"fmt"
	"strings"

	"github.com/sevigo/hybrid-warden/internal/core"
)

// Fuse maps the two detector verdicts onto a severity:
//
//	static  ml     severity
//	true    true   High
//	true    false  Medium
//	false   true   Medium
//	false   false  Safe
func Fuse(staticDetected, mlDetected bool) core.Severity {
	switch {
	case staticDetected && mlDetected:
		return core.SeverityHigh
	case staticDetected || mlDetected:
		return core.SeverityMedium
	default:
		return core.SeveritySafe
	}
}

// Evaluate fuses the raw detector outputs. The ML verdict is inclusive of the threshold.
func Evaluate(findings []core.StaticFinding, score core.MLScore, threshold float64) core.Severity {
	return Fuse(len(findings) > 0, score.Probability >= threshold)
}

// Explain returns a one-line, human-readable account of both detector outputs.
func Explain(findings []core.StaticFinding, score core.MLScore, threshold float64) string {
	var b strings.Builder

	categories := core.FindingCategories(findings)
	if len(categories) == 0 {
		b.WriteString("static: none")
	} else {
		names := make([]string, len(categories))
		for i, c := range categories {
			names[i] = string(c)
		}
		fmt.Fprintf(&b, "static: %s", strings.Join(names, ", "))
	}

	verdict := "below"
	if score.Probability >= threshold {
		verdict = "at or above"
	}
	fmt.Fprintf(&b, "; ml probability %.2f %s threshold %.2f", score.Probability, verdict, threshold)
	return b.String()
}
