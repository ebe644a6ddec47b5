package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sevigo/hybrid-warden/internal/core"
)

func TestFuse(t *testing.T) {
	tests := []struct {
		static bool
		ml     bool
		want   core.Severity
	}{
		{static: true, ml: true, want: core.SeverityHigh},
		{static: true, ml: false, want: core.SeverityMedium},
		{static: false, ml: true, want: core.SeverityMedium},
		{static: false, ml: false, want: core.SeveritySafe},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Fuse(tt.static, tt.ml), "static=%v ml=%v", tt.static, tt.ml)
	}
}

func TestEvaluateThresholdBoundary(t *testing.T) {
	none := []core.StaticFinding(nil)
	one := []core.StaticFinding{{RuleID: "dynamic-eval", Category: core.CategoryUnsafeDynamicExec}}

	tests := []struct {
		name        string
		findings    []core.StaticFinding
		probability float64
		want        core.Severity
	}{
		{name: "exactly at threshold counts as detected", findings: none, probability: 0.5, want: core.SeverityMedium},
		{name: "just below threshold", findings: none, probability: 0.4999, want: core.SeveritySafe},
		{name: "static with ml at threshold", findings: one, probability: 0.5, want: core.SeverityHigh},
		{name: "static with ml below", findings: one, probability: 0.2, want: core.SeverityMedium},
		{name: "nothing", findings: none, probability: 0, want: core.SeveritySafe},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.findings, core.MLScore{Probability: tt.probability}, 0.5))
		})
	}
}

func TestEvaluateDependsOnlyOnVerdicts(t *testing.T) {
	a := []core.StaticFinding{{RuleID: "sql-fstring", Category: core.CategorySQLInjection, Line: 1}}
	b := []core.StaticFinding{
		{RuleID: "aws-access-key-id", Category: core.CategoryHardcodedCredential, Line: 9},
		{RuleID: "dynamic-eval", Category: core.CategoryUnsafeDynamicExec, Line: 12},
	}
	assert.Equal(t,
		Evaluate(a, core.MLScore{Probability: 0.51}, 0.5),
		Evaluate(b, core.MLScore{Probability: 0.99}, 0.5),
	)
}

func TestExplain(t *testing.T) {
	findings := []core.StaticFinding{
		{RuleID: "dynamic-eval", Category: core.CategoryUnsafeDynamicExec},
		{RuleID: "sql-fstring", Category: core.CategorySQLInjection},
		{RuleID: "os-command-exec", Category: core.CategoryUnsafeDynamicExec},
	}

	assert.Equal(t,
		"static: sql_injection, unsafe_dynamic_exec; ml probability 0.91 at or above threshold 0.50",
		Explain(findings, core.MLScore{Probability: 0.912}, 0.5),
	)
	assert.Equal(t,
		"static: none; ml probability 0.20 below threshold 0.50",
		Explain(nil, core.MLScore{Probability: 0.2}, 0.5),
	)
}
