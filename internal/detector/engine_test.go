package detector

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/hybrid-warden/internal/core"
	"github.com/sevigo/hybrid-warden/internal/rules"
)

type fixedClassifier struct {
	probability float64
	threshold   float64
}

func (c fixedClassifier) Predict(string) float64 { return c.probability }
func (c fixedClassifier) Threshold() float64     { return c.threshold }

func TestEngineAnalyzeFile(t *testing.T) {
	analyzer := rules.NewAnalyzer(rules.DefaultTable())

	tests := []struct {
		name        string
		code        string
		probability float64
		want        core.Severity
		wantRules   int
	}{
		{
			name:        "sql concatenation with low probability",
			code:        `query = "SELECT * FROM users WHERE name = '" + name + "'"`,
			probability: 0.2,
			want:        core.SeverityMedium,
			wantRules:   1,
		},
		{
			name:        "eval of user input with high probability",
			code:        "def run(user_input):\n    return eval(user_input)\n",
			probability: 0.9,
			want:        core.SeverityHigh,
			wantRules:   1,
		},
		{
			name:        "clean file with low probability",
			code:        "def add(a, b):\n    return a + b\n",
			probability: 0.1,
			want:        core.SeveritySafe,
		},
		{
			name:        "clean file the model distrusts",
			code:        "def add(a, b):\n    return a + b\n",
			probability: 0.7,
			want:        core.SeverityMedium,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(analyzer, fixedClassifier{probability: tt.probability, threshold: 0.5})
			result := engine.AnalyzeFile("app/views.py", tt.code)

			assert.Equal(t, "app/views.py", result.FilePath)
			assert.True(t, result.Analyzed)
			assert.Equal(t, tt.want, result.Severity)
			assert.Len(t, result.Findings, tt.wantRules)
			assert.Equal(t, tt.probability, result.Score.Probability)
			assert.NotEmpty(t, result.Explanation)
		})
	}
}

func TestUnanalyzed(t *testing.T) {
	result := Unanalyzed("app/models.py", errors.New("context deadline exceeded"))
	assert.False(t, result.Analyzed)
	assert.Equal(t, "context deadline exceeded", result.Error)
	assert.Equal(t, core.SeveritySafe, result.Severity)
	assert.Empty(t, result.Findings)

	assert.Equal(t, "unknown error", Unanalyzed("x.py", nil).Error)
}

func TestNewEnginePanicsOnNil(t *testing.T) {
	require.Panics(t, func() { NewEngine(nil, fixedClassifier{}) })
	require.Panics(t, func() { NewEngine(rules.NewAnalyzer(rules.DefaultTable()), nil) })
}
