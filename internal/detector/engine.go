package detector

import (
	"github.com/sevigo/hybrid-warden/internal/core"
)

// StaticAnalyzer finds rule matches in source text.
type StaticAnalyzer interface {
	Analyze(code string) []core.StaticFinding
}

// Classifier scores source text.
type Classifier interface {
	Predict(code string) float64
	Threshold() float64
}

// Engine runs both detectors on a file and fuses their verdicts.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	analyzer   StaticAnalyzer
	classifier Classifier
}

// NewEngine creates an Engine. It panics if either detector is nil.
func NewEngine(analyzer StaticAnalyzer, classifier Classifier) *Engine {
	if analyzer == nil {
		panic("analyzer is required")
	}
	if classifier == nil {
		panic("classifier is required")
	}
	return &Engine{analyzer: analyzer, classifier: classifier}
}

// Threshold returns the classifier decision threshold.
func (e *Engine) Threshold() float64 { return e.classifier.Threshold() }

// AnalyzeFile analyzes code from the file at path.
func (e *Engine) AnalyzeFile(path, code string) core.FileAnalysisResult {
	findings := e.analyzer.Analyze(code)
	score := core.MLScore{Probability: e.classifier.Predict(code)}
	threshold := e.classifier.Threshold()

	return core.FileAnalysisResult{
		FilePath:    path,
		Findings:    findings,
		Score:       score,
		Severity:    Evaluate(findings, score, threshold),
		Explanation: Explain(findings, score, threshold),
		Analyzed:    true,
	}
}

// Unanalyzed marks a file whose content could not be analyzed. It carries no severity judgment.
func Unanalyzed(path string, err error) core.FileAnalysisResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return core.FileAnalysisResult{
		FilePath:    path,
		Severity:    core.SeveritySafe,
		Explanation: "not analyzed: " + msg,
		Analyzed:    false,
		Error:       msg,
	}
}
