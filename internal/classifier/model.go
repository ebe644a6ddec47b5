// Package classifier implements inference for the linear TF-IDF model that
// scores a source file's likelihood of being vulnerable.
package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"math"
	"os"
	"slices"
)

// DefaultThreshold is the decision threshold used when none is configured.
const DefaultThreshold = 0.5

// ErrInvalidModel is returned when a model artifact cannot be used for inference.
var ErrInvalidModel = errors.New("invalid model artifact")

// Artifact is the on-disk JSON form of a trained model, as written by the
// training exporter.
type Artifact struct {
	Version        int            `json:"version"`
	Vocabulary     map[string]int `json:"vocabulary"`
	IDF            []float64      `json:"idf"`
	Coef           []float64      `json:"coef"`
	Intercept      float64        `json:"intercept"`
	L2Normalize    bool           `json:"l2_normalize"`
	MinTokenLength int            `json:"min_token_length"`
}

// Model is an immutable linear classifier over TF-IDF features.
// All methods are safe for concurrent use.
type Model struct {
	vocabulary     map[string]int
	idf            []float64
	coef           []float64
	intercept      float64
	threshold      float64
	l2Normalize    bool
	minTokenLength int
}

// NewModel validates an artifact and builds a Model that decides with threshold.
func NewModel(a Artifact, threshold float64) (*Model, error) {
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("%w: threshold %v outside [0,1]", ErrInvalidModel, threshold)
	}
	if len(a.Vocabulary) == 0 {
		return nil, fmt.Errorf("%w: empty vocabulary", ErrInvalidModel)
	}
	if len(a.IDF) != len(a.Coef) {
		return nil, fmt.Errorf("%w: idf has %d weights, coef has %d", ErrInvalidModel, len(a.IDF), len(a.Coef))
	}
	for token, idx := range a.Vocabulary {
		if idx < 0 || idx >= len(a.Coef) {
			return nil, fmt.Errorf("%w: token %q maps to index %d outside [0,%d)", ErrInvalidModel, token, idx, len(a.Coef))
		}
	}
	for i := range a.Coef {
		if !finite(a.Coef[i]) || !finite(a.IDF[i]) {
			return nil, fmt.Errorf("%w: non-finite weight at index %d", ErrInvalidModel, i)
		}
	}
	if !finite(a.Intercept) {
		return nil, fmt.Errorf("%w: non-finite intercept", ErrInvalidModel)
	}
	if a.MinTokenLength < 0 {
		return nil, fmt.Errorf("%w: negative min_token_length", ErrInvalidModel)
	}

	minLen := a.MinTokenLength
	if minLen == 0 {
		minLen = 1
	}

	return &Model{
		vocabulary:     maps.Clone(a.Vocabulary),
		idf:            slices.Clone(a.IDF),
		coef:           slices.Clone(a.Coef),
		intercept:      a.Intercept,
		threshold:      threshold,
		l2Normalize:    a.L2Normalize,
		minTokenLength: minLen,
	}, nil
}

// ReadModel decodes an artifact from r and builds a Model.
func ReadModel(r io.Reader, threshold float64) (*Model, error) {
	var a Artifact
	dec := json.NewDecoder(r)
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrInvalidModel, err)
	}
	return NewModel(a, threshold)
}

// LoadModel reads the artifact at path and builds a Model.
func LoadModel(path string, threshold float64) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model %s: %w", path, err)
	}
	defer f.Close()

	m, err := ReadModel(f, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to load model %s: %w", path, err)
	}
	return m, nil
}

// Threshold returns the decision threshold.
func (m *Model) Threshold() float64 { return m.threshold }

// VocabularySize returns the number of known tokens.
func (m *Model) VocabularySize() int { return len(m.vocabulary) }

// Predict returns the probability in [0,1] that code is vulnerable.
// Tokens outside the vocabulary are ignored. The result depends only on code.
func (m *Model) Predict(code string) float64 {
	return sigmoid(m.Score(code))
}

// Score returns the raw linear decision value for code.
func (m *Model) Score(code string) float64 {
	counts := make(map[int]float64)
	for _, tok := range Tokenize(code, m.minTokenLength) {
		if idx, ok := m.vocabulary[tok]; ok {
			counts[idx]++
		}
	}

	// Summation follows feature index order so the result never depends on map iteration.
	indices := make([]int, 0, len(counts))
	for idx := range counts {
		indices = append(indices, idx)
	}
	slices.Sort(indices)

	weights := make([]float64, len(indices))
	var norm float64
	for i, idx := range indices {
		w := counts[idx] * m.idf[idx]
		weights[i] = w
		norm += w * w
	}

	scale := 1.0
	if m.l2Normalize && norm > 0 {
		scale = 1 / math.Sqrt(norm)
	}

	z := m.intercept
	for i, idx := range indices {
		z += m.coef[idx] * weights[i] * scale
	}
	return z
}

// Detected reports whether probability meets the decision threshold.
func (m *Model) Detected(probability float64) bool {
	return probability >= m.threshold
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
