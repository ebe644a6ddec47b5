package classifier

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testArtifact() Artifact {
	return Artifact{
		Version:    1,
		Vocabulary: map[string]int{"eval": 0, "user_input": 1, "print": 2},
		IDF:        []float64{1, 1, 1},
		Coef:       []float64{2, 1, -1},
		Intercept:  -1,
	}
}

func newTestModel(t *testing.T) *Model {
	t.Helper()
	m, err := NewModel(testArtifact(), DefaultThreshold)
	require.NoError(t, err)
	return m
}

func TestPredict(t *testing.T) {
	m := newTestModel(t)

	tests := []struct {
		name string
		code string
		want float64
	}{
		{name: "eval of user input", code: "result = eval(user_input)", want: 1 / (1 + math.Exp(-2))},
		{name: "print only", code: "print(x)", want: 1 / (1 + math.Exp(2))},
		{name: "empty file is intercept only", code: "", want: 1 / (1 + math.Exp(1))},
		{name: "tokens are lowercased", code: "EVAL(USER_INPUT)", want: 1 / (1 + math.Exp(-2))},
		{name: "repeated tokens count", code: "eval eval", want: 1 / (1 + math.Exp(-3))},
		{name: "unknown tokens ignored", code: "import os; os.getcwd()", want: 1 / (1 + math.Exp(1))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Predict(tt.code)
			assert.InDelta(t, tt.want, got, 1e-12)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		})
	}
}

func TestPredictIsDeterministic(t *testing.T) {
	a := Artifact{Vocabulary: map[string]int{}, IDF: make([]float64, 50), Coef: make([]float64, 50)}
	var words []string
	for i := range 50 {
		w := "tok" + strings.Repeat("x", i)
		a.Vocabulary[w] = i
		a.IDF[i] = 1 + float64(i)/7
		a.Coef[i] = math.Sin(float64(i)) / 3
		words = append(words, w)
	}
	a.L2Normalize = true
	m, err := NewModel(a, DefaultThreshold)
	require.NoError(t, err)

	code := strings.Join(words, " ")
	first := m.Predict(code)
	for range 50 {
		assert.Equal(t, first, m.Predict(code))
	}
}

func TestPredictL2Normalize(t *testing.T) {
	m, err := NewModel(Artifact{
		Vocabulary:  map[string]int{"a": 0, "b": 1},
		IDF:         []float64{1, 1},
		Coef:        []float64{1, 1},
		L2Normalize: true,
	}, DefaultThreshold)
	require.NoError(t, err)

	assert.InDelta(t, math.Sqrt2, m.Score("a b"), 1e-12)
	assert.InDelta(t, 1.0, m.Score("a a a"), 1e-12)
}

func TestPredictExtremeScoresStayFinite(t *testing.T) {
	a := testArtifact()
	a.Intercept = 1000
	high, err := NewModel(a, DefaultThreshold)
	require.NoError(t, err)
	assert.Equal(t, 1.0, high.Predict(""))

	a.Intercept = -1000
	low, err := NewModel(a, DefaultThreshold)
	require.NoError(t, err)
	p := low.Predict("")
	assert.False(t, math.IsNaN(p))
	assert.InDelta(t, 0.0, p, 1e-300)
}

func TestDetectedThresholdIsInclusive(t *testing.T) {
	m := newTestModel(t)
	assert.True(t, m.Detected(0.5))
	assert.True(t, m.Detected(0.9))
	assert.False(t, m.Detected(0.4999))

	strict, err := NewModel(testArtifact(), 0.8)
	require.NoError(t, err)
	assert.Equal(t, 0.8, strict.Threshold())
	assert.False(t, strict.Detected(0.79))
	assert.True(t, strict.Detected(0.8))
}

func TestNewModelValidation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(a *Artifact)
		threshold float64
	}{
		{name: "empty vocabulary", mutate: func(a *Artifact) { a.Vocabulary = nil }, threshold: 0.5},
		{name: "dimension mismatch", mutate: func(a *Artifact) { a.IDF = a.IDF[:2] }, threshold: 0.5},
		{name: "index out of range", mutate: func(a *Artifact) { a.Vocabulary["os"] = 3 }, threshold: 0.5},
		{name: "negative index", mutate: func(a *Artifact) { a.Vocabulary["os"] = -1 }, threshold: 0.5},
		{name: "nan coefficient", mutate: func(a *Artifact) { a.Coef[1] = math.NaN() }, threshold: 0.5},
		{name: "infinite idf", mutate: func(a *Artifact) { a.IDF[0] = math.Inf(1) }, threshold: 0.5},
		{name: "infinite intercept", mutate: func(a *Artifact) { a.Intercept = math.Inf(-1) }, threshold: 0.5},
		{name: "negative min token length", mutate: func(a *Artifact) { a.MinTokenLength = -2 }, threshold: 0.5},
		{name: "threshold above one", mutate: func(*Artifact) {}, threshold: 1.5},
		{name: "negative threshold", mutate: func(*Artifact) {}, threshold: -0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := testArtifact()
			tt.mutate(&a)
			_, err := NewModel(a, tt.threshold)
			assert.ErrorIs(t, err, ErrInvalidModel)
		})
	}
}

func TestNewModelCopiesArtifact(t *testing.T) {
	a := testArtifact()
	m, err := NewModel(a, DefaultThreshold)
	require.NoError(t, err)

	before := m.Predict("eval(user_input)")
	a.Coef[0] = 100
	a.Vocabulary["print"] = 0
	assert.Equal(t, before, m.Predict("eval(user_input)"))
}

func TestLoadModel(t *testing.T) {
	m, err := LoadModel("testdata/model.json", 0.6)
	require.NoError(t, err)
	assert.Equal(t, 3, m.VocabularySize())
	assert.Equal(t, 0.6, m.Threshold())
	assert.InDelta(t, 1/(1+math.Exp(-2)), m.Predict("eval(user_input)"), 1e-12)

	_, err = LoadModel("testdata/missing.json", 0.5)
	assert.Error(t, err)
}

func TestReadModelRejectsBadJSON(t *testing.T) {
	_, err := ReadModel(strings.NewReader(`{"vocabulary": [1, 2]}`), 0.5)
	assert.ErrorIs(t, err, ErrInvalidModel)
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		code   string
		minLen int
		want   []string
	}{
		{code: "result = eval(user_input)", minLen: 1, want: []string{"result", "eval", "user_input"}},
		{code: "os.system('ls -la')", minLen: 1, want: []string{"os", "system", "ls", "la"}},
		{code: "os.system('ls -la')", minLen: 3, want: []string{"system"}},
		{code: "Hash256 = md5(x)", minLen: 0, want: []string{"hash256", "md5", "x"}},
		{code: "", minLen: 1, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got := Tokenize(tt.code, tt.minLen)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
