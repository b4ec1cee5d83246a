package parser

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"resume-insight-go/internal/processor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const multiClassModel = `{
  "classes": ["Data Science", "DevOps", "Web Development"],
  "coef": [[1, 0], [0, 1], [-1, -1]],
  "intercept": [0, 0.5, 0]
}`

func TestLinearModel_DecisionFunction(t *testing.T) {
	m, err := LoadLinearModelFrom(strings.NewReader(multiClassModel))
	require.NoError(t, err)
	assert.Equal(t, []string{"Data Science", "DevOps", "Web Development"}, m.Classes())
	assert.Equal(t, 2, m.NumFeatures())

	margins, err := m.DecisionFunction([]float64{2, 1})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{2, 1.5, -3}, margins, 1e-9)

	_, err = m.DecisionFunction([]float64{1})
	assert.Error(t, err)
}

func TestLinearModel_BinaryAndScaler(t *testing.T) {
	m, err := LoadLinearModelFrom(strings.NewReader(`{
	  "classes": ["no", "yes"],
	  "coef": [[2, 0]],
	  "intercept": [1],
	  "scaler": {"mean": [1, 0], "scale": [2, 0]}
	}`))
	require.NoError(t, err)

	margins, err := m.DecisionFunction([]float64{3, 5})
	require.NoError(t, err)
	// (3-1)/2 = 1 -> 2*1 + 1 = 3
	assert.InDeltaSlice(t, []float64{-3, 3}, margins, 1e-9)
}

func TestLinearModel_SatisfiesRankingModel(t *testing.T) {
	var _ processor.RankingModel = (*LinearModel)(nil)
	var _ processor.FeatureCounter = (*LinearModel)(nil)
}

func TestLoadLinearModel_Errors(t *testing.T) {
	_, err := LoadLinearModel(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, processor.ErrModelNotFound)
	assert.True(t, processor.IsConfigurationError(err))

	_, err = LoadLinearModelFrom(strings.NewReader("{not json"))
	var syntaxErr *json.SyntaxError
	assert.ErrorAs(t, err, &syntaxErr)

	invalid := []string{
		`{"classes": ["only"], "coef": [[1]], "intercept": [0]}`,
		`{"classes": ["a", "b", "c"], "coef": [[1], [1]], "intercept": [0, 0]}`,
		`{"classes": ["a", "b"], "coef": [[1], [1]], "intercept": [0]}`,
		`{"classes": ["a", "b"], "coef": [[1, 2], [1]], "intercept": [0, 0]}`,
		`{"classes": ["a", "b"], "coef": [[1]], "intercept": [0], "scaler": {"mean": [0, 0], "scale": [1]}}`,
	}
	for _, body := range invalid {
		_, err := LoadLinearModelFrom(strings.NewReader(body))
		assert.ErrorIs(t, err, processor.ErrConfiguration, body)
	}
}

func TestLoadLinearModel_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte(multiClassModel), 0644))

	m, err := LoadLinearModel(path)
	require.NoError(t, err)
	assert.Len(t, m.Classes(), 3)
}
