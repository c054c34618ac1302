package cel_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openflowlabs/fileroute/internal/eval/cel"
)

func vars() map[string]interface{} {
	return map[string]interface{}{
		"file": map[string]interface{}{
			"name": "report.csv",
			"path": "inbox/report.csv",
		},
		"headers": map[string]interface{}{
			"region":   "emea",
			"priority": 2,
		},
	}
}

// TestEvaluate verifies condition evaluation over file events.
func TestEvaluate(t *testing.T) {
	evaluator := cel.NewEvaluator()

	tests := []struct {
		name      string
		condition string
		want      bool
	}{
		{"file name match", "file.name.endsWith('.csv')", true},
		{"file name mismatch", "file.name.startsWith('invoice')", false},
		{"header equality", "headers.region == 'emea'", true},
		{"numeric header", "headers.priority >= 2", true},
		{"combined", "file.name.endsWith('.csv') && headers.region == 'emea'", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := evaluator.Evaluate(context.Background(), tt.condition, vars())
			require.NoError(t, err)
			assert.Equal(t, tt.want, result)
		})
	}
}

// TestEvaluateParseError verifies malformed conditions are reported.
func TestEvaluateParseError(t *testing.T) {
	evaluator := cel.NewEvaluator()

	_, err := evaluator.Evaluate(context.Background(), "file.name ==", vars())
	assert.ErrorContains(t, err, "failed to compile condition")
}

// TestValidateCondition verifies validation without evaluation.
func TestValidateCondition(t *testing.T) {
	evaluator := cel.NewEvaluator()

	assert.NoError(t, evaluator.ValidateCondition("file.name.endsWith('.csv')"))
	assert.Error(t, evaluator.ValidateCondition("file.name =="))
	assert.Error(t, evaluator.ValidateCondition("'just a string'"))
}
