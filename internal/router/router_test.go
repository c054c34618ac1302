package router_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openflowlabs/fileroute/internal/eval/bean"
	"github.com/openflowlabs/fileroute/internal/eval/datefmt"
	"github.com/openflowlabs/fileroute/internal/eval/template"
	"github.com/openflowlabs/fileroute/internal/filelang"
	"github.com/openflowlabs/fileroute/internal/router"
)

var modTime = time.Date(2026, 8, 27, 14, 25, 1, 0, time.UTC)

func newRouter(t *testing.T) *router.Router {
	t.Helper()
	lang := filelang.New(template.NewEngine(), bean.NewRegistry(), datefmt.NewEngine())
	return router.New(lang, zap.NewNop())
}

func newContext() *filelang.Context {
	fc := filelang.NewContext("inbox/report.csv", modTime)
	fc.WithHeader("region", "emea")
	return fc
}

// TestRoute verifies rule ordering and fallback selection.
func TestRoute(t *testing.T) {
	r := newRouter(t)

	tests := []struct {
		name          string
		config        *router.RouteConfig
		wantTarget    string
		wantPathTaken string
	}{
		{
			"first matching rule wins",
			&router.RouteConfig{
				Rules: []router.Rule{
					{Condition: "file.name.endsWith('.csv')", Target: "csv-ingest"},
					{Condition: "true", Target: "catch-all"},
				},
				Fallback: "dead-letter",
			},
			"csv-ingest",
			"rule",
		},
		{
			"no match falls back",
			&router.RouteConfig{
				Rules: []router.Rule{
					{Condition: "file.name.endsWith('.xml')", Target: "xml-ingest"},
				},
				Fallback: "dead-letter",
			},
			"dead-letter",
			"fallback",
		},
		{
			"broken condition is skipped",
			&router.RouteConfig{
				Rules: []router.Rule{
					{Condition: "file.name ==", Target: "never"},
					{Condition: "headers.region == 'emea'", Target: "emea-ingest"},
				},
				Fallback: "dead-letter",
			},
			"emea-ingest",
			"rule",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, err := r.Route(context.Background(), newContext(), tt.config)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTarget, decision.Target)
			assert.Equal(t, tt.wantPathTaken, decision.PathTaken)
		})
	}
}

// TestRouteExpressions verifies extraction expressions travel with the
// decision.
func TestRouteExpressions(t *testing.T) {
	r := newRouter(t)

	config := &router.RouteConfig{
		Fallback: "archive",
		Expressions: map[string]string{
			"name":    "file:name.noext",
			"stamp":   "date:file:yyyyMMdd",
			"archive": "archive/${region}/${file.name}",
		},
	}

	decision, err := r.Route(context.Background(), newContext(), config)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"name":    "report",
		"stamp":   "20260827",
		"archive": "archive/emea/report.csv",
	}, decision.Values)
}

// TestRouteExpressionSyntaxError verifies a malformed pattern aborts the
// decision with the syntax error attached.
func TestRouteExpressionSyntaxError(t *testing.T) {
	r := newRouter(t)

	config := &router.RouteConfig{
		Fallback: "archive",
		Expressions: map[string]string{
			"stamp": "date:now",
		},
	}

	_, err := r.Route(context.Background(), newContext(), config)

	var syntaxErr *filelang.SyntaxError
	assert.ErrorAs(t, err, &syntaxErr)
}

// TestValidateConfig verifies configuration validation.
func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  *router.RouteConfig
		wantErr string
	}{
		{"nil config", nil, "config is nil"},
		{"missing fallback", &router.RouteConfig{}, "fallback route is required"},
		{
			"rule without condition",
			&router.RouteConfig{Fallback: "x", Rules: []router.Rule{{Target: "y"}}},
			"condition is required",
		},
		{
			"rule without target",
			&router.RouteConfig{Fallback: "x", Rules: []router.Rule{{Condition: "true"}}},
			"target is required",
		},
		{
			"empty expression",
			&router.RouteConfig{Fallback: "x", Expressions: map[string]string{"a": ""}},
			"pattern is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := router.ValidateConfig(tt.config)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}

	assert.NoError(t, router.ValidateConfig(&router.RouteConfig{Fallback: "x"}))
}

// TestLoadRules verifies rule files round-trip through YAML.
func TestLoadRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")

	content := `rules:
  - condition: file.name.endsWith('.csv')
    target: csv-ingest
fallback: dead-letter
expressions:
  stamp: date:file:yyyyMMdd
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	config, err := router.LoadRules(path)
	require.NoError(t, err)

	assert.Len(t, config.Rules, 1)
	assert.Equal(t, "csv-ingest", config.Rules[0].Target)
	assert.Equal(t, "dead-letter", config.Fallback)
	assert.Equal(t, "date:file:yyyyMMdd", config.Expressions["stamp"])
}

// TestLoadRulesErrors verifies missing and invalid files are reported.
func TestLoadRulesErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := router.LoadRules(filepath.Join(dir, "nope.yaml"))
		assert.ErrorContains(t, err, "failed to read rules file")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(dir, "broken.yaml")
		require.NoError(t, os.WriteFile(path, []byte("rules: ["), 0o600))
		_, err := router.LoadRules(path)
		assert.ErrorContains(t, err, "failed to parse rules file")
	})

	t.Run("missing fallback", func(t *testing.T) {
		path := filepath.Join(dir, "nofallback.yaml")
		require.NoError(t, os.WriteFile(path, []byte("rules: []"), 0o600))
		_, err := router.LoadRules(path)
		assert.ErrorContains(t, err, "invalid rules file")
	})

	t.Run("broken condition", func(t *testing.T) {
		path := filepath.Join(dir, "badcel.yaml")
		content := `rules:
  - condition: "file.name =="
    target: csv-ingest
fallback: dead-letter
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		_, err := router.LoadRules(path)
		assert.ErrorContains(t, err, "rule 0")
	})

	t.Run("non-boolean condition", func(t *testing.T) {
		path := filepath.Join(dir, "stringcel.yaml")
		content := `rules:
  - condition: "'just a string'"
    target: csv-ingest
fallback: dead-letter
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		_, err := router.LoadRules(path)
		assert.ErrorContains(t, err, "must yield a boolean")
	})
}
