package filelang_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openflowlabs/fileroute/internal/filelang"
)

// TestNewContext verifies attribute derivation from the event path.
func TestNewContext(t *testing.T) {
	fc := filelang.NewContext(filepath.Join("orders", "inbox", "report.csv"), modTime)

	assert.Equal(t, "report.csv", fc.Name)
	assert.Equal(t, filepath.Join("orders", "inbox", "report.csv"), fc.Path)
	assert.Equal(t, filepath.Join("orders", "inbox"), fc.Parent)
	assert.True(t, filepath.IsAbs(fc.Absolute))
	assert.True(t, filepath.IsAbs(fc.Canonical))
	assert.Equal(t, modTime, fc.LastModified)
	assert.NotNil(t, fc.Headers)
}

// TestContextValues verifies the map view used by templates and rules.
func TestContextValues(t *testing.T) {
	fc := filelang.NewContext("report.csv", modTime).WithHeader("region", "emea")

	values := fc.Values()

	file, ok := values["file"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "report.csv", file["name"])
	assert.Equal(t, "report", file["name.noext"])
	assert.Equal(t, modTime, file["modified"])

	headers, ok := values["headers"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "emea", headers["region"])
}
