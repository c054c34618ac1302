package bean_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openflowlabs/fileroute/internal/eval/bean"
	"github.com/openflowlabs/fileroute/internal/filelang"
)

var modTime = time.Date(2026, 8, 27, 14, 25, 1, 0, time.UTC)

// checksum is a test bean with a few method shapes.
type checksum struct{}

func (checksum) Evaluate(fc *filelang.Context) (string, error) {
	return "sum:" + fc.Name, nil
}

func (checksum) Upper(fc *filelang.Context) string {
	return strings.ToUpper(fc.Name)
}

func (checksum) Count(_ context.Context, fc *filelang.Context) int {
	return len(fc.Name)
}

func (checksum) Fail(*filelang.Context) (string, error) {
	return "", errors.New("boom")
}

func newContext() *filelang.Context {
	return filelang.NewContext("inbox/report.csv", modTime)
}

// TestInvoke verifies method resolution and result conversion.
func TestInvoke(t *testing.T) {
	registry := bean.NewRegistry()
	registry.Register("checksum", checksum{})

	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"default method", "checksum", "sum:report.csv"},
		{"explicit method", "checksum.evaluate", "sum:report.csv"},
		{"string result", "checksum.upper", "REPORT.CSV"},
		{"stringified result with context arg", "checksum.count", "10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := registry.Invoke(context.Background(), tt.ref, newContext())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestInvokeErrors verifies the failure modes.
func TestInvokeErrors(t *testing.T) {
	registry := bean.NewRegistry()
	registry.Register("checksum", checksum{})

	tests := []struct {
		name    string
		ref     string
		wantErr string
	}{
		{"unregistered bean", "nope", "not registered"},
		{"missing method", "checksum.nope", "has no method"},
		{"method error", "checksum.fail", "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := registry.Invoke(context.Background(), tt.ref, newContext())
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

// TestCompileBean verifies late binding: beans may be registered after
// the expression is compiled.
func TestCompileBean(t *testing.T) {
	registry := bean.NewRegistry()

	expr := registry.CompileBean("late")
	_, err := expr.Eval(context.Background(), newContext())
	assert.Error(t, err)

	registry.Register("late", bean.Func(func(fc *filelang.Context) (string, error) {
		return fc.Parent, nil
	}))

	got, err := expr.Eval(context.Background(), newContext())
	require.NoError(t, err)
	assert.Equal(t, "inbox", got)
}
