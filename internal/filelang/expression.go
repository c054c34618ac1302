package filelang

import (
	"context"
	"path/filepath"
	"strings"
)

// The builtin file attribute expressions. Each attribute keyword maps to
// its own type so compiled expressions stay distinguishable.

type fileNameExpression struct{}

func (fileNameExpression) Eval(_ context.Context, fc *Context) (string, error) {
	return fc.Name, nil
}

type fileNameNoExtExpression struct{}

func (fileNameNoExtExpression) Eval(_ context.Context, fc *Context) (string, error) {
	return strings.TrimSuffix(fc.Name, filepath.Ext(fc.Name)), nil
}

type fileParentExpression struct{}

func (fileParentExpression) Eval(_ context.Context, fc *Context) (string, error) {
	return fc.Parent, nil
}

type filePathExpression struct{}

func (filePathExpression) Eval(_ context.Context, fc *Context) (string, error) {
	return fc.Path, nil
}

type fileAbsoluteExpression struct{}

func (fileAbsoluteExpression) Eval(_ context.Context, fc *Context) (string, error) {
	return fc.Absolute, nil
}

type fileCanonicalPathExpression struct{}

func (fileCanonicalPathExpression) Eval(_ context.Context, fc *Context) (string, error) {
	return fc.Canonical, nil
}
