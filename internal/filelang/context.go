package filelang

import (
	"path/filepath"
	"strings"
	"time"
)

// Context carries the file metadata an Expression is evaluated against.
// All fields are set at construction; evaluation never touches the
// filesystem.
type Context struct {
	Name         string
	Path         string
	Parent       string
	Absolute     string
	Canonical    string
	LastModified time.Time
	Headers      map[string]any
}

// NewContext derives the file attributes from path. The canonical path
// resolves symlinks when possible and otherwise falls back to the
// absolute path.
func NewContext(path string, modTime time.Time) *Context {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		canonical = abs
	}

	return &Context{
		Name:         filepath.Base(path),
		Path:         path,
		Parent:       filepath.Dir(path),
		Absolute:     abs,
		Canonical:    canonical,
		LastModified: modTime,
		Headers:      make(map[string]any),
	}
}

// WithHeader sets a message header on the context and returns it for
// chaining.
func (fc *Context) WithHeader(name string, value any) *Context {
	fc.Headers[name] = value
	return fc
}

// Values returns the context as a map for template rendering and rule
// evaluation.
func (fc *Context) Values() map[string]any {
	return map[string]any{
		"file": map[string]any{
			"name":           fc.Name,
			"name.noext":     strings.TrimSuffix(fc.Name, filepath.Ext(fc.Name)),
			"path":           fc.Path,
			"parent":         fc.Parent,
			"absolute":       fc.Absolute,
			"canonical.path": fc.Canonical,
			"modified":       fc.LastModified,
		},
		"headers": fc.Headers,
	}
}
