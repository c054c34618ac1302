package template

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/aymerick/raymond"

	"github.com/openflowlabs/fileroute/internal/filelang"
)

// Engine renders template text against a file context. It understands
// Handlebars blocks and the ${key} placeholder form used throughout
// routing patterns.
type Engine struct {
	cache map[string]*raymond.Template
	mu    sync.RWMutex
}

// NewEngine creates a new template engine with the builtin helpers
// registered.
func NewEngine() *Engine {
	engine := &Engine{
		cache: make(map[string]*raymond.Template),
	}

	// Helpers are global in raymond, register them once per process
	helpersOnce.Do(registerHelpers)

	return engine
}

// CompileTemplate returns an expression that renders text against the
// evaluation context. The text is captured verbatim; parse errors
// surface when the expression is evaluated.
func (e *Engine) CompileTemplate(text string) filelang.Expression {
	return &expression{engine: e, text: text}
}

type expression struct {
	engine *Engine
	text   string
}

func (x *expression) Eval(_ context.Context, fc *filelang.Context) (string, error) {
	return x.engine.Render(x.text, fc)
}

// Render renders template text with values from the file context.
// Handlebars blocks are expanded first, then ${key} placeholders are
// substituted; unresolved placeholders are left in place.
func (e *Engine) Render(text string, fc *filelang.Context) (string, error) {
	rendered := text

	if strings.Contains(text, "{{") {
		tmpl, err := e.template(text)
		if err != nil {
			return "", fmt.Errorf("failed to compile template: %w", err)
		}

		rendered, err = tmpl.Exec(fc.Values())
		if err != nil {
			return "", fmt.Errorf("template execution failed: %w", err)
		}
	}

	return resolvePlaceholders(rendered, fc), nil
}

// template gets a compiled template from cache or compiles it.
func (e *Engine) template(text string) (*raymond.Template, error) {
	// Check cache first (read lock)
	e.mu.RLock()
	if tmpl, ok := e.cache[text]; ok {
		e.mu.RUnlock()
		return tmpl, nil
	}
	e.mu.RUnlock()

	// Compile the template (write lock)
	e.mu.Lock()
	defer e.mu.Unlock()

	// Check again in case another goroutine compiled it
	if tmpl, ok := e.cache[text]; ok {
		return tmpl, nil
	}

	tmpl, err := raymond.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	e.cache[text] = tmpl

	return tmpl, nil
}

// ValidateTemplate validates template text without rendering it.
func (e *Engine) ValidateTemplate(text string) error {
	_, err := raymond.Parse(text)
	return err
}

// ClearCache clears the compiled template cache.
func (e *Engine) ClearCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache = make(map[string]*raymond.Template)
}

var placeholderPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// resolvePlaceholders substitutes ${key} placeholders from the context.
// Keys resolve against headers first (with or without the in.header.
// prefix), then as dotted paths into the context values.
func resolvePlaceholders(text string, fc *filelang.Context) string {
	return placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		key := match[2 : len(match)-1]
		if value, ok := lookup(fc, key); ok {
			return fmt.Sprint(value)
		}
		return match
	})
}

// lookup resolves a placeholder key against the file context.
func lookup(fc *filelang.Context, key string) (any, bool) {
	if value, ok := fc.Headers[key]; ok {
		return value, true
	}
	if name, ok := strings.CutPrefix(key, "in.header."); ok {
		if value, ok := fc.Headers[name]; ok {
			return value, true
		}
	}

	// Dotted path into the context values, e.g. file.name
	var current any = fc.Values()
	for _, part := range strings.Split(key, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = m[part]; !ok {
			return nil, false
		}
	}
	return current, true
}

var helpersOnce sync.Once

// registerHelpers registers the builtin Handlebars helpers.
func registerHelpers() {
	// uppercase helper
	raymond.RegisterHelper("uppercase", func(str string) string {
		return strings.ToUpper(str)
	})

	// lowercase helper
	raymond.RegisterHelper("lowercase", func(str string) string {
		return strings.ToLower(str)
	})

	// trim helper
	raymond.RegisterHelper("trim", func(str string) string {
		return strings.TrimSpace(str)
	})

	// default helper - return fallback if first arg is empty
	raymond.RegisterHelper("default", func(value interface{}, fallback interface{}) interface{} {
		if value == nil || value == "" {
			return fallback
		}
		return value
	})

	// eq helper - equality comparison
	raymond.RegisterHelper("eq", func(a, b interface{}) bool {
		return a == b
	})

	// contains helper - check if string contains substring
	raymond.RegisterHelper("contains", func(str, substr string) bool {
		return strings.Contains(str, substr)
	})
}
