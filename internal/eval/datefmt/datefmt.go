package datefmt

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/openflowlabs/fileroute/internal/filelang"
)

// Engine formats timestamps using SimpleDateFormat-style patterns such
// as yyyyMMdd or yyyy-MM-dd'T'HH:mm:ss.
type Engine struct {
	cache map[string]string
	mu    sync.RWMutex
}

// NewEngine creates a new date format engine.
func NewEngine() *Engine {
	return &Engine{
		cache: make(map[string]string),
	}
}

// CompileDate returns an expression formatting the timestamp selected by
// command with the given pattern. The command is resolved when the
// expression is evaluated: "now" formats the current time, "file" the
// last modified timestamp of the file context.
func (e *Engine) CompileDate(command, pattern string) filelang.Expression {
	return &expression{engine: e, command: command, pattern: pattern}
}

type expression struct {
	engine  *Engine
	command string
	pattern string
}

func (x *expression) Eval(_ context.Context, fc *filelang.Context) (string, error) {
	var t time.Time
	switch x.command {
	case "now":
		t = time.Now()
	case "file":
		t = fc.LastModified
	default:
		return "", fmt.Errorf("unsupported date command %q", x.command)
	}
	return x.engine.Format(t, x.pattern)
}

// Format formats t using a SimpleDateFormat-style pattern.
func (e *Engine) Format(t time.Time, pattern string) (string, error) {
	layout, err := e.layout(pattern)
	if err != nil {
		return "", err
	}
	return t.Format(layout), nil
}

// layout gets a converted layout from cache or converts it.
func (e *Engine) layout(pattern string) (string, error) {
	// Check cache first (read lock)
	e.mu.RLock()
	if layout, ok := e.cache[pattern]; ok {
		e.mu.RUnlock()
		return layout, nil
	}
	e.mu.RUnlock()

	// Convert the pattern (write lock)
	e.mu.Lock()
	defer e.mu.Unlock()

	// Check again in case another goroutine converted it
	if layout, ok := e.cache[pattern]; ok {
		return layout, nil
	}

	layout, err := convertLayout(pattern)
	if err != nil {
		return "", err
	}

	e.cache[pattern] = layout

	return layout, nil
}

// convertLayout translates a SimpleDateFormat pattern into a Go time
// layout. Runs of the same pattern letter form one field; text between
// single quotes is taken literally; other characters pass through.
func convertLayout(pattern string) (string, error) {
	var out strings.Builder
	runes := []rune(pattern)

	for i := 0; i < len(runes); {
		c := runes[i]

		// Quoted literal, '' inside quotes is a single quote
		if c == '\'' {
			i++
			for i < len(runes) {
				if runes[i] == '\'' {
					if i+1 < len(runes) && runes[i+1] == '\'' {
						out.WriteRune('\'')
						i += 2
						continue
					}
					break
				}
				out.WriteRune(runes[i])
				i++
			}
			if i >= len(runes) {
				return "", fmt.Errorf("unterminated quote in date pattern %q", pattern)
			}
			i++
			continue
		}

		if !isPatternLetter(c) {
			out.WriteRune(c)
			i++
			continue
		}

		n := 1
		for i+n < len(runes) && runes[i+n] == c {
			n++
		}

		field, err := convertField(c, n)
		if err != nil {
			return "", fmt.Errorf("date pattern %q: %w", pattern, err)
		}
		out.WriteString(field)
		i += n
	}

	return out.String(), nil
}

func isPatternLetter(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// convertField maps one run of a pattern letter to its Go layout field.
func convertField(c rune, n int) (string, error) {
	switch c {
	case 'y':
		if n <= 2 {
			return "06", nil
		}
		return "2006", nil
	case 'M':
		switch {
		case n == 1:
			return "1", nil
		case n == 2:
			return "01", nil
		case n == 3:
			return "Jan", nil
		default:
			return "January", nil
		}
	case 'd':
		if n == 1 {
			return "2", nil
		}
		return "02", nil
	case 'H':
		return "15", nil
	case 'h':
		if n == 1 {
			return "3", nil
		}
		return "03", nil
	case 'm':
		if n == 1 {
			return "4", nil
		}
		return "04", nil
	case 's':
		if n == 1 {
			return "5", nil
		}
		return "05", nil
	case 'a':
		return "PM", nil
	case 'E':
		if n >= 4 {
			return "Monday", nil
		}
		return "Mon", nil
	case 'z':
		return "MST", nil
	case 'Z':
		return "-0700", nil
	case 'X':
		return "Z07:00", nil
	default:
		return "", fmt.Errorf("unsupported pattern letter %q", c)
	}
}
