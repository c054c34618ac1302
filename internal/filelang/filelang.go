package filelang

import (
	"context"
	"strings"
)

// Expression is a compiled pattern. It is immutable once constructed and
// safe to evaluate concurrently against different contexts.
type Expression interface {
	Eval(ctx context.Context, fc *Context) (string, error)
}

// TemplateCompiler builds expressions for the generic template language.
// It backs both the simple: prefix and the no-prefix fallback.
type TemplateCompiler interface {
	CompileTemplate(text string) Expression
}

// BeanCompiler builds expressions that invoke a registered bean reference.
type BeanCompiler interface {
	CompileBean(ref string) Expression
}

// DateCompiler builds expressions that format a timestamp selected by
// command using a date pattern. The command is not validated here;
// unknown commands fail when the expression is evaluated.
type DateCompiler interface {
	CompileDate(command, pattern string) Expression
}

// Language compiles file expression patterns. It holds handles to the
// collaborating engines rather than owning any grammar of its own beyond
// the prefix dispatch.
type Language struct {
	templates TemplateCompiler
	beans     BeanCompiler
	dates     DateCompiler
}

// New creates a file expression language backed by the given engines.
func New(templates TemplateCompiler, beans BeanCompiler, dates DateCompiler) *Language {
	return &Language{
		templates: templates,
		beans:     beans,
		dates:     dates,
	}
}

// Compile turns a pattern into an Expression. The prefixes are tried in a
// fixed order: file:, date:, bean:, simple:. A pattern matching none of
// them is compiled as template text. The only error produced here is a
// *SyntaxError for a malformed date: pattern.
func (l *Language) Compile(pattern string) (Expression, error) {
	// file: prefix
	if remainder, ok := matchPrefix(pattern, "file:"); ok {
		if expr, ok := resolveFileAttribute(remainder); ok {
			return expr, nil
		}
		// An unrecognized attribute falls through to the remaining
		// checks against the original pattern, which still carries
		// the file: prefix, so it ends up as template text below.
	}

	// date: prefix
	if remainder, ok := matchPrefix(pattern, "date:"); ok {
		return l.parseDate(pattern, remainder)
	}

	// bean: prefix
	if remainder, ok := matchPrefix(pattern, "bean:"); ok {
		return l.beans.CompileBean(remainder), nil
	}

	// simple: prefix
	if remainder, ok := matchPrefix(pattern, "simple:"); ok {
		return l.templates.CompileTemplate(remainder), nil
	}

	// fallback to the template language if not file specific
	return l.templates.CompileTemplate(pattern), nil
}

// matchPrefix returns the remainder after prefix when pattern starts with
// prefix verbatim. The comparison is case sensitive and byte exact.
func matchPrefix(pattern, prefix string) (string, bool) {
	if strings.HasPrefix(pattern, prefix) {
		return pattern[len(prefix):], true
	}
	return "", false
}

// resolveFileAttribute maps the remainder of a file: pattern to one of the
// builtin file attribute expressions. Matching is exact; anything else
// reports no match without error.
func resolveFileAttribute(remainder string) (Expression, bool) {
	switch remainder {
	case "name":
		return fileNameExpression{}, true
	case "name.noext":
		return fileNameNoExtExpression{}, true
	case "parent":
		return fileParentExpression{}, true
	case "path":
		return filePathExpression{}, true
	case "absolute":
		return fileAbsoluteExpression{}, true
	case "canonical.path":
		return fileCanonicalPathExpression{}, true
	}
	return nil, false
}

// parseDate splits the remainder of a date: pattern into command and
// pattern parts. Trailing empty fields do not count as parts, so
// "date:now:" is malformed rather than an empty format.
func (l *Language) parseDate(pattern, remainder string) (Expression, error) {
	parts := strings.Split(remainder, ":")
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	if len(parts) != 2 {
		return nil, &SyntaxError{Pattern: pattern, Expected: "date:command:pattern"}
	}
	return l.dates.CompileDate(parts[0], parts[1]), nil
}

// compile-time interface checks for the builtin expressions
var (
	_ Expression = fileNameExpression{}
	_ Expression = fileNameNoExtExpression{}
	_ Expression = fileParentExpression{}
	_ Expression = filePathExpression{}
	_ Expression = fileAbsoluteExpression{}
	_ Expression = fileCanonicalPathExpression{}
)
