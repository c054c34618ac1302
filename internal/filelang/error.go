package filelang

import "fmt"

// SyntaxError reports a malformed pattern. It carries the full offending
// pattern and the expected form.
type SyntaxError struct {
	Pattern  string
	Expected string
}

// Error returns a human-readable description of the syntax error.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("illegal syntax %q: %s is the correct syntax", e.Pattern, e.Expected)
}
