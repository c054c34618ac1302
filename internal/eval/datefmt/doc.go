// Package datefmt provides the date formatting engine behind date:
// expressions.
//
// Patterns use the SimpleDateFormat letters (yyyy, MM, dd, HH, mm, ss,
// a, EEE, z, Z, X); text between single quotes is taken literally.
// Converted layouts are cached, so repeated formatting with the same
// pattern is cheap.
//
// Example usage:
//
//	engine := datefmt.NewEngine()
//
//	expr := engine.CompileDate("file", "yyyyMMdd-HHmmss")
//	value, err := expr.Eval(ctx, fc) // "20260827-142501"
//
// Supported commands are "now" for the current time and "file" for the
// last modified timestamp of the file context. Unknown commands and
// unsupported pattern letters are reported when the expression is
// evaluated, not when it is compiled.
package datefmt
