// Package template provides the generic template engine behind the
// simple expression language.
//
// Two forms are supported and may be mixed in one template:
//
//   - ${key} placeholders, resolved against message headers and the
//     file attributes, e.g. ${in.header.foo} or ${file.name}
//   - Handlebars blocks with helpers, e.g. {{uppercase file.name}}
//
// Example usage:
//
//	engine := template.NewEngine()
//
//	fc := filelang.NewContext("/inbox/report.csv", modTime)
//	fc.WithHeader("region", "emea")
//
//	out, err := engine.Render("${region}/{{lowercase file.name}}", fc)
//	// "emea/report.csv"
//
// Built-in helpers:
//   - uppercase - convert string to uppercase
//   - lowercase - convert string to lowercase
//   - trim - trim whitespace from string
//   - default - return fallback value if first arg is empty
//   - eq - equality comparison
//   - contains - check if string contains substring
//
// Unresolved ${key} placeholders are left in the output untouched, so
// literal text that merely looks like a placeholder passes through.
package template
