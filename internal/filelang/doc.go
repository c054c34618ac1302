// Package filelang compiles file expression patterns into reusable expressions.
//
// The file language extends the generic template language with file specific
// expressions, dispatched on a literal prefix:
//
//   - file:name            the file name
//   - file:name.noext      the file name with no extension
//   - file:parent          the parent directory
//   - file:path            the file path
//   - file:absolute        the absolute file path
//   - file:canonical.path  the canonical file path
//   - date:command:pattern a formatted timestamp, e.g. date:file:yyyyMMdd
//   - bean:ref             invoke a registered bean, e.g. bean:checksum.hex
//   - simple:text          an explicit template expression
//
// Anything else is handed to the template engine unchanged, so plain
// template text such as ${in.header.foo} works without a prefix.
//
// Example usage:
//
//	lang := filelang.New(templates, beans, dates)
//
//	expr, err := lang.Compile("file:name.noext")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fc := filelang.NewContext("/orders/inbox/report.csv", modTime)
//	value, err := expr.Eval(ctx, fc) // "report"
//
// Compiled expressions are immutable and safe to evaluate concurrently.
package filelang
