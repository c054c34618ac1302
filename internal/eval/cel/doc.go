// Package cel provides a CEL (Common Expression Language) evaluator for
// routing rule conditions.
//
// Conditions see two variables: file, a map of the file attributes, and
// headers, the message headers of the event.
//
// Example usage:
//
//	evaluator := cel.NewEvaluator()
//
//	vars := map[string]interface{}{
//	    "file":    map[string]interface{}{"name": "report.csv"},
//	    "headers": map[string]interface{}{"region": "emea"},
//	}
//
//	result, err := evaluator.Evaluate(ctx, "file.name.endsWith('.csv')", vars)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	matched := result.(bool) // true
//
// Compiled programs are cached per condition, so rule sets evaluate at
// map-lookup cost after the first event.
package cel
