// Package router implements routing decisions for file events.
//
// A routing configuration pairs ordered CEL rules with a fallback target
// and a set of named extraction expressions written in the file
// language. The first rule whose condition matches picks the target;
// the expressions compute string values (destination paths, archive
// names, timestamps) that travel with the decision.
//
// Example configuration:
//
//	config := &RouteConfig{
//	    Rules: []Rule{
//	        {Condition: "file.name.endsWith('.csv')", Target: "csv-ingest"},
//	        {Condition: "headers.priority == 'high'", Target: "express"},
//	    },
//	    Fallback: "dead-letter",
//	    Expressions: map[string]string{
//	        "name":    "file:name.noext",
//	        "archive": "archive/${file.name}",
//	        "stamp":   "date:file:yyyyMMdd",
//	    },
//	}
//	decision, err := router.Route(ctx, fc, config)
//
// Rule evaluation errors are logged and skipped so a single bad
// condition cannot stall the stream; expression failures abort the
// decision because downstream consumers rely on the computed values.
package router
