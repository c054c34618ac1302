// Package bean provides the bean invocation engine behind bean:
// expressions.
//
// A bean is any value registered under a name; a reference of the form
// "name.method" invokes the named method by reflection when the
// expression is evaluated. A bare "name" reference invokes Evaluate.
//
// Example usage:
//
//	registry := bean.NewRegistry()
//	registry.Register("stamp", bean.Func(func(fc *filelang.Context) (string, error) {
//	    return fc.LastModified.UTC().Format(time.RFC3339), nil
//	}))
//
//	expr := registry.CompileBean("stamp")
//	value, err := expr.Eval(ctx, fc)
//
// Method parameters may be context.Context, *filelang.Context or both;
// results of (string), (string, error) or any single value are accepted.
package bean
