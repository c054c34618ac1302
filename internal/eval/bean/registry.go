package bean

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/openflowlabs/fileroute/internal/filelang"
)

// defaultMethod is invoked when a bean reference names no method.
const defaultMethod = "Evaluate"

// Registry holds named beans and resolves bean references of the form
// "name" or "name.method" to method invocations.
type Registry struct {
	beans map[string]any
	mu    sync.RWMutex
}

// NewRegistry creates an empty bean registry.
func NewRegistry() *Registry {
	return &Registry{
		beans: make(map[string]any),
	}
}

// Register adds a bean under the given name, replacing any previous
// registration.
func (r *Registry) Register(name string, bean any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beans[name] = bean
}

// CompileBean returns an expression invoking the referenced bean when
// evaluated. The reference is captured verbatim; resolution happens at
// evaluation time so beans may be registered after compilation.
func (r *Registry) CompileBean(ref string) filelang.Expression {
	return &expression{registry: r, ref: ref}
}

type expression struct {
	registry *Registry
	ref      string
}

func (x *expression) Eval(ctx context.Context, fc *filelang.Context) (string, error) {
	return x.registry.Invoke(ctx, x.ref, fc)
}

// Invoke calls the method named by ref on the registered bean and
// returns its result as a string. Supported method parameters are
// context.Context and *filelang.Context, in any order; the method may
// return (string), (string, error) or any single value, which is
// stringified.
func (r *Registry) Invoke(ctx context.Context, ref string, fc *filelang.Context) (string, error) {
	name, method, hasMethod := strings.Cut(ref, ".")
	if !hasMethod || method == "" {
		method = defaultMethod
	}

	r.mu.RLock()
	bean, ok := r.beans[name]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("bean %q is not registered", name)
	}

	fn := reflect.ValueOf(bean).MethodByName(exportedName(method))
	if !fn.IsValid() {
		return "", fmt.Errorf("bean %q has no method %q", name, method)
	}

	args, err := buildArgs(fn.Type(), ctx, fc)
	if err != nil {
		return "", fmt.Errorf("bean %q method %q: %w", name, method, err)
	}

	return stringify(fn.Call(args))
}

// buildArgs maps the method parameters onto the invocation inputs.
func buildArgs(fnType reflect.Type, ctx context.Context, fc *filelang.Context) ([]reflect.Value, error) {
	ctxType := reflect.TypeOf((*context.Context)(nil)).Elem()
	fcType := reflect.TypeOf((*filelang.Context)(nil))

	args := make([]reflect.Value, fnType.NumIn())
	for i := range args {
		switch in := fnType.In(i); {
		case in == fcType:
			args[i] = reflect.ValueOf(fc)
		case in == ctxType:
			args[i] = reflect.ValueOf(ctx)
		default:
			return nil, fmt.Errorf("unsupported parameter type %s", in)
		}
	}
	return args, nil
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// stringify converts the method results to (string, error).
func stringify(out []reflect.Value) (string, error) {
	switch len(out) {
	case 1:
		return fmt.Sprint(out[0].Interface()), nil
	case 2:
		if !out[1].Type().Implements(errorType) {
			return "", fmt.Errorf("second return value must be an error, got %s", out[1].Type())
		}
		if err, _ := out[1].Interface().(error); err != nil {
			return "", err
		}
		return fmt.Sprint(out[0].Interface()), nil
	default:
		return "", fmt.Errorf("method must return one or two values, got %d", len(out))
	}
}

// exportedName upper-cases the first rune so references may use the
// lower-case method spelling, e.g. bean:checksum.hex.
func exportedName(method string) string {
	runes := []rune(method)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// Func adapts a plain function to a bean with an Evaluate method, so it
// can be registered and referenced without a method name.
type Func func(fc *filelang.Context) (string, error)

// Evaluate invokes the adapted function.
func (f Func) Evaluate(fc *filelang.Context) (string, error) {
	return f(fc)
}
