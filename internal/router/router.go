package router

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/openflowlabs/fileroute/internal/eval/cel"
	"github.com/openflowlabs/fileroute/internal/filelang"
)

// Rule pairs a CEL condition with a target route.
type Rule struct {
	Condition string `json:"condition" yaml:"condition"`
	Target    string `json:"target" yaml:"target"`
}

// RouteConfig configures routing for a stream of file events.
type RouteConfig struct {
	// Rules are evaluated in order; the first matching condition wins.
	Rules []Rule `json:"rules,omitempty" yaml:"rules,omitempty"`

	// Fallback is the target used when no rule matches.
	Fallback string `json:"fallback" yaml:"fallback"`

	// Expressions are file language patterns evaluated per event to
	// compute string values for the decision, e.g. a destination path
	// from "file:name.noext" or an archive stamp from
	// "date:file:yyyyMMdd".
	Expressions map[string]string `json:"expressions,omitempty" yaml:"expressions,omitempty"`
}

// Decision is the outcome of routing a single file event.
type Decision struct {
	Target    string            `json:"target"`
	Reasoning string            `json:"reasoning"`
	PathTaken string            `json:"path_taken"` // "rule" or "fallback"
	Values    map[string]string `json:"values,omitempty"`
}

// Router routes file events using CEL rules and computes the configured
// extraction expressions.
type Router struct {
	celEvaluator *cel.Evaluator
	lang         *filelang.Language
	logger       *zap.Logger

	compiled map[string]filelang.Expression
	mu       sync.RWMutex
}

// New creates a new router.
func New(lang *filelang.Language, logger *zap.Logger) *Router {
	return &Router{
		celEvaluator: cel.NewEvaluator(),
		lang:         lang,
		logger:       logger,
		compiled:     make(map[string]filelang.Expression),
	}
}

// Route picks a target for the event and evaluates the configured
// extraction expressions against it.
func (r *Router) Route(ctx context.Context, fc *filelang.Context, config *RouteConfig) (*Decision, error) {
	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	vars := fc.Values()

	decision := &Decision{
		Target:    config.Fallback,
		Reasoning: "no rules matched",
		PathTaken: "fallback",
	}

	for i, rule := range config.Rules {
		r.logger.Debug("evaluating rule",
			zap.Int("rule_index", i),
			zap.String("condition", rule.Condition),
		)

		result, err := r.celEvaluator.Evaluate(ctx, rule.Condition, vars)
		if err != nil {
			r.logger.Warn("rule evaluation error",
				zap.Int("rule_index", i),
				zap.String("condition", rule.Condition),
				zap.Error(err),
			)
			// Continue to next rule on error
			continue
		}

		matched, ok := result.(bool)
		if !ok {
			r.logger.Warn("rule condition did not return boolean",
				zap.Int("rule_index", i),
				zap.String("condition", rule.Condition),
				zap.Any("result", result),
			)
			continue
		}

		if matched {
			r.logger.Info("rule matched",
				zap.Int("rule_index", i),
				zap.String("condition", rule.Condition),
				zap.String("target", rule.Target),
			)

			decision.Target = rule.Target
			decision.Reasoning = fmt.Sprintf("matched rule %d: %s", i, rule.Condition)
			decision.PathTaken = "rule"
			break
		}
	}

	values, err := r.evaluateExpressions(ctx, fc, config.Expressions)
	if err != nil {
		return nil, err
	}
	decision.Values = values

	return decision, nil
}

// evaluateExpressions compiles and evaluates the configured file
// language patterns against the event context.
func (r *Router) evaluateExpressions(ctx context.Context, fc *filelang.Context, patterns map[string]string) (map[string]string, error) {
	if len(patterns) == 0 {
		return nil, nil
	}

	values := make(map[string]string, len(patterns))
	for name, pattern := range patterns {
		expr, err := r.expression(pattern)
		if err != nil {
			return nil, fmt.Errorf("expression %q: %w", name, err)
		}

		value, err := expr.Eval(ctx, fc)
		if err != nil {
			return nil, fmt.Errorf("expression %q: %w", name, err)
		}
		values[name] = value
	}
	return values, nil
}

// expression gets a compiled expression from cache or compiles it.
// Compiled expressions are immutable, so reuse across events is safe.
func (r *Router) expression(pattern string) (filelang.Expression, error) {
	// Check cache first (read lock)
	r.mu.RLock()
	if expr, ok := r.compiled[pattern]; ok {
		r.mu.RUnlock()
		return expr, nil
	}
	r.mu.RUnlock()

	// Compile the pattern (write lock)
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check again in case another goroutine compiled it
	if expr, ok := r.compiled[pattern]; ok {
		return expr, nil
	}

	expr, err := r.lang.Compile(pattern)
	if err != nil {
		return nil, err
	}

	r.compiled[pattern] = expr

	return expr, nil
}

// ValidateConfig validates a routing configuration.
func ValidateConfig(config *RouteConfig) error {
	if config == nil {
		return fmt.Errorf("config is nil")
	}

	if config.Fallback == "" {
		return fmt.Errorf("fallback route is required")
	}

	for i, rule := range config.Rules {
		if rule.Condition == "" {
			return fmt.Errorf("rule %d: condition is required", i)
		}
		if rule.Target == "" {
			return fmt.Errorf("rule %d: target is required", i)
		}
	}

	for name, pattern := range config.Expressions {
		if pattern == "" {
			return fmt.Errorf("expression %q: pattern is required", name)
		}
	}

	return nil
}
