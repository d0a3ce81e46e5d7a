package rules

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// Function is a helper that insight conditions can call by name, for
// example band(economy.marginPercent).
type Function func(args ...any) (any, error)

// FunctionRegistry holds the helpers exposed to every engine. Lookups
// ignore case, so band and Band name the same helper.
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{functions: map[string]Function{}}
}

// Register adds fn under name. A second helper with the same name is
// rejected.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	switch {
	case name == "":
		return fmt.Errorf("rules: function name must not be empty")
	case fn == nil:
		return fmt.Errorf("rules: function %q is nil", name)
	}
	key := strings.ToLower(name)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = map[string]Function{}
	}
	if _, taken := r.functions[key]; taken {
		return fmt.Errorf("rules: function %q already registered", name)
	}
	r.functions[key] = fn
	return nil
}

// MustRegister panics when Register fails.
func (r *FunctionRegistry) MustRegister(name string, fn Function) {
	if err := r.Register(name, fn); err != nil {
		panic(err)
	}
}

// Clone lets an evaluator keep its own set of helpers.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return &FunctionRegistry{functions: maps.Clone(r.functions)}
}

func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("rules: function registry is nil")
	}
	r.mu.RLock()
	fn, ok := r.functions[strings.ToLower(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("rules: function %q not registered", name)
	}
	return fn(args...)
}

// Names lists the registered helpers in lower case, sorted.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.functions))
}
