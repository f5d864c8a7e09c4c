package calculator

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Registry maps command names to operation constructors. Lookup ignores case.
type Registry struct {
	ctors map[string]func() Operation
}

// NewRegistry returns a registry holding the built-in REPL commands.
func NewRegistry() *Registry {
	r := &Registry{ctors: make(map[string]func() Operation)}

	r.ctors["add"] = func() Operation { return Addition{} }
	r.ctors["subtract"] = func() Operation { return Subtraction{} }
	r.ctors["multiply"] = func() Operation { return Multiplication{} }
	r.ctors["divide"] = func() Operation { return Division{} }
	r.ctors["power"] = func() Operation { return Power{} }
	r.ctors["root"] = func() Operation { return Root{} }

	return r
}

// Create builds the operation registered under name.
func (r *Registry) Create(name string) (Operation, error) {
	ctor, ok := r.ctors[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, unknownOperationError(name)
	}
	return ctor(), nil
}

// Register adds or replaces an operation. ctor must produce a non-nil
// Operation; it is called once here to check that.
func (r *Registry) Register(name string, ctor func() Operation) error {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return operationError("Operation name cannot be empty", nil)
	}
	if ctor == nil {
		return operationError(fmt.Sprintf("Operation %s has no constructor", name), nil)
	}
	if ctor() == nil {
		return operationError(fmt.Sprintf("Operation %s must implement the Operation contract", name), errors.New("constructor returned nil"))
	}

	r.ctors[key] = ctor
	return nil
}

// Has reports whether name resolves to an operation.
func (r *Registry) Has(name string) bool {
	_, ok := r.ctors[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Names lists registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.ctors))
	for name := range r.ctors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
