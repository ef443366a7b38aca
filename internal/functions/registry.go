package functions

import (
	"sync"

	"github.com/virajbhartiya/map-reduce/internal/types"
)

// MapFunc takes the full textual content of one input unit and emits
// intermediate key-value pairs. Duplicate keys are allowed.
type MapFunc func(input string) []types.KeyValue

// ReduceFunc takes a key and every value collected for it and produces
// one output value. A non-nil error means a value failed the function's
// parsing expectations.
type ReduceFunc func(key string, values []string) (string, error)

// Registry maps symbolic names to map and reduce implementations.
// Registration is last-write-wins; resolution of an unknown name
// returns false rather than an error.
type Registry struct {
	mu        sync.RWMutex
	mapFns    map[string]MapFunc
	reduceFns map[string]ReduceFunc
}

// NewRegistry returns a registry pre-populated with the built-in
// functions so a zero-configuration job works out of the box.
func NewRegistry() *Registry {
	r := &Registry{
		mapFns:    make(map[string]MapFunc),
		reduceFns: make(map[string]ReduceFunc),
	}

	r.RegisterMap("word_count", WordCount)
	r.RegisterMap("char_freq", CharFrequency)
	r.RegisterReduce("sum", Sum)
	r.RegisterReduce("max", Max)

	return r
}

// RegisterMap binds name to fn, replacing any existing binding.
func (r *Registry) RegisterMap(name string, fn MapFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mapFns[name] = fn
}

// RegisterReduce binds name to fn, replacing any existing binding.
func (r *Registry) RegisterReduce(name string, fn ReduceFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reduceFns[name] = fn
}

// Map resolves a registered map function by name.
func (r *Registry) Map(name string) (MapFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.mapFns[name]
	return fn, ok
}

// Reduce resolves a registered reduce function by name.
func (r *Registry) Reduce(name string) (ReduceFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.reduceFns[name]
	return fn, ok
}
