package vm

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrDuplicateBinding reports a registration under a key already in use.
var ErrDuplicateBinding = errors.New("binding already registered")

type bindingKey struct {
	kind  BindingKind
	name  string
	owner string
	arity int
}

// Registry is the binding lookup table populated by generated glue at
// startup. The interpreter never consults it; producers resolve bindings
// from it and embed them in instructions.
// Thread-safe for concurrent registration and lookup.
type Registry struct {
	mu       sync.RWMutex
	bindings map[bindingKey]*FuncBinding
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		bindings: make(map[bindingKey]*FuncBinding),
	}
}

func (r *Registry) add(b *FuncBinding) (*FuncBinding, error) {
	if b.Fn == nil {
		return nil, fmt.Errorf("%s: nil binding function", b)
	}
	key := bindingKey{kind: b.Kind, name: b.Name, owner: b.Owner, arity: b.Arity}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bindings[key]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateBinding, b)
	}
	r.bindings[key] = b
	return b, nil
}

func (r *Registry) remove(key bindingKey) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bindings[key]; !ok {
		return false
	}
	delete(r.bindings, key)
	return true
}

func (r *Registry) lookup(key bindingKey) (*FuncBinding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bindings[key]
	return b, ok
}

// RegisterConstructor registers the constructor for owner.
func (r *Registry) RegisterConstructor(owner string, fn BindFunc) (*FuncBinding, error) {
	return r.add(&FuncBinding{Owner: owner, Kind: Constructor, Fn: fn})
}

// RegisterGetter registers a getter named name on owner taking arity arguments.
func (r *Registry) RegisterGetter(name, owner string, arity int, fn BindFunc) (*FuncBinding, error) {
	return r.add(&FuncBinding{Name: name, Owner: owner, Arity: arity, Kind: Getter, Fn: fn})
}

// RegisterSetter registers a setter named name on owner taking arity arguments.
func (r *Registry) RegisterSetter(name, owner string, arity int, fn BindFunc) (*FuncBinding, error) {
	return r.add(&FuncBinding{Name: name, Owner: owner, Arity: arity, Kind: Setter, Fn: fn})
}

// UnregisterConstructor removes owner's constructor. Reports whether one existed.
func (r *Registry) UnregisterConstructor(owner string) bool {
	return r.remove(bindingKey{kind: Constructor, owner: owner})
}

// UnregisterGetter removes a getter. Reports whether one existed.
func (r *Registry) UnregisterGetter(name, owner string, arity int) bool {
	return r.remove(bindingKey{kind: Getter, name: name, owner: owner, arity: arity})
}

// UnregisterSetter removes a setter. Reports whether one existed.
func (r *Registry) UnregisterSetter(name, owner string, arity int) bool {
	return r.remove(bindingKey{kind: Setter, name: name, owner: owner, arity: arity})
}

// Constructor returns owner's constructor.
func (r *Registry) Constructor(owner string) (*FuncBinding, bool) {
	return r.lookup(bindingKey{kind: Constructor, owner: owner})
}

// Getter returns a registered getter.
func (r *Registry) Getter(name, owner string, arity int) (*FuncBinding, bool) {
	return r.lookup(bindingKey{kind: Getter, name: name, owner: owner, arity: arity})
}

// Setter returns a registered setter.
func (r *Registry) Setter(name, owner string, arity int) (*FuncBinding, bool) {
	return r.lookup(bindingKey{kind: Setter, name: name, owner: owner, arity: arity})
}

// Len returns the number of registered bindings.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bindings)
}

// Bindings returns every registered binding ordered by owner, kind, name
// and arity.
func (r *Registry) Bindings() []*FuncBinding {
	r.mu.RLock()
	out := make([]*FuncBinding, 0, len(r.bindings))
	for _, b := range r.bindings {
		out = append(out, b)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Owner != b.Owner {
			return a.Owner < b.Owner
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Arity < b.Arity
	})
	return out
}
