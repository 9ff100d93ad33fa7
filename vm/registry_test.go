package vm

import (
	"errors"
	"sync"
	"testing"
)

func noop(rt *Runtime, reg Register) {}

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := NewRegistry()

	ctor, err := r.RegisterConstructor("image.Point", noop)
	if err != nil {
		t.Fatalf("RegisterConstructor: %v", err)
	}
	if ctor.Kind != Constructor || ctor.Owner != "image.Point" {
		t.Errorf("constructor = %+v", ctor)
	}
	if _, err := r.RegisterGetter("X", "image.Point", 0, noop); err != nil {
		t.Fatalf("RegisterGetter: %v", err)
	}
	if _, err := r.RegisterSetter("X", "image.Point", 1, noop); err != nil {
		t.Fatalf("RegisterSetter: %v", err)
	}

	if got, ok := r.Constructor("image.Point"); !ok || got != ctor {
		t.Error("Constructor lookup failed")
	}
	if _, ok := r.Getter("X", "image.Point", 0); !ok {
		t.Error("Getter lookup failed")
	}
	if _, ok := r.Getter("X", "image.Point", 1); ok {
		t.Error("Getter lookup should be keyed by arity")
	}
	if _, ok := r.Setter("X", "image.Point", 1); !ok {
		t.Error("Setter lookup failed")
	}
	if _, ok := r.Setter("Y", "image.Point", 1); ok {
		t.Error("unregistered setter found")
	}
	if r.Len() != 3 {
		t.Errorf("Len() = %d, want 3", r.Len())
	}
}

func TestRegistryDuplicate(t *testing.T) {
	r := NewRegistry()
	r.RegisterGetter("X", "image.Point", 0, noop)

	_, err := r.RegisterGetter("X", "image.Point", 0, noop)
	if !errors.Is(err, ErrDuplicateBinding) {
		t.Errorf("duplicate getter error = %v, want ErrDuplicateBinding", err)
	}

	// Same name as a setter is a different binding.
	if _, err := r.RegisterSetter("X", "image.Point", 0, noop); err != nil {
		t.Errorf("setter sharing a getter's name: %v", err)
	}
}

func TestRegistryRejectsNilFunc(t *testing.T) {
	r := NewRegistry()
	if _, err := r.RegisterConstructor("image.Point", nil); err == nil {
		t.Error("nil function accepted")
	}
}

func TestRegistryUnregister(t *testing.T) {
	r := NewRegistry()
	r.RegisterConstructor("image.Point", noop)
	r.RegisterGetter("X", "image.Point", 0, noop)
	r.RegisterSetter("X", "image.Point", 1, noop)

	if !r.UnregisterConstructor("image.Point") {
		t.Error("UnregisterConstructor returned false")
	}
	if r.UnregisterConstructor("image.Point") {
		t.Error("second UnregisterConstructor returned true")
	}
	if !r.UnregisterGetter("X", "image.Point", 0) || !r.UnregisterSetter("X", "image.Point", 1) {
		t.Error("unregistering member bindings failed")
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d after unregistering everything", r.Len())
	}
}

func TestRegistryBindingsSorted(t *testing.T) {
	r := NewRegistry()
	r.RegisterSetter("Y", "image.Point", 1, noop)
	r.RegisterGetter("Y", "image.Point", 0, noop)
	r.RegisterGetter("X", "image.Point", 0, noop)
	r.RegisterConstructor("image.Point", noop)
	r.RegisterConstructor("image.Alpha", noop)

	var got []string
	for _, b := range r.Bindings() {
		got = append(got, b.String())
	}
	want := []string{
		"ctor image.Alpha",
		"ctor image.Point",
		"get X/0 @ image.Point",
		"get Y/0 @ image.Point",
		"set Y/1 @ image.Point",
	}
	if len(got) != len(want) {
		t.Fatalf("Bindings() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Bindings()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRegistryConcurrent(t *testing.T) {
	r := NewRegistry()
	owners := []string{"a.A", "b.B", "c.C", "d.D"}

	var wg sync.WaitGroup
	for _, owner := range owners {
		wg.Add(1)
		go func(owner string) {
			defer wg.Done()
			r.RegisterConstructor(owner, noop)
			r.Constructor(owner)
			r.Bindings()
		}(owner)
	}
	wg.Wait()

	if r.Len() != len(owners) {
		t.Errorf("Len() = %d, want %d", r.Len(), len(owners))
	}
}

func TestBindingKindString(t *testing.T) {
	if Constructor.String() != "constructor" || Getter.String() != "getter" || Setter.String() != "setter" {
		t.Error("unexpected BindingKind names")
	}
}
