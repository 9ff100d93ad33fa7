// Package bindings registers the generated function bindings that ship with
// doml.
package bindings

//go:generate go run ../cmd/doml wrap -output . image

import (
	"github.com/chazu/doml/vm"

	wrapimage "github.com/chazu/doml/bindings/image"
)

// Register adds every standard binding to r.
func Register(r *vm.Registry) error {
	return wrapimage.Register(r)
}

// NewRegistry returns a registry populated with the standard bindings.
func NewRegistry() (*vm.Registry, error) {
	r := vm.NewRegistry()
	if err := Register(r); err != nil {
		return nil, err
	}
	return r, nil
}
