// Package gowrap introspects Go packages and generates DOML function bindings.
package gowrap

import (
	"go/types"

	"github.com/chazu/doml/pkg/ir"
)

// PackageModel is the in-memory representation of the bindable part of a
// Go package's exported API.
type PackageModel struct {
	ImportPath string
	Name       string // short package name (e.g., "image")
	Types      []TypeModel
}

// TypeModel represents an exported struct type. Each one gets a zero-arg
// constructor plus a getter and setter per field.
type TypeModel struct {
	Name   string
	GoType types.Type
	Fields []FieldModel
}

// FieldModel represents an exported struct field of a bindable type.
type FieldModel struct {
	Name    string
	GoType  types.Type
	TypeStr string       // Go spelling relative to the package (e.g., "int", "Point")
	Elem    ir.ParamType // How the value appears on the stack
}

// IsObject reports whether the field holds another bound struct. Getters
// push a reference to it so it can be mutated in place.
func (f FieldModel) IsObject() bool {
	return f.Elem == ir.TypeObject
}

// Owner returns the qualified owner name bindings for t register under.
func (m *PackageModel) Owner(t TypeModel) string {
	return QualifiedTypeName(m.Name, t.Name)
}
