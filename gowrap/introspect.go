package gowrap

import (
	"fmt"
	"go/types"

	"golang.org/x/tools/go/packages"

	"github.com/chazu/doml/pkg/ir"
)

// IntrospectPackage loads a Go package by import path and returns its
// bindable struct types. The includeFilter, if non-nil, restricts which
// exported type names are included.
func IntrospectPackage(importPath string, includeFilter map[string]bool) (*PackageModel, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedTypes,
	}

	pkgs, err := packages.Load(cfg, importPath)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", importPath, err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages found for %s", importPath)
	}
	if len(pkgs[0].Errors) > 0 {
		return nil, fmt.Errorf("package errors: %v", pkgs[0].Errors)
	}

	pkg := pkgs[0]
	if pkg.Types == nil {
		return nil, fmt.Errorf("type information not available for %s", importPath)
	}

	model := &PackageModel{
		ImportPath: importPath,
		Name:       pkg.Name,
	}

	// First pass: the struct types that will be bound. Fields may refer to
	// any of them.
	scope := pkg.Types.Scope()
	structs := make(map[*types.TypeName]*types.Struct)
	var names []*types.TypeName
	for _, name := range scope.Names() {
		if includeFilter != nil && !includeFilter[name] {
			continue
		}
		tn, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || !tn.Exported() || tn.IsAlias() {
			continue
		}
		named, ok := tn.Type().(*types.Named)
		if !ok || named.TypeParams().Len() > 0 {
			continue
		}
		st, ok := named.Underlying().(*types.Struct)
		if !ok {
			continue
		}
		structs[tn] = st
		names = append(names, tn)
	}

	for _, tn := range names {
		model.Types = append(model.Types, extractType(tn, structs, pkg.Types))
	}
	return model, nil
}

func extractType(tn *types.TypeName, structs map[*types.TypeName]*types.Struct, pkg *types.Package) TypeModel {
	tm := TypeModel{
		Name:   tn.Name(),
		GoType: tn.Type(),
	}

	st := structs[tn]
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		if !f.Exported() || f.Embedded() {
			continue
		}
		elem, ok := fieldElem(f.Type(), structs)
		if !ok {
			continue
		}
		tm.Fields = append(tm.Fields, FieldModel{
			Name:    f.Name(),
			GoType:  f.Type(),
			TypeStr: types.TypeString(f.Type(), qualifier(pkg)),
			Elem:    elem,
		})
	}
	return tm
}

// fieldElem classifies a field type. Unnamed basic types map to scalar
// element types; struct types bound alongside map to OBJ. Everything else
// is not bindable.
func fieldElem(t types.Type, structs map[*types.TypeName]*types.Struct) (ir.ParamType, bool) {
	switch tt := t.(type) {
	case *types.Basic:
		switch tt.Kind() {
		case types.Int, types.Int8, types.Int16, types.Int32, types.Int64,
			types.Uint8, types.Uint16, types.Uint32:
			return ir.TypeInt, true
		case types.Float32, types.Float64:
			return ir.TypeFloat, true
		case types.String:
			return ir.TypeString, true
		case types.Bool:
			return ir.TypeBool, true
		}
	case *types.Named:
		if _, ok := structs[tt.Obj()]; ok {
			return ir.TypeObject, true
		}
	}
	return 0, false
}

func qualifier(pkg *types.Package) types.Qualifier {
	return func(other *types.Package) string {
		if other == pkg {
			return ""
		}
		return other.Name()
	}
}
