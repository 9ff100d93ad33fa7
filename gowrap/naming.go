package gowrap

import (
	"strings"
	"unicode"
)

// QualifiedTypeName returns the owner name bindings register under.
// e.g., package "image", type "Point" → "image.Point"
func QualifiedTypeName(pkgName, typeName string) string {
	return pkgName + "." + typeName
}

// GluePackageName returns the package clause of generated glue.
// e.g., "image" → "wrap_image", "go-toml" → "wrap_go_toml"
func GluePackageName(pkgName string) string {
	return "wrap_" + PackageDirName(pkgName)
}

// PackageDirName returns the output directory for a package's glue.
func PackageDirName(pkgName string) string {
	return strings.ReplaceAll(pkgName, "-", "_")
}

// ConstructorFuncName names the generated constructor adapter.
// e.g., "Point" → "newPoint"
func ConstructorFuncName(typeName string) string {
	return "new" + toPascal(typeName)
}

// TargetFuncName names the generated helper that resolves a binding's
// target object. e.g., "Point" → "pointTarget"
func TargetFuncName(typeName string) string {
	return lowerFirst(typeName) + "Target"
}

// GetterFuncName names a generated getter adapter.
// e.g., "Point", "X" → "getPointX"
func GetterFuncName(typeName, field string) string {
	return "get" + toPascal(typeName) + toPascal(field)
}

// SetterFuncName names a generated setter adapter.
// e.g., "Point", "X" → "setPointX"
func SetterFuncName(typeName, field string) string {
	return "set" + toPascal(typeName) + toPascal(field)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// toPascal converts a string to PascalCase.
// Handles hyphenated and underscore-separated names.
func toPascal(s string) string {
	if len(s) == 0 {
		return s
	}

	var b strings.Builder
	nextUpper := true
	for _, r := range s {
		if r == '-' || r == '_' {
			nextUpper = true
			continue
		}
		if nextUpper {
			b.WriteRune(unicode.ToUpper(r))
			nextUpper = false
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
