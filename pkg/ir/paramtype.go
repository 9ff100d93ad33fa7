package ir

import (
	"fmt"
	"strings"
)

// ParamType is the semantic element type used when materializing
// homogeneous containers.
type ParamType uint8

const (
	TypeInt ParamType = iota
	TypeFloat
	TypeDecimal
	TypeString
	TypeBool
	TypeObject
	TypeMap
	TypeVector
)

var paramTypeNames = [...]string{
	TypeInt:     "INT",
	TypeFloat:   "FLT",
	TypeDecimal: "DEC",
	TypeString:  "STR",
	TypeBool:    "BOOL",
	TypeObject:  "OBJ",
	TypeMap:     "MAP",
	TypeVector:  "VEC",
}

// String returns the catalog spelling of the type (e.g. "INT").
func (t ParamType) String() string {
	if int(t) < len(paramTypeNames) {
		return paramTypeNames[t]
	}
	return fmt.Sprintf("ParamType(%d)", uint8(t))
}

// Valid reports whether t is one of the defined types.
func (t ParamType) Valid() bool {
	return int(t) < len(paramTypeNames)
}

// IsCollection reports whether t names a collection. Collections cannot be
// flattened into a scalar array.
func (t ParamType) IsCollection() bool {
	return t == TypeMap || t == TypeVector
}

// ParseParamType parses a catalog spelling, case-insensitively.
func ParseParamType(s string) (ParamType, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for i, name := range paramTypeNames {
		if name == upper {
			return ParamType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown param type %q", s)
}
