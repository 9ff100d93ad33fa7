// Package vm implements the DOML IR execution engine.
//
// This package contains:
//   - Tagged-union value representation and homogeneous arrays
//   - The runtime: value stack and register file
//   - Function binding protocol and the binding registry
//   - The interpreter and its safe/unsafe dispatch
//   - Diagnostic sinks
//   - Runtime snapshots
package vm
