// Package canon provides the value model, canonical serialization and content
// hashing shared by every PK1 package.
//
// This package imports nothing internal. All other internal packages import
// canon; it is the foundational layer for determinism.
//
// Key design constraints:
//   - Values are a sealed set: Null, String, Number, Bool, Array, Object
//   - Object keys are emitted in code-point order at every depth
//   - Strings are NFC normalized at the serialization boundary
//   - Numbers use the ECMAScript shortest round-trip form; NaN and Inf are rejected
//   - Values are never mutated after construction; use Clone before editing
package canon
