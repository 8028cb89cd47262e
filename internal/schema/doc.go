// Package schema is a minimal recursive schema engine for PK1 documents.
//
// Schemas are authored in CUE (see schemas/*.cue) using a JSON-Schema-like
// vocabulary and compiled into a small AST:
//
//	*Object  properties (ordered), required, additionalProperties
//	*String  enum, maxLength
//	*Number
//	*Boolean
//	*Array   items, maxItems
//
// Validate walks the AST and the value together and returns the first
// violation. At every object node the order is: missing required field,
// unknown field (when additionalProperties is false), then each declared
// property in declaration order. Unknown fields are rejected at every depth
// where a sub-schema closes its object, not only at the top level.
package schema
