// Package types defines the public data model shared by the msikit packages:
// typed errors, table schemas, rows and values, and package metadata.
//
// Design goals:
//   - Values are small tagged structs, not interfaces.
//   - Schemas are immutable once decoded; accessors hand out copies.
//   - Paranoid bounds checking upstream; never panic on malformed input.
//   - Typed errors with stable categories (format/corrupt/unsupported/...).
//
// This package has no dependencies beyond the standard library.
package types
