// Package errors provides structured error types for metaprint.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the field path, the layout type name and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseRender, errors.KindOverflow).
//		Path("inventory", "items").
//		Type("Inventory").
//		Detail("vector length %d exceeds maximum %d", n, max).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.OutOfBounds(errors.PhaseRender, path, addr, size)
//	err := errors.Unbalanced(name, cursor, "pop without push")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
