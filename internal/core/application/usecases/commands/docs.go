// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: constructor validation, store
// calls, and classified errors from internal/pkg/errs.
//
// There is no transaction object: every mutation is a single-document store
// operation, and the lifecycle invariants rest on the conditional updates the
// ports expose (check-and-set on the unassigned/holder predicates) rather
// than on a surrounding transaction.
package commands
