// Package errs provides standardized error types for the dispatch application.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// The package covers the failure classes a caller can act on:
//   - ValueIsRequiredError / ValueIsInvalidError / ValueIsOutOfRangeError:
//     input validation failures
//   - ObjectNotFoundError: a referenced object does not exist
//   - PreconditionFailedError: a business precondition does not hold
//     (unverified agent, wrong order state)
//   - ConflictError: a lost race or a duplicate of a unique resource
//   - ForbiddenError: an owner-only operation attempted by someone else
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g., ErrValueIsRequired)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method for error wrapping/unwrapping support
//
// Transient infrastructure failures are deliberately absent: they are plain
// wrapped errors that stay inside adapters and retry loops and are never
// returned to callers as a classified kind.
package errs
