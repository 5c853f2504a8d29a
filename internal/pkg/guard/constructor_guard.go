// Package guard provides the constructor-guard pattern used by domain
// value objects, aggregates, and command/query types to detect zero-value
// instances that bypassed their constructor.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when the guarded object
// was not constructed and the caller supplied a nil validation error.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard marks an object as having been created through its
// designated constructor. Embedding a guard in a struct and validating it
// before use prevents accidental operation on zero values, which would
// otherwise silently skip the invariant checks the constructor performs.
//
// Example:
//
//	type GeoPoint struct {
//	    lng, lat float64
//	    guard    guard.ConstructorGuard
//	}
//
//	func NewGeoPoint(lng, lat float64) (GeoPoint, error) {
//	    // range checks ...
//	    return GeoPoint{lng: lng, lat: lat, guard: guard.NewConstructorGuard()}, nil
//	}
//
//	func (p GeoPoint) Validate() error {
//	    return p.guard.Validate(ErrGeoPointIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard creates a guard marking the enclosing object as
// properly constructed. Call it in every constructor of a guarded type.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns nil when the object was built through its constructor.
// For a zero-value guard it returns validationError, or
// ErrDefaultConstructorGuard when validationError is nil.
func (g ConstructorGuard) Validate(validationError error) error {
	if validationError == nil {
		validationError = ErrDefaultConstructorGuard
	}
	if !g.isConstructed {
		return validationError
	}
	return nil
}
