package kernel

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

const (
	// MinLongitude is the smallest valid longitude in degrees.
	MinLongitude float64 = -180
	// MaxLongitude is the largest valid longitude in degrees.
	MaxLongitude float64 = 180
	// MinLatitude is the smallest valid latitude in degrees.
	MinLatitude float64 = -90
	// MaxLatitude is the largest valid latitude in degrees.
	MaxLatitude float64 = 90

	// EarthRadiusMeters is the mean Earth radius used by the haversine
	// distance calculation.
	EarthRadiusMeters float64 = 6371000
)

// ErrGeoPointIsNotConstructed is returned when attempting to use an improperly
// initialized GeoPoint. GeoPoints must be created via NewGeoPoint or
// NewRandomGeoPoint to guarantee their coordinates are valid.
var ErrGeoPointIsNotConstructed = errs.NewValueIsRequiredError(
	"geo point must be created via NewGeoPoint or NewRandomGeoPoint constructors")

// GeoPoint is an immutable value object representing a geographic position in
// WGS 84 degrees. Following the GeoJSON convention the longitude comes FIRST
// and the latitude second, both in the constructor and in every persisted
// representation; mixing the order up produces points mirrored across the
// globe, so callers should never destructure coordinates positionally outside
// this package.
//
// The zero value of GeoPoint is invalid and fails validation - use the
// constructors to create instances.
//
// Example:
//
//	pickup, err := kernel.NewGeoPoint(77.5946, 12.9716)
//	if err != nil {
//	    // handle validation error
//	}
//	fmt.Println(pickup) // Output: GeoPoint(77.5946,12.9716)
type GeoPoint struct { //nolint:recvcheck //using for validation
	longitude float64
	latitude  float64
	guard     guard.ConstructorGuard
}

// NewGeoPoint creates a GeoPoint from a longitude/latitude pair in degrees.
// Longitude must lie in [MinLongitude..MaxLongitude] and latitude in
// [MinLatitude..MaxLatitude]; NaN is rejected for both. When both coordinates
// are invalid the returned error reports both violations.
func NewGeoPoint(longitude float64, latitude float64) (GeoPoint, error) {
	point := GeoPoint{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(point.setLongitude(longitude), point.setLatitude(latitude)); err != nil {
		return GeoPoint{}, err
	}

	return point, nil
}

// NewRandomGeoPoint creates a GeoPoint with uniformly random valid
// coordinates. It is useful in tests and simulations that need arbitrary
// positions on the globe.
func NewRandomGeoPoint() (GeoPoint, error) {
	longitude := MinLongitude + rand.Float64()*(MaxLongitude-MinLongitude) //nolint:gosec // it's ok
	latitude := MinLatitude + rand.Float64()*(MaxLatitude-MinLatitude)     //nolint:gosec // it's ok
	return NewGeoPoint(longitude, latitude)
}

// Validate checks that the GeoPoint was created through a constructor.
// The zero value fails with ErrGeoPointIsNotConstructed.
func (p GeoPoint) Validate() error {
	return p.guard.Validate(ErrGeoPointIsNotConstructed)
}

// Longitude returns the east-west coordinate in degrees.
func (p GeoPoint) Longitude() float64 {
	return p.longitude
}

// Latitude returns the north-south coordinate in degrees.
func (p GeoPoint) Latitude() float64 {
	return p.latitude
}

// String renders the point as "GeoPoint(longitude,latitude)", keeping the
// GeoJSON coordinate order. It implements fmt.Stringer.
func (p GeoPoint) String() string {
	return fmt.Sprintf("GeoPoint(%g,%g)", p.longitude, p.latitude)
}

// IsEqual compares two points for exact coordinate equality. Both points must
// be properly constructed for the comparison to succeed.
func (p GeoPoint) IsEqual(other GeoPoint) (bool, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return false, err
	}

	return p.longitude == other.longitude && p.latitude == other.latitude, nil
}

// DistanceTo calculates the great-circle distance in meters between two
// points using the haversine formula with EarthRadiusMeters as the sphere
// radius. The result is symmetric, and the distance from a point to itself is
// exactly zero. Both points must be properly constructed for the calculation
// to succeed.
//
// Example:
//
//	restaurant, _ := kernel.NewGeoPoint(77.5946, 12.9716)
//	agent, _ := kernel.NewGeoPoint(77.6101, 12.9352)
//
//	meters, err := agent.DistanceTo(restaurant)
//	// meters ≈ 4382, err = nil
func (p GeoPoint) DistanceTo(other GeoPoint) (float64, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return 0, err
	}

	lat1 := radians(p.latitude)
	lat2 := radians(other.latitude)
	deltaLat := radians(other.latitude - p.latitude)
	deltaLng := radians(other.longitude - p.longitude)

	sinLat := math.Sin(deltaLat / 2)
	sinLng := math.Sin(deltaLng / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng
	// Rounding can push h marginally outside [0,1], which would turn Asin
	// into NaN for near-antipodal points.
	h = math.Max(0, math.Min(1, h))

	return 2 * EarthRadiusMeters * math.Asin(math.Sqrt(h)), nil
}

// setLongitude sets the longitude with validation.
// Note: the private setters use pointer receivers while the public API uses
// value receivers. The mix is intentional: it lets construction-time
// validation write the field while keeping the published object immutable.
func (p *GeoPoint) setLongitude(longitude float64) error {
	if math.IsNaN(longitude) || longitude < MinLongitude || longitude > MaxLongitude {
		return errs.NewValueIsOutOfRangeError("longitude", longitude, MinLongitude, MaxLongitude)
	}

	p.longitude = longitude
	return nil
}

// setLatitude sets the latitude with validation.
func (p *GeoPoint) setLatitude(latitude float64) error {
	if math.IsNaN(latitude) || latitude < MinLatitude || latitude > MaxLatitude {
		return errs.NewValueIsOutOfRangeError("latitude", latitude, MinLatitude, MaxLatitude)
	}

	p.latitude = latitude
	return nil
}

func radians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
