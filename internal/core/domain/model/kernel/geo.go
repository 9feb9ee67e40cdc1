package kernel

import (
	"errors"
	"fmt"
	"math"
	"time"

	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

const (
	// LatitudeMin is the minimum valid latitude in decimal degrees.
	LatitudeMin = -90.0
	// LatitudeMax is the maximum valid latitude in decimal degrees.
	LatitudeMax = 90.0
	// LongitudeMin is the minimum valid longitude in decimal degrees.
	LongitudeMin = -180.0
	// LongitudeMax is the maximum valid longitude in decimal degrees.
	LongitudeMax = 180.0

	earthRadiusMeters = 6371000.0
)

// ErrGeoPointIsNotConstructed is returned when attempting to use an improperly
// initialized GeoPoint. GeoPoints must be created via NewGeoPoint.
var ErrGeoPointIsNotConstructed = errs.NewValueIsRequiredError(
	"geo point must be created via NewGeoPoint constructor")

// GeoPoint represents a GPS coordinate pair with validated bounds.
// GeoPoint is an immutable value object; the zero value is invalid and
// fails validation.
//
// Example:
//
//	point, err := kernel.NewGeoPoint(6.5244, 3.3792)
//	if err != nil {
//	    // Handle validation error
//	}
//	fmt.Println(point) // Output: GeoPoint(6.524400,3.379200)
type GeoPoint struct { //nolint:recvcheck //using for validation
	lat   float64
	lng   float64
	guard guard.ConstructorGuard
}

// NewGeoPoint creates a GeoPoint from latitude and longitude in decimal degrees.
// Latitude must be within [-90, 90] and longitude within [-180, 180].
func NewGeoPoint(lat, lng float64) (GeoPoint, error) {
	point := GeoPoint{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(point.setLat(lat), point.setLng(lng)); err != nil {
		return GeoPoint{}, err
	}

	return point, nil
}

// Validate checks that the GeoPoint was created through its constructor.
func (p GeoPoint) Validate() error {
	return p.guard.Validate(ErrGeoPointIsNotConstructed)
}

// Lat returns the latitude in decimal degrees.
func (p GeoPoint) Lat() float64 {
	return p.lat
}

// Lng returns the longitude in decimal degrees.
func (p GeoPoint) Lng() float64 {
	return p.lng
}

// String implements fmt.Stringer.
func (p GeoPoint) String() string {
	return fmt.Sprintf("GeoPoint(%f,%f)", p.lat, p.lng)
}

// IsEqual compares two points for coordinate equality.
// Both points must be properly constructed.
func (p GeoPoint) IsEqual(other GeoPoint) (bool, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return false, err
	}

	return p.lat == other.lat && p.lng == other.lng, nil
}

// DistanceMeters computes the great-circle distance to another point using the
// haversine formula. Both points must be properly constructed.
func (p GeoPoint) DistanceMeters(other GeoPoint) (float64, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return 0, err
	}

	lat1 := p.lat * math.Pi / 180
	lat2 := other.lat * math.Pi / 180
	dLat := (other.lat - p.lat) * math.Pi / 180
	dLng := (other.lng - p.lng) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c, nil
}

func (p *GeoPoint) setLat(lat float64) error {
	if lat < LatitudeMin || lat > LatitudeMax {
		return errs.NewValueIsOutOfRangeError("lat", lat, LatitudeMin, LatitudeMax)
	}

	p.lat = lat
	return nil
}

func (p *GeoPoint) setLng(lng float64) error {
	if lng < LongitudeMin || lng > LongitudeMax {
		return errs.NewValueIsOutOfRangeError("lng", lng, LongitudeMin, LongitudeMax)
	}

	p.lng = lng
	return nil
}

// LocationSample is a single GPS reading captured on a delivery client.
// Samples are transient; only the newest one per order survives server-side.
type LocationSample struct {
	Point          GeoPoint
	AccuracyMeters float64
	CapturedAt     time.Time
}

// NewLocationSample creates a sample from a validated point and capture time.
func NewLocationSample(point GeoPoint, accuracyMeters float64, capturedAt time.Time) (LocationSample, error) {
	if err := point.Validate(); err != nil {
		return LocationSample{}, err
	}
	if capturedAt.IsZero() {
		return LocationSample{}, errs.NewValueIsRequiredError("capturedAt")
	}

	return LocationSample{
		Point:          point,
		AccuracyMeters: accuracyMeters,
		CapturedAt:     capturedAt,
	}, nil
}

// IsStale reports whether the sample is older than maxAge relative to now.
func (s LocationSample) IsStale(now time.Time, maxAge time.Duration) bool {
	return now.Sub(s.CapturedAt) > maxAge
}
