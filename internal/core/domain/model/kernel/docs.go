// Package kernel contains shared domain primitives used across aggregates.
//
// The central type is GeoPoint, an immutable value object representing a
// GPS coordinate pair. Like all value objects in this codebase it must be
// created through its constructor; zero values fail validation via the
// constructor-guard pattern (see internal/pkg/guard).
//
// LocationSample couples a GeoPoint with a capture timestamp and accuracy
// reading. Samples are transient: only the most recent one per order is
// retained server-side, and the timestamp is used to detect staleness.
package kernel
