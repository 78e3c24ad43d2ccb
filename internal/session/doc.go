// Package session defines the immutable replay payload model shared by the
// engine packages.
//
// A Session is the raw recording a mobile SDK uploaded: typed events, network
// requests, crash reports, and screenshot frames, plus the device metadata
// needed to validate touch coordinates. Timestamps are absolute device-clock
// epoch milliseconds; relative time (seconds since session start) is derived,
// never stored.
//
// Platform SDKs disagree on the shape of touch payloads (array of points, a
// single point object, or nothing at all), so Event normalizes touches at
// JSON decode time into a fixed []TouchPoint with an explicit empty case.
// Consumers never need defensive shape checks.
//
// Everything in this package is immutable once ingested. Derived entities
// (overlay touches, rage-tap groups, density buckets, duration) are pure
// functions of a Session plus a scalar time value and live in the timeline,
// overlay, density, and frameindex packages.
package session
