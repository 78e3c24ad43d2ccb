// Package sessionstore persists ingested session payloads in SQLite and
// plays the role of the session-data provider the replay engine consumes.
//
// The Store keeps the full payload as a JSON column plus denormalized
// summary columns (duration, event/frame/crash/rage-tap counts) so listing
// sessions never re-parses payloads. Schema changes bump schemaVersion in
// schema.go; mismatched databases are refused rather than migrated in
// place.
package sessionstore
