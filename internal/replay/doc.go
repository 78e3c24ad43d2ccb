// Package replay wires the engine together: one Player per loaded session,
// composing the normalized timeline, duration estimate, frame index,
// playback clock, density strip, and frame preloader behind a single
// control surface.
//
// The Player is what the daemon exposes over IPC and HTTP. Its accessors
// return value snapshots; the ordering guarantee is that frame selection
// and overlay projection derived from one snapshot observe the same cursor
// value.
package replay
