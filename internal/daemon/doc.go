// Package daemon coordinates the long-running Rejourney process and its
// integration points.
//
// It wires configuration, the session archive, and the active replay player
// into a single lifecycle with flock-based locking to prevent multiple
// instances. The daemon owns session ingestion and deletion, loads archived
// sessions into a replay player, and exposes playback transport controls plus
// an optional HTTP API for renderers that poll state and overlays.
//
// Keep orchestration logic here: playback mechanics live in the replay and
// playback packages while the daemon focuses on startup, shutdown, and high
// level coordination.
package daemon
