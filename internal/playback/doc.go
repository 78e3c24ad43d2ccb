// Package playback owns the virtual time cursor that drives replay.
//
// The Clock is a Paused/Playing state machine decoupled from wall time:
// while playing, Tick advances the cursor by real elapsed time scaled by the
// rate multiplier; seeks move it directly. Every tick re-reads rate and the
// playing flag through the shared Clock rather than through values captured
// at loop creation, so rate changes and pauses take effect on the very next
// tick. Tick returns a single snapshot so frame selection and overlay
// projection always observe the same cursor value.
//
// The Driver runs the animation loop on a ticker and stops it on context
// cancellation; a tick callback firing after teardown is a correctness bug,
// not merely wasteful, so Stop waits for the loop goroutine to exit.
//
// The Clock is mutex-guarded: the loop, IPC handlers, and HTTP handlers all
// touch it from their own goroutines.
package playback
