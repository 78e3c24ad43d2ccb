// Package timeline merges the heterogeneous session records into one sorted
// event stream and derives the signals the player needs from it.
//
// Normalize folds raw events, network requests, and crash reports into a
// single timeline of session.Event values ordered by absolute timestamp,
// appending synthetic rage_tap events found by spatio-temporal clustering.
// The sort is stable: different sources interleaving at the same millisecond
// keep their original relative order between runs.
//
// EstimateDuration picks the total playback duration from several imperfect
// candidate signals. A backend playableDuration wins outright; otherwise the
// maximum of all remaining candidates is used so no recorded frame or event
// is ever clipped off the timeline, at the cost of occasionally showing
// trailing dead time.
package timeline
