package timeline

import (
	"sort"

	"rejourney/internal/session"
)

// Normalize merges raw events, network requests, and crash reports into one
// timeline sorted ascending by timestamp, with synthetic rage_tap events
// appended before the final sort. Malformed network entries are dropped
// silently; a single corrupt record must not break the whole replay.
func Normalize(events []session.Event, requests []session.NetworkRequest, crashes []session.CrashReport) []session.Event {
	merged := make([]session.Event, 0, len(events)+len(requests)+len(crashes))
	merged = append(merged, events...)

	for _, req := range requests {
		if req.Timestamp <= 0 || req.Path() == "" {
			continue
		}
		merged = append(merged, networkEvent(req))
	}

	for _, crash := range crashes {
		merged = append(merged, crashEvent(crash))
	}

	merged = append(merged, DetectRageTaps(events)...)

	// Ties must keep original relative order so interleaved sources replay
	// deterministically between runs.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	})
	return merged
}

// networkEvent converts a request record into a timeline event. The
// conversion is lossy: the record's fields survive only as properties.
func networkEvent(req session.NetworkRequest) session.Event {
	return session.Event{
		Type:      session.TypeNetworkRequest,
		Name:      req.Path(),
		Timestamp: req.Timestamp,
		Properties: map[string]any{
			"method":           req.Method,
			"url":              req.Path(),
			"statusCode":       req.StatusCode,
			"duration":         req.Duration,
			"success":          req.Success,
			"requestBodySize":  req.RequestBodySize,
			"responseBodySize": req.ResponseBodySize,
		},
	}
}

func crashEvent(crash session.CrashReport) session.Event {
	return session.Event{
		Type:      session.TypeCrash,
		Name:      crash.ExceptionName,
		Timestamp: crash.Timestamp,
		Properties: map[string]any{
			"exceptionName": crash.ExceptionName,
			"reason":        crash.Reason,
			"crashId":       crash.CrashID,
		},
	}
}
