package services

import (
	"encoding/json"
	"math"
)

// Frame-to-seconds factor of the analysis model's sampling rate.
const secondsPerFrame = 0.68

// analysisPayload is the fixed shape decoded from the analysis callback
// body. Every field has a defined default; absent fields never fail the
// request. Pointer fields distinguish "absent" from zero.
type analysisPayload struct {
	AccidentType   *int            `json:"accidentType"`
	CarAProgress   string          `json:"carAProgress"`
	CarBProgress   string          `json:"carBProgress"`
	DamageLocation string          `json:"damageLocation"`
	FaultA         *int            `json:"faultA"`
	FaultB         *int            `json:"faultB"`
	EventTimeline  []timelineEntry `json:"eventTimeline"`
}

type timelineEntry struct {
	Event    string `json:"event"`
	FrameIdx int    `json:"frameIdx"`
}

// timelineEvent is the persisted form, frame index already converted to
// video seconds.
type timelineEvent struct {
	Event   string  `json:"event"`
	Seconds float64 `json:"seconds"`
}

// decodeAnalysisPayload never fails: an unreadable body decodes to the
// zero payload and every downstream field falls back to its default.
func decodeAnalysisPayload(raw []byte) analysisPayload {
	var p analysisPayload
	if len(raw) == 0 {
		return p
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return analysisPayload{}
	}
	return p
}

func (p analysisPayload) accidentCode() int {
	if p.AccidentType == nil {
		return 0
	}
	return *p.AccidentType
}

// describeDirection translates a raw movement code into the phrase shown
// on the report. The recording vehicle (A) and the other party (B) read
// differently for the same code.
func describeDirection(code string, vehicleA bool) string {
	switch code {
	case "move_left":
		if vehicleA {
			return "Turning left"
		}
		return "Entering from the left"
	case "move_right":
		if vehicleA {
			return "Turning right"
		}
		return "Entering from the right"
	case "go_straight":
		if vehicleA {
			return "Going straight"
		}
		return "Approaching head-on"
	case "from_left":
		return "Entering from the left"
	case "from_right":
		return "Entering from the right"
	case "center", "unknown":
		return "Crossing the center line"
	default:
		if vehicleA {
			return "Own vehicle movement unknown"
		}
		return "Other vehicle movement unknown"
	}
}

func describeTimelineEvent(event string) string {
	switch event {
	case "vehicle_B_first_seen":
		return "Other vehicle first seen"
	case "aftermath":
		return "Moment of collision"
	default:
		return "Unknown event"
	}
}

// buildTimeline converts frame indices to seconds (rounded to two
// decimals) and keeps the entries in input order.
func buildTimeline(entries []timelineEntry) []timelineEvent {
	out := make([]timelineEvent, 0, len(entries))
	for _, entry := range entries {
		seconds := math.Round(float64(entry.FrameIdx)*secondsPerFrame*100) / 100
		out = append(out, timelineEvent{
			Event:   describeTimelineEvent(entry.Event),
			Seconds: seconds,
		})
	}
	return out
}

// serializeTimeline renders the ordered timeline as the JSON blob stored
// on the report. Always a valid array, never null.
func serializeTimeline(events []timelineEvent) []byte {
	if len(events) == 0 {
		return []byte("[]")
	}
	raw, err := json.Marshal(events)
	if err != nil {
		return []byte("[]")
	}
	return raw
}
