package feed

// Gesture classification thresholds, in CSS pixels and milliseconds.
// Magnitudes between the tap and swipe thresholds fall into a dead zone
// and produce no gesture.
const (
	tapMaxDistancePx   = 20
	tapMaxDurationMs   = 300
	swipeMinDistancePx = 80
	swipeMaxDurationMs = 500
)

type Gesture string

const (
	GestureNone    Gesture = "none"
	GestureTap     Gesture = "tap"
	GestureAdvance Gesture = "advance"
	GestureRetreat Gesture = "retreat"
)

// TouchPoint is a raw pointer sample reported by the client. At is a unix
// timestamp in milliseconds.
type TouchPoint struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	At int64   `json:"at"`
}

// ClassifyTouch interprets a completed touch as at most one semantic
// gesture. Taps are passed through, not consumed; horizontal-dominant
// movement is left to default handling.
func ClassifyTouch(start, end TouchPoint) Gesture {
	deltaX := end.X - start.X
	deltaY := end.Y - start.Y
	duration := end.At - start.At

	absX := deltaX
	if absX < 0 {
		absX = -absX
	}
	absY := deltaY
	if absY < 0 {
		absY = -absY
	}

	if absY < tapMaxDistancePx && duration < tapMaxDurationMs {
		return GestureTap
	}

	if absX > absY {
		return GestureNone
	}

	if absY > swipeMinDistancePx && duration < swipeMaxDurationMs {
		if deltaY < 0 {
			return GestureAdvance
		}
		return GestureRetreat
	}

	return GestureNone
}

// ClassifyKey maps arrow keys to paging without the distance/time gate.
func ClassifyKey(key string) Gesture {
	switch key {
	case "ArrowDown":
		return GestureAdvance
	case "ArrowUp":
		return GestureRetreat
	default:
		return GestureNone
	}
}
