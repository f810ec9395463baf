package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyTouch(t *testing.T) {
	tests := []struct {
		name    string
		start   TouchPoint
		end     TouchPoint
		gesture Gesture
	}{
		{
			name:    "quick tap",
			start:   TouchPoint{X: 100, Y: 200, At: 0},
			end:     TouchPoint{X: 105, Y: 210, At: 150},
			gesture: GestureTap,
		},
		{
			name:    "slow press is not a tap",
			start:   TouchPoint{X: 100, Y: 200, At: 0},
			end:     TouchPoint{X: 100, Y: 205, At: 400},
			gesture: GestureNone,
		},
		{
			name:    "swipe up advances",
			start:   TouchPoint{X: 100, Y: 400, At: 0},
			end:     TouchPoint{X: 110, Y: 280, At: 200},
			gesture: GestureAdvance,
		},
		{
			name:    "swipe down retreats",
			start:   TouchPoint{X: 100, Y: 200, At: 0},
			end:     TouchPoint{X: 95, Y: 350, At: 200},
			gesture: GestureRetreat,
		},
		{
			name:    "slow drag is not a swipe",
			start:   TouchPoint{X: 100, Y: 400, At: 0},
			end:     TouchPoint{X: 100, Y: 280, At: 600},
			gesture: GestureNone,
		},
		{
			name:    "dead zone between tap and swipe",
			start:   TouchPoint{X: 100, Y: 300, At: 0},
			end:     TouchPoint{X: 100, Y: 250, At: 200},
			gesture: GestureNone,
		},
		{
			name:    "horizontal dominant movement is ignored",
			start:   TouchPoint{X: 50, Y: 300, At: 0},
			end:     TouchPoint{X: 250, Y: 180, At: 200},
			gesture: GestureNone,
		},
		{
			name:    "exactly at swipe threshold is not a swipe",
			start:   TouchPoint{X: 100, Y: 300, At: 0},
			end:     TouchPoint{X: 100, Y: 220, At: 200},
			gesture: GestureNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.gesture, ClassifyTouch(tt.start, tt.end))
		})
	}
}

func TestClassifyKey(t *testing.T) {
	assert.Equal(t, GestureAdvance, ClassifyKey("ArrowDown"))
	assert.Equal(t, GestureRetreat, ClassifyKey("ArrowUp"))
	assert.Equal(t, GestureNone, ClassifyKey("ArrowLeft"))
	assert.Equal(t, GestureNone, ClassifyKey("Enter"))
}
