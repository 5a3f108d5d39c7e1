// Package style holds the fixed set of frame styles a photo can be branded
// with. A style is a pure lookup: gradient colours and a caption.
package style

import (
	"image/color"
	"strings"

	"github.com/drummonds/gpframes/internal/drawing"
)

const (
	TourBuddy   = "tour-buddy"
	BestMoments = "best-moments"
	EventBrand  = "gp-2025"

	// Initial selection for a new session.
	Default = TourBuddy
)

type FrameStyle struct {
	Key     string      `json:"key"`
	Name    string      `json:"name"`
	Start   color.NRGBA `json:"-"`
	End     color.NRGBA `json:"-"`
	Caption string      `json:"caption"`
}

var styles = []FrameStyle{
	{
		Key:     TourBuddy,
		Name:    "Best Tour Buddy",
		Start:   drawing.MustParseHex("#3B82F6"),
		End:     drawing.MustParseHex("#06B6D4"),
		Caption: "My Best Tour Buddy",
	},
	{
		Key:     BestMoments,
		Name:    "Best Moments",
		Start:   drawing.MustParseHex("#EC4899"),
		End:     drawing.MustParseHex("#F43F5E"),
		Caption: "Best Moments @ GP 2025",
	},
	{
		Key:     EventBrand,
		Name:    "GP Marketing 2025",
		Start:   drawing.MustParseHex("#8B5CF6"),
		End:     drawing.MustParseHex("#6366F1"),
		Caption: "GP Marketing Convention 2025",
	},
}

// Fallback is used for any key not in the table.
var Fallback = styles[2]

// All returns the known styles in display order.
func All() []FrameStyle {
	out := make([]FrameStyle, len(styles))
	copy(out, styles)
	return out
}

// Resolve looks up key. Unknown keys, including the empty string, resolve to
// Fallback with ok set to false.
func Resolve(key string) (s FrameStyle, ok bool) {
	key = strings.TrimSpace(key)
	for _, s := range styles {
		if s.Key == key {
			return s, true
		}
	}
	return Fallback, false
}

// Next returns the key after key in display order, wrapping around.
func Next(key string) string {
	for i, s := range styles {
		if s.Key == key {
			return styles[(i+1)%len(styles)].Key
		}
	}
	return styles[0].Key
}
