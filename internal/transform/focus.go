package transform

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformedFocus is returned when a focus descriptor is not "x-y-zoom".
var ErrMalformedFocus = errors.New("malformed focus descriptor")

// Focusable is the slice of an asset the focal-point resolver reads.
type Focusable interface {
	FocusDescriptor() string
	NaturalSize() (width, height int)
}

// Focus is a parsed focus descriptor: percentages of the natural size and a zoom level.
type Focus struct {
	XPercent float64
	YPercent float64
	Zoom     float64
}

// ParseFocus parses a stored "x_pct-y_pct-zoom" descriptor such as "50-50-2.0".
func ParseFocus(s string) (Focus, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return Focus{}, fmt.Errorf("%w: %q", ErrMalformedFocus, s)
	}
	var nums [3]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return Focus{}, fmt.Errorf("%w: %q", ErrMalformedFocus, s)
		}
		nums[i] = f
	}
	return Focus{XPercent: nums[0], YPercent: nums[1], Zoom: nums[2]}, nil
}

// ResolveFocus converts the asset's focus descriptor into crop geometry:
// absolute x/y offsets, a zoom truncated to one decimal, and xy_center
// gravity. It returns an empty set when the asset has no focus data.
func ResolveFocus(asset Focusable) (*Params, error) {
	out := &Params{}
	descriptor := asset.FocusDescriptor()
	if descriptor == "" {
		return out, nil
	}

	focus, err := ParseFocus(descriptor)
	if err != nil {
		return out, err
	}

	width, height := asset.NaturalSize()
	out.Set("x", int(math.Floor(focus.XPercent/100*float64(width))))
	out.Set("y", int(math.Floor(focus.YPercent/100*float64(height))))
	out.Set("zoom", math.Floor(focus.Zoom*10)/10)
	out.Set("gravity", "xy_center")
	return out, nil
}
