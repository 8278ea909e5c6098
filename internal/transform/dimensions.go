package transform

import (
	"math"
	"strconv"
	"strings"
)

// FinalDimensions computes the rendered width and height from normalized
// parameters. A missing side is derived from the requested aspect ratio, or
// from the natural size when none is requested. (0, 0) means the delivery
// provider decides. Explicit width and height are returned as given even when
// they disagree with the aspect ratio.
func FinalDimensions(explicit *Params, naturalWidth, naturalHeight int) (int, int) {
	var width, height int
	if v, ok := explicit.Get("width"); ok {
		width = dimension(toNumber(v))
	}
	if v, ok := explicit.Get("height"); ok {
		height = dimension(toNumber(v))
	}

	ratio := 0.0
	if v, ok := explicit.Get("aspect_ratio"); ok {
		ratio = ParseAspectRatio(v)
	}
	if ratio == 0 {
		ratio = naturalAspectRatio(naturalWidth, naturalHeight)
	}

	switch {
	case width != 0 && height != 0:
		return width, height
	case width != 0:
		return width, dimension(math.Round(float64(width) / ratio))
	case height != 0:
		return dimension(math.Round(float64(height) * ratio)), height
	default:
		return 0, 0
	}
}

// ParseAspectRatio reads "16:9", "1.5" or a number. Unparseable or
// non-positive ratios yield 0.
func ParseAspectRatio(v any) float64 {
	s, ok := v.(string)
	if !ok {
		if f := toNumber(v); isPositiveFinite(f) {
			return f
		}
		return 0
	}

	s = strings.TrimSpace(s)
	if w, h, found := strings.Cut(s, ":"); found {
		fw, err1 := strconv.ParseFloat(w, 64)
		fh, err2 := strconv.ParseFloat(h, 64)
		if err1 != nil || err2 != nil || !isPositiveFinite(fw) || !isPositiveFinite(fh) {
			return 0
		}
		return fw / fh
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || !isPositiveFinite(f) {
		return 0
	}
	return f
}

// dimension truncates a side length toward zero. Values outside
// (0, math.MaxInt32] leave the side unconstrained and yield 0.
func dimension(f float64) int {
	if math.IsNaN(f) || f < 1 || f > math.MaxInt32 {
		return 0
	}
	return int(f)
}

func isPositiveFinite(f float64) bool {
	return f > 0 && !math.IsInf(f, 1)
}

func naturalAspectRatio(width, height int) float64 {
	if width == 0 || height == 0 {
		return 1
	}
	return float64(width) / float64(height)
}
