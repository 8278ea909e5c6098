package transform

import "testing"

func TestFinalDimensions(t *testing.T) {
	tests := []struct {
		name         string
		params       *Params
		natW, natH   int
		wantW, wantH int
	}{
		{"width only uses natural ratio", NewParams("width", 300), 1200, 600, 300, 150},
		{"height only uses natural ratio", NewParams("height", 150), 1200, 600, 300, 150},
		{"both verbatim", NewParams("width", 300, "height", 300), 1200, 600, 300, 300},
		{"none", NewParams(), 1200, 600, 0, 0},
		{"nil params", nil, 1200, 600, 0, 0},
		{"explicit ratio", NewParams("width", 320, "aspect_ratio", "16:9"), 1000, 1000, 320, 180},
		{"square ratio", NewParams("width", 200, "aspect_ratio", "1:1"), 1200, 600, 200, 200},
		{"decimal ratio", NewParams("height", 100, "aspect_ratio", "1.5"), 0, 0, 150, 100},
		{"zero ratio falls back", NewParams("width", 300, "aspect_ratio", "0"), 1200, 600, 300, 150},
		{"missing natural size", NewParams("width", 300), 0, 600, 300, 300},
		{"string width", NewParams("width", "300"), 1200, 600, 300, 150},
		{"rounds", NewParams("width", 100), 300, 200, 100, 67},
		{"oversized width is unconstrained", NewParams("width", "99999999999999999999"), 1200, 600, 0, 0},
		{"negative height is unconstrained", NewParams("height", "-300"), 1200, 600, 0, 0},
		{"negative width with height", NewParams("width", -10, "height", 150), 1200, 600, 300, 150},
		{"max int32 width", NewParams("width", 2147483647, "height", 1), 1200, 600, 2147483647, 1},
		{"just past max int32", NewParams("width", 2147483648.0), 1200, 600, 0, 0},
		{"derived side out of range", NewParams("width", 2000000000, "aspect_ratio", "1:1000"), 1200, 600, 2000000000, 0},
		{"infinite width", NewParams("width", "Inf"), 1200, 600, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := FinalDimensions(tt.params, tt.natW, tt.natH)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("FinalDimensions = (%d, %d), want (%d, %d)", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestParseAspectRatio(t *testing.T) {
	tests := []struct {
		in   any
		want float64
	}{
		{"16:9", 16.0 / 9.0},
		{"1:1", 1},
		{"2", 2},
		{2.5, 2.5},
		{"4:0", 0},
		{"abc", 0},
		{-1, 0},
		{"NaN", 0},
		{"Inf", 0},
		{"Inf:1", 0},
		{"1:NaN", 0},
	}
	for _, tt := range tests {
		if got := ParseAspectRatio(tt.in); got != tt.want {
			t.Errorf("ParseAspectRatio(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
