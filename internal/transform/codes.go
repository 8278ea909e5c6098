package transform

// codes maps canonical parameter names to Cloudinary short codes.
// See https://cloudinary.com/documentation/transformation_reference
var codes = map[string]string{
	"angle":                "a",
	"aspect_ratio":         "ar",
	"background":           "b",
	"border":               "bo",
	"crop":                 "c",
	"color":                "co",
	"dpr":                  "dpr",
	"duration":             "du",
	"effect":               "e",
	"end_offset":           "eo",
	"flags":                "fl",
	"height":               "h",
	"overlay":              "l",
	"opacity":              "o",
	"quality":              "q",
	"radius":               "r",
	"start_offset":         "so",
	"named_transformation": "t",
	"underlay":             "u",
	"video_codec":          "vc",
	"width":                "w",
	"x":                    "x",
	"y":                    "y",
	"zoom":                 "z",
	"audio_codec":          "ac",
	"audio_frequency":      "af",
	"bit_rate":             "br",
	"color_space":          "cs",
	"default_image":        "d",
	"delay":                "dl",
	"density":              "dn",
	"fetch_format":         "f",
	"gravity":              "g",
	"prefix":               "p",
	"page":                 "pg",
	"video_sampling":       "vs",
	"progressive":          "fl_progressive",
}

// LookupCode returns the short code for a canonical parameter name.
func LookupCode(name string) (string, bool) {
	c, ok := codes[name]
	return c, ok
}

// validValue rejects empty widths and heights. Every other code accepts any value.
func validValue(code string, v any) bool {
	if (code == "w" || code == "h") && IsEmpty(v) {
		return false
	}
	return true
}
