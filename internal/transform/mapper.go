package transform

// Tag arguments that identify or describe the asset rather than transform it.
var reservedKeys = map[string]struct{}{
	"src":  {},
	"id":   {},
	"path": {},
	"tag":  {},
	"alt":  {},
}

// fitCrops translates friendly fit modes into Cloudinary crop modes.
var fitCrops = map[string]string{
	"crop_focal": "fill",
	"contain":    "fit",
	"max":        "limit",
	"stretch":    "scale",
}

// IsReserved reports whether key is asset metadata that never reaches a slug.
func IsReserved(key string) bool {
	_, ok := reservedKeys[key]
	return ok
}

// Normalize converts raw tag arguments into canonical transformation
// parameters. Keys are processed in order, so a later square overwrites an
// earlier width. Unrecognised fit values are dropped; all other keys pass
// through untouched and are validated when the slug is built.
func Normalize(raw *Params) *Params {
	out := &Params{}
	for _, key := range raw.Keys() {
		if IsReserved(key) {
			continue
		}
		value, _ := raw.Get(key)

		switch key {
		case "format":
			out.Set("fetch_format", value)
		case "square":
			out.Set("width", value)
			out.Set("aspect_ratio", "1:1")
		case "fit":
			if crop, ok := fitCrops[FormatValue(value)]; ok {
				out.Set("crop", crop)
			}
		default:
			out.Set(key, value)
		}
	}
	return out
}
