package transform

import (
	"path"
	"strings"
)

// KenBurnsSlug is the fixed zoom-and-pan video effect applied to a still image.
const KenBurnsSlug = "q_auto,w_1920/e_zoompan:du_5;from_(g_auto;zoom_4);to_(g_auto;zoom_1.6)/e_boomerang/q_auto"

// KenBurnsPath rewrites a still-image extension to .mp4 so the provider
// delivers the effect as a video.
func KenBurnsPath(p string) string {
	ext := path.Ext(p)
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg", ".png":
		return strings.TrimSuffix(p, ext) + ".mp4"
	default:
		return p
	}
}
