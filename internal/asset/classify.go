package asset

import (
	"strings"

	"github.com/af-corp/media-delivery/internal/types"
)

var (
	imageExtensions = set("jpg", "jpeg", "png", "gif", "webp", "svg", "bmp", "tif", "tiff", "avif", "heic", "psd")
	videoExtensions = set("h264", "mp4", "m4v", "ogv", "webm", "mov", "avi", "mkv", "wmv")
	audioExtensions = set("aac", "aiff", "flac", "m4a", "mp3", "ogg", "wav")
)

func set(items ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, item := range items {
		m[item] = struct{}{}
	}
	return m
}

// Classify returns the delivery kind of an asset: image, video (which covers
// audio) or raw. The MIME type decides when present, the extension otherwise.
func Classify(a *Asset) types.Kind {
	switch {
	case strings.HasPrefix(a.MimeType, "image/"):
		return types.KindImage
	case strings.HasPrefix(a.MimeType, "video/"), strings.HasPrefix(a.MimeType, "audio/"):
		return types.KindVideo
	case a.MimeType != "":
		return types.KindRaw
	}

	ext := a.Extension()
	if _, ok := imageExtensions[ext]; ok {
		return types.KindImage
	}
	if _, ok := videoExtensions[ext]; ok {
		return types.KindVideo
	}
	if _, ok := audioExtensions[ext]; ok {
		return types.KindVideo
	}
	return types.KindRaw
}
