package asset

import (
	"path"
	"strings"
)

// Asset is a media asset record as returned by the lookup sources. The
// delivery pipeline only reads it.
type Asset struct {
	ID        string `json:"id" yaml:"id"`
	Container string `json:"container" yaml:"container"`
	Path      string `json:"path" yaml:"path"`
	URL       string `json:"url" yaml:"url"`
	MimeType  string `json:"mime_type,omitempty" yaml:"mime_type"`
	Width     int    `json:"width,omitempty" yaml:"width"`
	Height    int    `json:"height,omitempty" yaml:"height"`
	Focus     string `json:"focus,omitempty" yaml:"focus"`
}

// IDSeparator separates the container handle from the path in an asset ID.
const IDSeparator = "::"

// IsID reports whether ref is an asset ID ("container::path") rather than a URL.
func IsID(ref string) bool {
	return strings.Contains(ref, IDSeparator)
}

// Extension returns the lower-case file extension without the dot.
func (a *Asset) Extension() string {
	name := a.Path
	if name == "" {
		name = a.URL
	}
	return strings.TrimPrefix(strings.ToLower(path.Ext(name)), ".")
}

func (a *Asset) FocusDescriptor() string {
	return a.Focus
}

func (a *Asset) NaturalSize() (width, height int) {
	return a.Width, a.Height
}

// normalize fills in the derivable identifiers of a manifest or database row.
// A missing URL defaults to /<container>/<path>.
func (a *Asset) normalize() {
	if a.ID == "" && a.Container != "" && a.Path != "" {
		a.ID = a.Container + IDSeparator + a.Path
	}
	if a.Container == "" || a.Path == "" {
		if container, p, ok := strings.Cut(a.ID, IDSeparator); ok {
			if a.Container == "" {
				a.Container = container
			}
			if a.Path == "" {
				a.Path = p
			}
		}
	}
	if a.URL == "" && a.Container != "" && a.Path != "" {
		a.URL = "/" + a.Container + "/" + strings.TrimPrefix(a.Path, "/")
	}
	if a.URL != "" && !strings.HasPrefix(a.URL, "/") {
		a.URL = "/" + a.URL
	}
}
