package delivery

import (
	"context"
	"net/url"
	"strings"

	"github.com/af-corp/media-delivery/internal/asset"
	"github.com/af-corp/media-delivery/internal/transform"
)

// glideKeys maps tag arguments onto the generic resizer's query keys.
var glideKeys = map[string]string{
	"width":        "w",
	"height":       "h",
	"fit":          "fit",
	"quality":      "q",
	"format":       "fm",
	"fetch_format": "fm",
	"dpr":          "dpr",
	"angle":        "or",
	"background":   "bg",
}

// FallbackProvider points at the in-house resizing endpoint. It is used when
// no Cloudinary account is configured so pages still get usable images.
type FallbackProvider struct {
	baseURL string
}

func NewFallbackProvider(baseURL string) *FallbackProvider {
	if baseURL == "" {
		baseURL = "/img"
	}
	return &FallbackProvider{baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (p *FallbackProvider) Name() string {
	return "fallback"
}

func (p *FallbackProvider) URL(_ context.Context, a *asset.Asset, params *transform.Params) (string, error) {
	u := p.baseURL + "/" + strings.TrimPrefix(a.URL, "/")
	if q := glideQuery(params); len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u, nil
}

// KenBurnsURL has no video rendition to offer and returns the original asset.
func (p *FallbackProvider) KenBurnsURL(_ context.Context, a *asset.Asset) (string, error) {
	return p.baseURL + "/" + strings.TrimPrefix(a.URL, "/"), nil
}

func glideQuery(params *transform.Params) url.Values {
	q := url.Values{}
	for _, key := range params.Keys() {
		v, _ := params.Get(key)
		value := transform.FormatValue(v)
		if value == "" || value == "auto" {
			continue
		}
		if key == "square" {
			q.Set("w", value)
			q.Set("h", value)
			continue
		}
		if gk, ok := glideKeys[key]; ok {
			q.Set(gk, value)
		}
	}
	return q
}
