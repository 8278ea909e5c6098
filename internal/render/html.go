package render

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/af-corp/media-delivery/internal/transform"
)

// componentSkip lists attributes that steer the render and never reach the markup.
var componentSkip = map[string]struct{}{
	"src": {}, "id": {}, "path": {}, "tag": {},
	"url": {}, "width": {}, "height": {},
}

// friendlyKeys are the tag shorthands Normalize rewrites into codes.
var friendlyKeys = map[string]struct{}{
	"fit": {}, "square": {}, "format": {},
}

// ImageTag returns a self-closing <img> element. Zero dimensions are omitted.
func ImageTag(url, alt string, width, height int) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<img src="%s" alt="%s"`, html.EscapeString(url), html.EscapeString(alt))
	if width > 0 {
		fmt.Fprintf(&b, ` width="%d"`, width)
	}
	if height > 0 {
		fmt.Fprintf(&b, ` height="%d"`, height)
	}
	b.WriteString(" />")
	return b.String()
}

// Component is the rendered image component: the caller's attributes merged
// with the computed url, width and height.
type Component struct {
	Attributes *transform.Params `json:"attributes"`
	HTML       string            `json:"html"`
}

// Component renders the image component. It requires a src attribute; a
// missing src yields an empty component and ErrMissingSource.
func (r *Renderer) Component(ctx context.Context, req Request) (Component, error) {
	start := time.Now()
	comp, err := r.component(ctx, req)
	r.finish("component", start, err)
	return comp, err
}

func (r *Renderer) component(ctx context.Context, req Request) (Component, error) {
	src := req.Params.String("src")
	if src == "" {
		return Component{}, r.missingSource(req)
	}
	out, err := r.render(ctx, req, src)
	if err != nil {
		return Component{}, err
	}

	attrs := req.Params.Clone()
	attrs.Merge(transform.NewParams(
		"url", out.URL,
		"width", out.Width,
		"height", out.Height,
	))
	return Component{Attributes: attrs, HTML: componentHTML(attrs)}, nil
}

func componentHTML(attrs *transform.Params) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<img src="%s"`, html.EscapeString(attrs.String("url")))
	for _, key := range []string{"width", "height"} {
		if v := attrs.String(key); v != "" && v != "0" {
			fmt.Fprintf(&b, ` %s="%s"`, key, html.EscapeString(v))
		}
	}
	for _, key := range attrs.Keys() {
		if _, skip := componentSkip[key]; skip {
			continue
		}
		// Transformation parameters feed the URL, not the element.
		if _, ok := transform.LookupCode(key); ok {
			continue
		}
		if _, ok := friendlyKeys[key]; ok {
			continue
		}
		fmt.Fprintf(&b, ` %s="%s"`, html.EscapeString(key), html.EscapeString(attrs.String(key)))
	}
	if !attrs.Has("alt") {
		b.WriteString(` alt=""`)
	}
	b.WriteString(" />")
	return b.String()
}
