// Package render implements the template-facing surface of the delivery
// service: the single URL tag, the generate pair that exposes url, width and
// height for one or many assets, the Ken Burns variant and the image
// component.
//
// Every entry point logs its own failures exactly once. Callers receive an
// empty result together with the error and decide how to degrade.
package render

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/af-corp/media-delivery/internal/asset"
	"github.com/af-corp/media-delivery/internal/delivery"
	"github.com/af-corp/media-delivery/internal/telemetry"
	"github.com/af-corp/media-delivery/internal/transform"
)

// ErrMissingSource is returned when a render names no asset at all.
var ErrMissingSource = errors.New("no asset source given")

// sourceKeys are the tag arguments that may name the asset, in priority order.
var sourceKeys = []string{"src", "id", "path"}

// Request is one tag or component invocation.
type Request struct {
	// Params holds the raw tag arguments, reserved keys included.
	Params *transform.Params
	// Field and Page identify where the tag sits, for diagnostics only.
	Field string
	Page  string
}

// Source returns the first non-empty src, id or path argument.
func (r Request) Source() string {
	for _, key := range sourceKeys {
		if v := r.Params.String(key); v != "" {
			return v
		}
	}
	return ""
}

// Output is a rendered asset: its URL, final dimensions and, for tag
// renders, the markup.
type Output struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	HTML   string `json:"html,omitempty"`
}

// Renderer resolves assets and delegates URL construction to the current provider.
type Renderer struct {
	resolver asset.Resolver
	provider func() delivery.URLProvider
	logger   *slog.Logger
	metrics  *telemetry.Metrics
}

func NewRenderer(resolver asset.Resolver, provider func() delivery.URLProvider, logger *slog.Logger, metrics *telemetry.Metrics) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		resolver: resolver,
		provider: provider,
		logger:   logger,
		metrics:  metrics,
	}
}

// Tag renders a single asset. With tag=true the output carries an <img>
// element as well as the URL.
func (r *Renderer) Tag(ctx context.Context, req Request) (Output, error) {
	start := time.Now()
	out, err := r.render(ctx, req, req.Source())
	if err == nil && !transform.IsEmpty(valueOf(req.Params, "tag")) {
		out.HTML = ImageTag(out.URL, req.Params.String("alt"), out.Width, out.Height)
	}
	r.finish("single", start, err)
	return out, err
}

// Generate renders every ref, or the request's own source when refs is
// empty. Unresolvable refs are logged and left out of the result.
func (r *Renderer) Generate(ctx context.Context, req Request, refs []string) ([]Output, error) {
	start := time.Now()
	if len(refs) == 0 {
		if src := req.Source(); src != "" {
			refs = []string{src}
		}
	}
	if len(refs) == 0 {
		err := r.missingSource(req)
		r.finish("generate", start, err)
		return nil, err
	}

	outputs := make([]Output, 0, len(refs))
	var firstErr error
	for _, ref := range refs {
		out, err := r.render(ctx, req, ref)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		outputs = append(outputs, out)
	}

	// A partial batch is still a successful render.
	if len(outputs) > 0 {
		firstErr = nil
	}
	r.finish("generate", start, firstErr)
	return outputs, firstErr
}

// KenBurns renders the zoom-and-pan video rendition of the request's asset.
func (r *Renderer) KenBurns(ctx context.Context, req Request) (Output, error) {
	start := time.Now()
	out, err := r.kenBurns(ctx, req)
	r.finish("kenburns", start, err)
	return out, err
}

func (r *Renderer) kenBurns(ctx context.Context, req Request) (Output, error) {
	ref := req.Source()
	if ref == "" {
		return Output{}, r.missingSource(req)
	}
	a, err := r.resolve(ctx, req, ref)
	if err != nil {
		return Output{}, err
	}

	provider := r.provider()
	url, err := provider.KenBurnsURL(ctx, a)
	if err != nil {
		r.logger.Error("failed to build ken burns url", "asset", ref, "provider", provider.Name(), "error", err)
		return Output{}, err
	}
	r.recordURL(provider.Name(), a, "kenburns")
	return Output{URL: url}, nil
}

func (r *Renderer) render(ctx context.Context, req Request, ref string) (Output, error) {
	if ref == "" {
		return Output{}, r.missingSource(req)
	}
	a, err := r.resolve(ctx, req, ref)
	if err != nil {
		return Output{}, err
	}

	provider := r.provider()
	url, err := provider.URL(ctx, a, req.Params)
	if err != nil {
		r.logger.Error("failed to build delivery url", "asset", ref, "provider", provider.Name(), "error", err)
		return Output{}, err
	}
	r.recordURL(provider.Name(), a, "standard")

	width, height := delivery.Dimensions(a, req.Params)
	return Output{URL: url, Width: width, Height: height}, nil
}

func (r *Renderer) resolve(ctx context.Context, req Request, ref string) (*asset.Asset, error) {
	a, err := r.resolver.Resolve(ctx, ref)
	if err != nil {
		if errors.Is(err, asset.ErrNotFound) {
			r.logger.Error(err.Error(), "asset", ref, "field", req.Field, "page", req.Page)
		} else {
			r.logger.Error("asset lookup failed", "asset", ref, "error", err)
		}
		return nil, err
	}
	return a, nil
}

func (r *Renderer) missingSource(req Request) error {
	r.logger.Error("cloudinary tag rendered without an asset source",
		"field", req.Field,
		"page", req.Page,
	)
	return ErrMissingSource
}

func (r *Renderer) recordURL(provider string, a *asset.Asset, variant string) {
	if r.metrics != nil {
		r.metrics.RecordURL(provider, asset.Classify(a).String(), variant)
	}
}

func (r *Renderer) finish(mode string, start time.Time, err error) {
	if r.metrics == nil {
		return
	}
	status := "ok"
	switch {
	case errors.Is(err, ErrMissingSource):
		status = "missing_source"
	case errors.Is(err, asset.ErrNotFound):
		status = "not_found"
	case errors.Is(err, asset.ErrSourceUnavailable):
		status = "unavailable"
	case err != nil:
		status = "error"
	}
	r.metrics.RecordRender(telemetry.RenderLabels{
		Mode:           mode,
		Status:         status,
		DurationMicros: float64(time.Since(start).Microseconds()),
	})
}

func valueOf(p *transform.Params, key string) any {
	v, _ := p.Get(key)
	return v
}
