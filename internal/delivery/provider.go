package delivery

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/af-corp/media-delivery/internal/asset"
	"github.com/af-corp/media-delivery/internal/config"
	"github.com/af-corp/media-delivery/internal/telemetry"
	"github.com/af-corp/media-delivery/internal/transform"
)

// URLProvider builds delivery URLs for resolved assets.
type URLProvider interface {
	Name() string
	// URL returns the absolute delivery URL for a with the given raw tag arguments.
	URL(ctx context.Context, a *asset.Asset, params *transform.Params) (string, error)
	// KenBurnsURL returns the URL of the zoom-and-pan video rendition of a.
	KenBurnsURL(ctx context.Context, a *asset.Asset) (string, error)
}

// Options carries the collaborators shared by every provider.
type Options struct {
	Resolver    asset.Resolver
	FallbackURL string
	Logger      *slog.Logger
	Metrics     *telemetry.Metrics
}

// Select returns the Cloudinary provider when cfg is usable and the generic
// resizer otherwise.
func Select(cfg *config.CloudinaryConfig, opts Options) URLProvider {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if cfg.IsConfigured() {
		return NewCloudinaryProvider(cfg, opts)
	}
	return NewFallbackProvider(opts.FallbackURL)
}

// Dimensions returns the rendered width and height for a with the given raw
// tag arguments. It is the same for every provider.
func Dimensions(a *asset.Asset, params *transform.Params) (int, int) {
	width, height := a.NaturalSize()
	return transform.FinalDimensions(transform.Normalize(params), width, height)
}

type providerRef struct {
	URLProvider
}

// Switch holds the provider in use and lets a config reload replace it
// while requests are in flight.
type Switch struct {
	current atomic.Pointer[providerRef]
}

func NewSwitch(p URLProvider) *Switch {
	s := &Switch{}
	s.Store(p)
	return s
}

func (s *Switch) Store(p URLProvider) {
	s.current.Store(&providerRef{p})
}

// Load returns the current provider.
func (s *Switch) Load() URLProvider {
	return s.current.Load().URLProvider
}
