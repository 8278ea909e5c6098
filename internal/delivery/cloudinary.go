package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/af-corp/media-delivery/internal/asset"
	"github.com/af-corp/media-delivery/internal/config"
	"github.com/af-corp/media-delivery/internal/transform"
	"github.com/af-corp/media-delivery/internal/types"
)

// CloudinaryProvider builds res.cloudinary.com style delivery URLs:
//
//	upload_url/cloud_name/kind/delivery_type/[slug/]path
type CloudinaryProvider struct {
	cfg      *config.CloudinaryConfig
	builder  *transform.Builder
	resolver asset.Resolver
	logger   *slog.Logger
}

func NewCloudinaryProvider(cfg *config.CloudinaryConfig, opts Options) *CloudinaryProvider {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	builderOpts := []transform.BuilderOption{transform.WithEncodedSeparator(cfg.EncodeSeparator)}
	if opts.Metrics != nil {
		builderOpts = append(builderOpts, transform.WithUnknownParamHook(opts.Metrics.RecordUnknownParam))
	}

	return &CloudinaryProvider{
		cfg:      cfg,
		builder:  transform.NewBuilder(logger, builderOpts...),
		resolver: opts.Resolver,
		logger:   logger,
	}
}

func (p *CloudinaryProvider) Name() string {
	return "cloudinary"
}

// BaseURL returns the delivery prefix for assets of the given kind.
func (p *CloudinaryProvider) BaseURL(kind types.Kind) string {
	return ensureSuffix(p.cfg.UploadURL, "/") +
		ensureSuffix(p.cfg.CloudName, "/") +
		kind.String() + "/" +
		p.cfg.DeliveryType + "/"
}

func (p *CloudinaryProvider) URL(ctx context.Context, a *asset.Asset, params *transform.Params) (string, error) {
	kind := asset.Classify(a)
	path, err := p.NormalizePath(ctx, sourcePath(a))
	if err != nil {
		return "", err
	}

	meta, err := transform.ResolveFocus(a)
	if err != nil {
		p.logger.Debug("ignoring focus metadata", "asset", a.ID, "error", err)
	}

	slug := p.builder.Build(kind, transform.Normalize(params), meta, p.cfg.DefaultTransformations)
	if slug != "" {
		path = slug + "/" + path
	}
	return p.BaseURL(kind) + path, nil
}

func (p *CloudinaryProvider) KenBurnsURL(ctx context.Context, a *asset.Asset) (string, error) {
	path, err := p.NormalizePath(ctx, sourcePath(a))
	if err != nil {
		return "", err
	}
	return p.BaseURL(asset.Classify(a)) + transform.KenBurnsSlug + "/" + transform.KenBurnsPath(path), nil
}

// NormalizePath turns an asset URL or ID into the public ID Cloudinary
// expects. IDs are resolved to their URL first; then one leading slash is
// removed and the auto-mapping folder is prepended unless already present.
func (p *CloudinaryProvider) NormalizePath(ctx context.Context, raw string) (string, error) {
	if asset.IsID(raw) {
		if p.resolver == nil {
			return "", fmt.Errorf("normalize %s: no asset resolver configured", raw)
		}
		a, err := p.resolver.Resolve(ctx, raw)
		if err != nil {
			return "", fmt.Errorf("normalize %s: %w", raw, err)
		}
		if a.URL == "" {
			return "", fmt.Errorf("normalize %s: %w", raw, errors.New("asset has no url"))
		}
		raw = a.URL
	}
	return ensurePrefix(strings.TrimPrefix(raw, "/"), p.cfg.AutoMappingFolder), nil
}

func sourcePath(a *asset.Asset) string {
	if a.URL != "" {
		return a.URL
	}
	return a.ID
}

func ensureSuffix(s, suffix string) string {
	if strings.HasSuffix(s, suffix) {
		return s
	}
	return s + suffix
}

func ensurePrefix(s, prefix string) string {
	if prefix == "" || strings.HasPrefix(s, prefix) {
		return s
	}
	return prefix + s
}
