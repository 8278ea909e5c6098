package delivery

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/af-corp/media-delivery/internal/asset"
	"github.com/af-corp/media-delivery/internal/config"
	"github.com/af-corp/media-delivery/internal/transform"
)

var (
	hero = &asset.Asset{
		ID: "assets::photos/hero.jpg", Container: "assets", Path: "photos/hero.jpg",
		URL: "/assets/photos/hero.jpg", Width: 1000, Height: 500, Focus: "50-50-2.0",
	}
	plain = &asset.Asset{
		ID: "assets::photos/plain.png", Container: "assets", Path: "photos/plain.png",
		URL: "/assets/photos/plain.png", Width: 1200, Height: 600,
	}
	clip = &asset.Asset{
		ID: "assets::clips/intro.mp4", Container: "assets", Path: "clips/intro.mp4",
		URL: "/assets/clips/intro.mp4",
	}
	brochure = &asset.Asset{
		ID: "assets::docs/brochure.pdf", Container: "assets", Path: "docs/brochure.pdf",
		URL: "/assets/docs/brochure.pdf",
	}
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testResolver() asset.Resolver {
	return asset.NewCachedStore(asset.NewStaticSource(*hero, *plain, *clip, *brochure), nil, 0, nil)
}

func newProvider(t *testing.T, mutate func(*config.CloudinaryConfig)) *CloudinaryProvider {
	t.Helper()
	cfg := config.DefaultCloudinaryConfig()
	cfg.CloudName = "demo"
	if mutate != nil {
		mutate(cfg)
	}
	return NewCloudinaryProvider(cfg, Options{Resolver: testResolver(), Logger: testLogger()})
}

func TestCloudinaryProvider_URL(t *testing.T) {
	p := newProvider(t, nil)

	got, err := p.URL(context.Background(), plain, transform.NewParams("width", 300))
	if err != nil {
		t.Fatalf("URL failed: %v", err)
	}
	want := "https://res.cloudinary.com/demo/image/upload/c_fill,dpr_auto,g_auto,w_300/q_auto/f_auto/assets/photos/plain.png"
	if got != want {
		t.Errorf("URL =\n  %s\nwant\n  %s", got, want)
	}
}

func TestCloudinaryProvider_URLWithFocus(t *testing.T) {
	p := newProvider(t, func(c *config.CloudinaryConfig) {
		c.DefaultTransformations = nil
	})

	got, err := p.URL(context.Background(), hero, transform.NewParams("src", hero.URL, "fit", "crop_focal", "square", 200))
	if err != nil {
		t.Fatalf("URL failed: %v", err)
	}
	want := "https://res.cloudinary.com/demo/image/upload/x_500,y_250,z_2,g_xy_center,c_fill,w_200,ar_1:1/assets/photos/hero.jpg"
	if got != want {
		t.Errorf("URL =\n  %s\nwant\n  %s", got, want)
	}
}

func TestCloudinaryProvider_FitDropsFocalGravity(t *testing.T) {
	p := newProvider(t, func(c *config.CloudinaryConfig) {
		c.DefaultTransformations = nil
	})

	got, err := p.URL(context.Background(), hero, transform.NewParams("fit", "contain"))
	if err != nil {
		t.Fatalf("URL failed: %v", err)
	}
	if strings.Contains(got, "g_") {
		t.Errorf("gravity should be dropped under crop=fit: %s", got)
	}
}

func TestCloudinaryProvider_NoTransformations(t *testing.T) {
	p := newProvider(t, func(c *config.CloudinaryConfig) {
		c.DefaultTransformations = nil
	})

	got, err := p.URL(context.Background(), plain, nil)
	if err != nil {
		t.Fatalf("URL failed: %v", err)
	}
	want := "https://res.cloudinary.com/demo/image/upload/assets/photos/plain.png"
	if got != want {
		t.Errorf("URL = %s, want %s", got, want)
	}
	if strings.Contains(got, "upload//") {
		t.Errorf("dangling slash in %s", got)
	}
}

func TestCloudinaryProvider_KindSegments(t *testing.T) {
	p := newProvider(t, func(c *config.CloudinaryConfig) {
		c.DefaultTransformations = nil
		c.DeliveryType = "private"
		c.UploadURL = "https://cdn.example.com"
	})

	tests := []struct {
		asset *asset.Asset
		want  string
	}{
		{plain, "https://cdn.example.com/demo/image/private/assets/photos/plain.png"},
		{clip, "https://cdn.example.com/demo/video/private/assets/clips/intro.mp4"},
		{brochure, "https://cdn.example.com/demo/raw/private/assets/docs/brochure.pdf"},
	}
	for _, tt := range tests {
		got, err := p.URL(context.Background(), tt.asset, nil)
		if err != nil {
			t.Fatalf("URL failed: %v", err)
		}
		if got != tt.want {
			t.Errorf("URL = %s, want %s", got, tt.want)
		}
	}
}

func TestCloudinaryProvider_VideoDefaults(t *testing.T) {
	p := newProvider(t, nil)

	got, err := p.URL(context.Background(), clip, transform.NewParams("format", "webm"))
	if err != nil {
		t.Fatalf("URL failed: %v", err)
	}
	want := "https://res.cloudinary.com/demo/video/upload/c_fill,dpr_auto/q_auto/f_webm/assets/clips/intro.mp4"
	if got != want {
		t.Errorf("URL = %s, want %s", got, want)
	}
}

func TestCloudinaryProvider_MalformedFocusIgnored(t *testing.T) {
	p := newProvider(t, func(c *config.CloudinaryConfig) {
		c.DefaultTransformations = nil
	})

	for _, focus := range []string{"nonsense", "NaN-50-1", "Inf-50-1"} {
		broken := *plain
		broken.Focus = focus

		got, err := p.URL(context.Background(), &broken, transform.NewParams("width", 100))
		if err != nil {
			t.Fatalf("focus %q: URL failed: %v", focus, err)
		}
		if !strings.HasSuffix(got, "/upload/w_100/assets/photos/plain.png") {
			t.Errorf("focus %q: unexpected URL %s", focus, got)
		}
	}
}

func TestCloudinaryProvider_KenBurnsURL(t *testing.T) {
	p := newProvider(t, nil)

	got, err := p.KenBurnsURL(context.Background(), hero)
	if err != nil {
		t.Fatalf("KenBurnsURL failed: %v", err)
	}
	want := "https://res.cloudinary.com/demo/image/upload/" + transform.KenBurnsSlug + "/assets/photos/hero.mp4"
	if got != want {
		t.Errorf("KenBurnsURL = %s, want %s", got, want)
	}
}

func TestCloudinaryProvider_NormalizePath(t *testing.T) {
	p := newProvider(t, func(c *config.CloudinaryConfig) {
		c.AutoMappingFolder = "site/"
	})
	ctx := context.Background()

	tests := []struct {
		raw, want string
	}{
		{"/assets/a.jpg", "site/assets/a.jpg"},
		{"assets/a.jpg", "site/assets/a.jpg"},
		{"site/assets/a.jpg", "site/assets/a.jpg"},
		{"assets::photos/hero.jpg", "site/assets/photos/hero.jpg"},
	}
	for _, tt := range tests {
		got, err := p.NormalizePath(ctx, tt.raw)
		if err != nil {
			t.Fatalf("NormalizePath(%q) failed: %v", tt.raw, err)
		}
		if got != tt.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}

	if _, err := p.NormalizePath(ctx, "assets::missing.jpg"); !errors.Is(err, asset.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCloudinaryProvider_URLFromIDOnly(t *testing.T) {
	p := newProvider(t, func(c *config.CloudinaryConfig) {
		c.DefaultTransformations = nil
	})
	idOnly := &asset.Asset{ID: "assets::photos/hero.jpg", Path: "photos/hero.jpg"}

	got, err := p.URL(context.Background(), idOnly, nil)
	if err != nil {
		t.Fatalf("URL failed: %v", err)
	}
	if got != "https://res.cloudinary.com/demo/image/upload/assets/photos/hero.jpg" {
		t.Errorf("unexpected URL %s", got)
	}
}
