package transform

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/af-corp/media-delivery/internal/types"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func imageDefaults() Defaults {
	return Defaults{
		types.KindImage: NewParams("crop", "fill", "dpr", "auto", "fetch_format", "auto", "gravity", "auto", "quality", "auto"),
		types.KindVideo: NewParams("crop", "fill", "dpr", "auto", "fetch_format", "auto", "quality", "auto"),
	}
}

func TestBuild_DefaultsAndExplicit(t *testing.T) {
	b := NewBuilder(discardLogger())
	got := b.Build(types.KindImage, NewParams("width", 300), nil, imageDefaults())

	want := "c_fill,dpr_auto,g_auto,w_300/q_auto/f_auto"
	if got != want {
		t.Errorf("Build = %q, want %q", got, want)
	}
}

func TestBuild_Precedence(t *testing.T) {
	b := NewBuilder(discardLogger())
	defaults := Defaults{types.KindImage: NewParams("crop", "fit")}
	meta := NewParams("x", 500, "y", 250, "zoom", 2.0, "gravity", "xy_center")
	explicit := NewParams("crop", "fill", "gravity", "face")

	got := b.Build(types.KindImage, explicit, meta, defaults)
	want := "c_fill,x_500,y_250,z_2,g_face"
	if got != want {
		t.Errorf("Build = %q, want %q", got, want)
	}
}

func TestBuild_DropsGravityUnderFit(t *testing.T) {
	b := NewBuilder(discardLogger())
	meta := NewParams("x", 10, "y", 20, "zoom", 1.0, "gravity", "xy_center")

	got := b.Build(types.KindImage, NewParams("crop", "fit"), meta, nil)
	if strings.Contains(got, "g_") {
		t.Errorf("gravity should be dropped under crop=fit, got %q", got)
	}
	if got != "x_10,y_20,z_1,c_fit" {
		t.Errorf("unexpected slug %q", got)
	}
}

func TestBuild_QualityAndFormatTrail(t *testing.T) {
	b := NewBuilder(discardLogger())
	explicit := NewParams("fetch_format", "webp", "quality", 80, "width", 200, "angle", 90)

	got := b.Build(types.KindImage, explicit, nil, nil)
	want := "w_200,a_90/q_80/f_webp"
	if got != want {
		t.Errorf("Build = %q, want %q", got, want)
	}
}

func TestBuild_OnlyTrailingSegments(t *testing.T) {
	b := NewBuilder(discardLogger())
	got := b.Build(types.KindImage, NewParams("quality", "auto", "fetch_format", "auto"), nil, nil)
	if got != "q_auto/f_auto" {
		t.Errorf("Build = %q, want %q", got, "q_auto/f_auto")
	}
}

func TestBuild_Progressive(t *testing.T) {
	b := NewBuilder(discardLogger())

	tests := []struct {
		value any
		want  string
	}{
		{true, "fl_progressive"},
		{5, "fl_progressive:5"},
		{"semi", "fl_progressive:semi"},
		{false, ""},
	}
	for _, tt := range tests {
		got := b.Build(types.KindImage, NewParams("progressive", tt.value), nil, nil)
		if got != tt.want {
			t.Errorf("progressive=%v: Build = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestBuild_SkipsEmptyDimensions(t *testing.T) {
	b := NewBuilder(discardLogger())
	for _, v := range []any{0, "", nil, "0", false} {
		got := b.Build(types.KindImage, NewParams("width", v, "height", v, "crop", "fill"), nil, nil)
		if got != "c_fill" {
			t.Errorf("width/height=%#v: Build = %q, want c_fill", v, got)
		}
	}
}

func TestBuild_UnknownParamWarns(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	var dropped []string
	b := NewBuilder(logger, WithUnknownParamHook(func(p string) { dropped = append(dropped, p) }))

	got := b.Build(types.KindImage, NewParams("width", 100, "sparkle", "yes", "height", 50), nil, nil)
	if got != "w_100,h_50" {
		t.Errorf("Build = %q, want w_100,h_50", got)
	}
	if len(dropped) != 1 || dropped[0] != "sparkle" {
		t.Errorf("expected one dropped param, got %v", dropped)
	}
	if n := strings.Count(buf.String(), "unknown cloudinary parameter"); n != 1 {
		t.Errorf("expected exactly one warning, got %d: %s", n, buf.String())
	}
}

func TestBuild_ReservedKeysNeverEmitted(t *testing.T) {
	b := NewBuilder(discardLogger())
	raw := NewParams("src", "/a.jpg", "id", "x::a.jpg", "path", "a.jpg", "tag", true, "alt", "hi", "width", 10)

	got := b.Build(types.KindImage, Normalize(raw), nil, nil)
	if got != "w_10" {
		t.Errorf("Build = %q, want w_10", got)
	}
}

func TestBuild_Empty(t *testing.T) {
	b := NewBuilder(discardLogger())
	if got := b.Build(types.KindImage, &Params{}, &Params{}, nil); got != "" {
		t.Errorf("expected empty slug, got %q", got)
	}
	if got := b.Build(types.KindRaw, nil, nil, imageDefaults()); got != "" {
		t.Errorf("raw assets have no defaults, expected empty slug, got %q", got)
	}
}

func TestBuild_DefaultSeparatorIsComma(t *testing.T) {
	for _, b := range []*Builder{NewBuilder(discardLogger()), NewBuilder(discardLogger(), WithEncodedSeparator(false))} {
		got := b.Build(types.KindImage, NewParams("width", 10, "height", 20), nil, nil)
		if got != "w_10,h_20" {
			t.Errorf("Build = %q, want w_10,h_20", got)
		}
	}
}

func TestBuild_EncodedSeparator(t *testing.T) {
	b := NewBuilder(discardLogger(), WithEncodedSeparator(true))
	got := b.Build(types.KindImage, NewParams("width", 10, "height", 20), nil, nil)
	if got != "w_10%2Ch_20" {
		t.Errorf("Build = %q, want w_10%%2Ch_20", got)
	}
}

func TestBuild_DoesNotMutateInputs(t *testing.T) {
	b := NewBuilder(discardLogger())
	defaults := imageDefaults()
	explicit := NewParams("crop", "fit")

	b.Build(types.KindImage, explicit, nil, defaults)

	if !defaults[types.KindImage].Has("gravity") || !defaults[types.KindImage].Has("quality") {
		t.Error("defaults were mutated")
	}
	if explicit.Len() != 1 {
		t.Error("explicit params were mutated")
	}
}

func TestKenBurnsPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"assets/photo.jpg", "assets/photo.mp4"},
		{"assets/photo.JPEG", "assets/photo.mp4"},
		{"assets/photo.png", "assets/photo.mp4"},
		{"assets/photo.gif", "assets/photo.gif"},
		{"assets/jpg.folder/photo.webp", "assets/jpg.folder/photo.webp"},
	}
	for _, tt := range tests {
		if got := KenBurnsPath(tt.in); got != tt.want {
			t.Errorf("KenBurnsPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
