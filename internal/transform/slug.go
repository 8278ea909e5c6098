package transform

import (
	"log/slog"
	"strings"

	"github.com/af-corp/media-delivery/internal/types"
)

const (
	separator        = ","
	encodedSeparator = "%2C"
)

// Defaults holds the default transformation set for each asset kind.
type Defaults map[types.Kind]*Params

// For returns the defaults configured for kind, or nil.
func (d Defaults) For(kind types.Kind) *Params {
	if d == nil {
		return nil
	}
	return d[kind]
}

// Builder compiles merged transformation parameters into a URL slug.
// A Builder holds no per-call state and is safe for concurrent use.
type Builder struct {
	logger    *slog.Logger
	separator string
	onUnknown func(param string)
}

type BuilderOption func(*Builder)

// WithEncodedSeparator joins segments with "%2C" instead of a bare comma.
func WithEncodedSeparator(encoded bool) BuilderOption {
	return func(b *Builder) {
		if encoded {
			b.separator = encodedSeparator
		} else {
			b.separator = separator
		}
	}
}

// WithUnknownParamHook registers a callback fired for every dropped parameter.
func WithUnknownParamHook(fn func(param string)) BuilderOption {
	return func(b *Builder) {
		b.onUnknown = fn
	}
}

func NewBuilder(logger *slog.Logger, opts ...BuilderOption) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Builder{logger: logger, separator: separator}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build merges defaults[kind], meta and explicit (later wins) and encodes the
// result. quality and fetch_format are emitted as their own trailing path
// segments, in that order. Unknown or invalid parameters are logged and
// skipped. An empty string means no transformation segment at all.
func (b *Builder) Build(kind types.Kind, explicit, meta *Params, defaults Defaults) string {
	merged := &Params{}
	merged.Merge(defaults.For(kind))
	merged.Merge(meta)
	merged.Merge(explicit)

	if merged.Len() == 0 {
		return ""
	}

	// Focal gravity means nothing once the image is fitted.
	if merged.Has("gravity") && merged.String("crop") == "fit" {
		merged.Delete("gravity")
	}

	var trailing []string
	for _, key := range []string{"quality", "fetch_format"} {
		v, ok := merged.Get(key)
		if !ok {
			continue
		}
		merged.Delete(key)
		if IsEmpty(v) {
			continue
		}
		trailing = append(trailing, codes[key]+"_"+FormatValue(v))
	}

	parts := make([]string, 0, merged.Len())
	for _, key := range merged.Keys() {
		v, _ := merged.Get(key)
		code, ok := LookupCode(key)
		if !ok {
			b.logger.Warn("unknown cloudinary parameter", "param", key, "kind", kind.String())
			if b.onUnknown != nil {
				b.onUnknown(key)
			}
			continue
		}
		if !validValue(code, v) {
			b.logger.Warn("invalid cloudinary parameter value", "param", key, "value", FormatValue(v), "kind", kind.String())
			continue
		}
		if seg := encodeSegment(key, code, v); seg != "" {
			parts = append(parts, seg)
		}
	}

	segments := make([]string, 0, 1+len(trailing))
	if len(parts) > 0 {
		segments = append(segments, strings.Join(parts, b.separator))
	}
	segments = append(segments, trailing...)
	return strings.Join(segments, "/")
}

func encodeSegment(key, code string, v any) string {
	if key == "progressive" {
		if flag, ok := v.(bool); ok && flag {
			return code
		}
		if IsEmpty(v) {
			return ""
		}
		return code + ":" + FormatValue(v)
	}
	return code + "_" + FormatValue(v)
}
