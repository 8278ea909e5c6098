// Package server exposes the renderer over HTTP so non-Go templates and
// build pipelines can request delivery URLs.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/af-corp/media-delivery/internal/asset"
	"github.com/af-corp/media-delivery/internal/httputil"
	"github.com/af-corp/media-delivery/internal/render"
	"github.com/af-corp/media-delivery/internal/transform"
)

// Request headers that locate the tag in the calling page for diagnostics.
const (
	fieldHeader = "X-Render-Field"
	pageHeader  = "X-Render-Page"
)

// maxBodyBytes bounds generate and component payloads.
const maxBodyBytes = 1 << 20

// SourceState reports the asset source breaker: "closed", "open" or "half_open".
type SourceState interface {
	State() string
}

// Handler holds dependencies for the delivery HTTP handlers.
type Handler struct {
	renderer *render.Renderer
	logger   *slog.Logger
	version  string
	source   SourceState
}

// NewHandler builds the handlers. source may be nil when the asset source
// has no breaker.
func NewHandler(renderer *render.Renderer, logger *slog.Logger, version string, source SourceState) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{renderer: renderer, logger: logger, version: version, source: source}
}

// URL handles GET /v1/url. Query parameters are the tag arguments, in order.
func (h *Handler) URL(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")

	params, err := parseOrderedQuery(r.URL.RawQuery)
	if err != nil {
		httputil.WriteBadRequestError(w, reqID, "Invalid query: "+err.Error())
		return
	}

	out, err := h.renderer.Tag(r.Context(), h.renderRequest(r, params))
	if err != nil {
		h.writeRenderError(w, reqID, err)
		return
	}
	httputil.WriteJSON(w, reqID, http.StatusOK, out)
}

// KenBurns handles GET /v1/kenburns.
func (h *Handler) KenBurns(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")

	params, err := parseOrderedQuery(r.URL.RawQuery)
	if err != nil {
		httputil.WriteBadRequestError(w, reqID, "Invalid query: "+err.Error())
		return
	}

	out, err := h.renderer.KenBurns(r.Context(), h.renderRequest(r, params))
	if err != nil {
		h.writeRenderError(w, reqID, err)
		return
	}
	httputil.WriteJSON(w, reqID, http.StatusOK, out)
}

type generateRequest struct {
	Items  []string          `json:"items"`
	Params *transform.Params `json:"params"`
}

type generateResponse struct {
	Items []render.Output `json:"items"`
}

// Generate handles POST /v1/generate.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")

	var req generateRequest
	if !h.decodeBody(w, r, reqID, &req) {
		return
	}

	outputs, err := h.renderer.Generate(r.Context(), h.renderRequest(r, req.Params), req.Items)
	if err != nil {
		h.writeRenderError(w, reqID, err)
		return
	}
	httputil.WriteJSON(w, reqID, http.StatusOK, generateResponse{Items: outputs})
}

type componentRequest struct {
	Attributes *transform.Params `json:"attributes"`
}

// Component handles POST /v1/component.
func (h *Handler) Component(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")

	var req componentRequest
	if !h.decodeBody(w, r, reqID, &req) {
		return
	}

	comp, err := h.renderer.Component(r.Context(), h.renderRequest(r, req.Attributes))
	if err != nil {
		h.writeRenderError(w, reqID, err)
		return
	}
	httputil.WriteJSON(w, reqID, http.StatusOK, comp)
}

// Health handles GET /health. An open source breaker reports "degraded".
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{
		"status":  "healthy",
		"version": h.version,
	}
	if h.source != nil {
		state := h.source.State()
		body["asset_source"] = state
		if state != "closed" {
			body["status"] = "degraded"
		}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(body)
}

func (h *Handler) renderRequest(r *http.Request, params *transform.Params) render.Request {
	page := r.Header.Get(pageHeader)
	if page == "" {
		page = r.Referer()
	}
	return render.Request{
		Params: params,
		Field:  r.Header.Get(fieldHeader),
		Page:   page,
	}
}

func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, reqID string, v any) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		httputil.WriteBadRequestError(w, reqID, "Failed to read request body")
		return false
	}
	defer r.Body.Close()

	if err := json.Unmarshal(body, v); err != nil {
		httputil.WriteBadRequestError(w, reqID, "Invalid JSON: "+err.Error())
		return false
	}
	return true
}

// writeRenderError maps render failures onto responses. The renderer has
// already logged them.
func (h *Handler) writeRenderError(w http.ResponseWriter, reqID string, err error) {
	switch {
	case errors.Is(err, render.ErrMissingSource):
		httputil.WriteMissingSourceError(w, reqID, "One of src, id or path is required")
	case errors.Is(err, asset.ErrNotFound):
		httputil.WriteNotFoundError(w, reqID, err.Error())
	case errors.Is(err, asset.ErrSourceUnavailable):
		httputil.WriteServiceUnavailableError(w, reqID, "Asset source unavailable")
	default:
		httputil.WriteInternalError(w, reqID, "Failed to build delivery url")
	}
}

// parseOrderedQuery decodes a raw query string into tag arguments, keeping
// the order in which keys first appear. A repeated key keeps its last value.
func parseOrderedQuery(raw string) (*transform.Params, error) {
	params := transform.NewParams()
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(key)
		if err != nil {
			return nil, err
		}
		value, err = url.QueryUnescape(value)
		if err != nil {
			return nil, err
		}
		if key == "" {
			continue
		}
		params.Set(key, transform.ParseValue(value))
	}
	return params, nil
}
