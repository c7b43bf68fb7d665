package catalog

import (
	"net/http"
	"strings"

	"github.com/noah-isme/backend-grosir/internal/common"
	"github.com/noah-isme/backend-grosir/internal/pricing"
)

// Handler exposes catalog administration endpoints.
type Handler struct {
	service     *Service
	defaultZone string
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service     *Service
	DefaultZone string
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{service: cfg.Service, defaultZone: cfg.DefaultZone}
}

// Refresh handles POST /api/v1/catalog/refresh. It forces a reload from the
// backing store and reports the new snapshot version.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	zone := h.zoneParam(r)
	cat, err := h.service.Refresh(r.Context(), zone)
	if err != nil {
		common.JSONAppError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{
		"zone":     zone,
		"version":  cat.Version,
		"products": len(cat.Products),
	}})
}

// Version handles GET /api/v1/catalog/version.
func (h *Handler) Version(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	zone := h.zoneParam(r)
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{
		"zone":    zone,
		"version": h.service.Version(zone),
	}})
}

func (h *Handler) zoneParam(r *http.Request) string {
	zone := strings.TrimSpace(r.URL.Query().Get("zone"))
	if zone == "" {
		zone = h.defaultZone
	}
	return pricing.NormalizeCode(zone)
}
