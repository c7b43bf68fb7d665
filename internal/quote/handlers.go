package quote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-grosir/internal/common"
	"github.com/noah-isme/backend-grosir/internal/obs"
	"github.com/noah-isme/backend-grosir/internal/pricing"
)

const defaultMaxBodyBytes = 64 << 10

// SnapshotProvider hands out catalog snapshots per pricing zone.
type SnapshotProvider interface {
	Snapshot(ctx context.Context, zone string) (pricing.Catalog, error)
}

// Handler exposes the quote endpoint.
type Handler struct {
	snapshots    SnapshotProvider
	validate     *validator.Validate
	logger       zerolog.Logger
	defaultZone  string
	maxBodyBytes int64
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Snapshots    SnapshotProvider
	Validate     *validator.Validate
	Logger       zerolog.Logger
	DefaultZone  string
	MaxBodyBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	validate := cfg.Validate
	if validate == nil {
		validate = validator.New()
	}
	return &Handler{
		snapshots:    cfg.Snapshots,
		validate:     validate,
		logger:       cfg.Logger,
		defaultZone:  cfg.DefaultZone,
		maxBodyBytes: maxBody,
	}
}

type quoteLine struct {
	ProductID string `json:"productId" validate:"required"`
	CaseQty   int64  `json:"caseQty" validate:"min=0"`
	PieceQty  int64  `json:"pieceQty" validate:"min=0"`
}

type quoteRequest struct {
	StoreType     string      `json:"storeType" validate:"required,oneof=grosir retail"`
	Zone          string      `json:"zone"`
	Region        string      `json:"region"`
	Depot         string      `json:"depot"`
	PaymentMethod string      `json:"paymentMethod"`
	LoyaltyClass  string      `json:"loyaltyClass"`
	Date          string      `json:"date"`
	Lines         []quoteLine `json:"lines" validate:"required,min=1,dive"`
}

type quoteResponse struct {
	QuoteID         string         `json:"quoteId"`
	SnapshotVersion string         `json:"snapshotVersion"`
	Result          pricing.Result `json:"result"`
}

// Create handles POST /api/v1/quotes: price one cart against the current
// catalog snapshot for the caller's zone.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.snapshots == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quote handler not configured", nil)
		return
	}
	start := time.Now()

	var req quoteRequest
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			common.JSONError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "request body too large", nil)
			return
		}
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON payload", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.recordOutcome("invalid", start)
		common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", "invalid quote request", validationDetails(err))
		return
	}

	date := time.Now().UTC()
	if strings.TrimSpace(req.Date) != "" {
		parsed, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			h.recordOutcome("invalid", start)
			common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", "date must be RFC 3339", nil)
			return
		}
		date = parsed.UTC()
	}

	zone := strings.TrimSpace(req.Zone)
	if zone == "" {
		zone = h.defaultZone
	}
	ctx := pricing.Context{
		StoreType:     req.StoreType,
		Geo:           pricing.Geography{Zone: zone, Region: req.Region, Depot: req.Depot},
		PaymentMethod: req.PaymentMethod,
		LoyaltyClass:  req.LoyaltyClass,
		Date:          date,
	}
	cart := pricing.Cart{Lines: make([]pricing.CartLine, 0, len(req.Lines))}
	for _, line := range req.Lines {
		cart.Lines = append(cart.Lines, pricing.CartLine{
			ProductID: line.ProductID,
			CaseQty:   line.CaseQty,
			PieceQty:  line.PieceQty,
		})
	}

	cat, err := h.snapshots.Snapshot(r.Context(), zone)
	if err != nil {
		h.logger.Error().Err(err).Str("zone", zone).Msg("catalog snapshot unavailable")
		h.recordOutcome("snapshot_error", start)
		common.JSONError(w, http.StatusServiceUnavailable, "CATALOG_UNAVAILABLE", "catalog snapshot unavailable", nil)
		return
	}

	result, err := pricing.Price(cart, cat, ctx)
	if err != nil {
		h.logger.Error().Err(err).Str("zone", zone).Msg("pricing failed")
		h.recordOutcome("error", start)
		common.JSONError(w, http.StatusInternalServerError, "PRICING_FAILED", "could not price cart", nil)
		return
	}

	h.recordOutcome("ok", start)
	common.JSON(w, http.StatusOK, map[string]any{"data": quoteResponse{
		QuoteID:         uuid.NewString(),
		SnapshotVersion: cat.Version,
		Result:          result,
	}})
}

func (h *Handler) recordOutcome(result string, start time.Time) {
	if obs.QuoteTotal != nil {
		obs.QuoteTotal.WithLabelValues(result).Inc()
	}
	if obs.QuoteDuration != nil {
		obs.QuoteDuration.WithLabelValues(result).Observe(float64(time.Since(start).Milliseconds()))
	}
}

func validationDetails(err error) any {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make([]map[string]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, map[string]string{
			"field": fe.Field(),
			"rule":  fe.Tag(),
		})
	}
	return map[string]any{"fields": fields}
}
