package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"rfidledger/m/domain"
	"rfidledger/m/internal/ledger"
	"rfidledger/m/internal/seed"
)

// Journal is the optional SQLite audit mirror. It keeps every unknown scan,
// including those already evicted from the quarantine.
type Journal interface {
	Ping(ctx context.Context) error
	Entries(ctx context.Context, limit int) ([]domain.LogEntry, error)
	UnknownCount(ctx context.Context, cardHex string) (int, error)
}

// ScanRecorder counts scan outcomes.
type ScanRecorder interface {
	ScanOutcome(kind ledger.Kind)
}

type Options struct {
	Catalog           seed.Catalog
	MissionID         string
	DefaultLocationID string
	AllowedOrigins    []string
	MaxBodyBytes      int64
	Logger            *zap.Logger
	Metrics           http.Handler
	Scans             ScanRecorder
	Journal           Journal
}

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	ledger *ledger.Ledger
	opts   Options
	log    *zap.Logger
}

// New constructs a Handler.
func New(l *ledger.Ledger, opts Options) *Handler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 64 << 10
	}
	return &Handler{ledger: l, opts: opts, log: opts.Logger}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(h.requestLogger)
	r.Use(h.recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))
	r.Use(preflight)

	r.Get("/health", h.health)
	if h.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.opts.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/config", h.getConfig)

		r.Get("/items", h.listItems)
		r.Get("/items/{id}", h.getItem)
		r.Get("/locations", h.listLocations)
		r.Get("/stocks", h.listStocks)
		r.Get("/stocks/expiring", h.expiringStocks)
		r.Get("/logs", h.listLogs)

		r.Post("/checkout", h.adjust(domain.ModeOut))
		r.Post("/checkin", h.adjust(domain.ModeIn))

		r.Route("/rfid", func(r chi.Router) {
			r.Post("/scan", h.scan)
			r.Post("/map", h.mapTag)
			r.Delete("/map/{cardHex}", h.unmapTag)
			r.Get("/mappings", h.listMappings)
			r.Post("/move", h.moveTag)
			r.Get("/unknown", h.listUnknown)
		})

		if h.opts.Journal != nil {
			r.Get("/journal", h.journalEntries)
			r.Get("/journal/unknown/{cardHex}", h.journalUnknownCount)
		}
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if h.opts.Journal != nil {
		ctx, cancel := context.WithTimeout(r.Context(), time.Second)
		defer cancel()
		if err := h.opts.Journal.Ping(ctx); err != nil {
			h.log.Warn("journal ping failed", zap.Error(err))
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "journal": err.Error()})
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type configResponse struct {
	Role              string `json:"role"`
	MissionID         string `json:"missionId"`
	DefaultLocationID string `json:"defaultLocationId"`
	UIMode            string `json:"uiMode"`
}

func (h *Handler) getConfig(w http.ResponseWriter, r *http.Request) {
	mode := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("mode")))
	profile := h.opts.Catalog.Profile(mode)
	respondJSON(w, http.StatusOK, configResponse{
		Role:              profile.Role,
		MissionID:         h.opts.MissionID,
		DefaultLocationID: h.opts.DefaultLocationID,
		UIMode:            profile.UIMode,
	})
}

// Catalog and ledger dumps

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	status := domain.StockStatus(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status"))))
	if status != "" && status != domain.StatusOK && status != domain.StatusRisk {
		respondError(w, http.StatusBadRequest, ledger.KindInvalidRequest, "status must be OK or RISK")
		return
	}
	respondJSON(w, http.StatusOK, h.ledger.Items(status))
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	item, ok := h.ledger.Item(chi.URLParam(r, "id"))
	if !ok {
		respondError(w, http.StatusNotFound, ledger.KindUnknownItem, "item not in catalog")
		return
	}
	respondJSON(w, http.StatusOK, item)
}

func (h *Handler) listLocations(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.ledger.Locations())
}

func (h *Handler) listStocks(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.ledger.Stocks(strings.TrimSpace(r.URL.Query().Get("itemId"))))
}

// maxExpiringDays keeps the expiry window well inside time.Duration.
const maxExpiringDays = 36500

func (h *Handler) expiringStocks(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	if days <= 0 {
		days = 30
	}
	if days > maxExpiringDays {
		respondError(w, http.StatusBadRequest, ledger.KindInvalidRequest, "days must be at most "+strconv.Itoa(maxExpiringDays))
		return
	}
	respondJSON(w, http.StatusOK, h.ledger.Expiring(time.Duration(days)*24*time.Hour))
}

func (h *Handler) listLogs(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, h.ledger.Logs(strings.TrimSpace(r.URL.Query().Get("itemId")), limit))
}

// Journal reads

func (h *Handler) journalEntries(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	entries, err := h.opts.Journal.Entries(r.Context(), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if entries == nil {
		entries = []domain.LogEntry{}
	}
	respondJSON(w, http.StatusOK, entries)
}

type unknownCountResponse struct {
	CardHex string `json:"cardHex"`
	Count   int    `json:"count"`
}

func (h *Handler) journalUnknownCount(w http.ResponseWriter, r *http.Request) {
	tag := ledger.NormalizeTag(chi.URLParam(r, "cardHex"))
	if tag == "" {
		respondError(w, http.StatusBadRequest, ledger.KindInvalidRequest, "cardHex is required")
		return
	}
	n, err := h.opts.Journal.UnknownCount(r.Context(), tag)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, unknownCountResponse{CardHex: tag, Count: n})
}

// Direct ledger adjustments

type adjustRequest struct {
	ItemID     string `json:"itemId"`
	LocationID string `json:"locationId"`
	Qty        int64  `json:"qty"`
	Actor      string `json:"actor"`
	Reason     string `json:"reason,omitempty"`
	WorkOrder  string `json:"workOrder,omitempty"`
	ExpiresAt  string `json:"expiresAt,omitempty"`
}

type resultResponse struct {
	OK bool `json:"ok"`
	ledger.Result
}

func (h *Handler) adjust(mode domain.Mode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req adjustRequest
		if !h.decode(w, r, &req) {
			return
		}
		if req.ItemID == "" || req.LocationID == "" {
			respondError(w, http.StatusBadRequest, ledger.KindInvalidRequest, "itemId and locationId are required")
			return
		}
		expiresAt, err := parseExpiry(req.ExpiresAt)
		if err != nil {
			respondError(w, http.StatusBadRequest, ledger.KindInvalidRequest, "expiresAt must be RFC3339 or YYYY-MM-DD")
			return
		}
		res, err := h.ledger.Adjust(ledger.AdjustRequest{
			ItemID:     req.ItemID,
			LocationID: req.LocationID,
			Mode:       mode,
			Qty:        defaultQty(req.Qty),
			Actor:      req.Actor,
			Reason:     req.Reason,
			WorkOrder:  req.WorkOrder,
			ExpiresAt:  expiresAt,
		})
		if err != nil {
			h.fail(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, resultResponse{OK: true, Result: res})
	}
}

// RFID handlers

type scanRequest struct {
	CardHex    string `json:"cardHex"`
	Mode       string `json:"mode"`
	Qty        int64  `json:"qty"`
	Actor      string `json:"actor"`
	LocationID string `json:"locationId,omitempty"`
	Reason     string `json:"reason,omitempty"`
	WorkOrder  string `json:"workOrder,omitempty"`
}

func (h *Handler) scan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if !h.decode(w, r, &req) {
		return
	}
	res, err := h.ledger.Scan(ledger.ScanRequest{
		CardHex:    req.CardHex,
		Mode:       req.Mode,
		Qty:        req.Qty,
		Actor:      req.Actor,
		LocationID: req.LocationID,
		Reason:     req.Reason,
		WorkOrder:  req.WorkOrder,
	})
	if h.opts.Scans != nil {
		h.opts.Scans.ScanOutcome(ledger.KindOf(err))
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if res.Transition == ledger.TransitionConsumedToTrash {
		h.log.Info("tag remapped to disposal item",
			zap.String("card_hex", res.CardHex),
			zap.String("item_id", res.ItemID),
			zap.String("next_item_id", res.NextItemID))
	}
	respondJSON(w, http.StatusOK, resultResponse{OK: true, Result: res})
}

type mapRequest struct {
	CardHex    string `json:"cardHex"`
	ItemID     string `json:"itemId"`
	LocationID string `json:"locationId"`
}

type mappingResponse struct {
	OK             bool              `json:"ok"`
	Mapping        domain.TagMapping `json:"mapping"`
	ClearedUnknown int               `json:"clearedUnknown,omitempty"`
}

func (h *Handler) mapTag(w http.ResponseWriter, r *http.Request) {
	var req mapRequest
	if !h.decode(w, r, &req) {
		return
	}
	m, cleared, err := h.ledger.SetMapping(req.CardHex, req.ItemID, req.LocationID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.log.Info("tag mapped",
		zap.String("card_hex", m.CardHex),
		zap.String("item_id", m.ItemID),
		zap.String("location_id", m.LastLocationID),
		zap.Int("cleared_unknown", cleared))
	respondJSON(w, http.StatusOK, mappingResponse{OK: true, Mapping: m, ClearedUnknown: cleared})
}

func (h *Handler) unmapTag(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.RemoveMapping(chi.URLParam(r, "cardHex")); err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) listMappings(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.ledger.Mappings())
}

type moveRequest struct {
	CardHex    string `json:"cardHex"`
	LocationID string `json:"locationId"`
}

func (h *Handler) moveTag(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if !h.decode(w, r, &req) {
		return
	}
	m, err := h.ledger.ForceMove(req.CardHex, req.LocationID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, mappingResponse{OK: true, Mapping: m})
}

func (h *Handler) listUnknown(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.ledger.Unknown())
}

// Helpers

// parseLimit reads an optional non-negative ?limit= and answers the request
// itself when it is malformed. Zero means no limit.
func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		respondError(w, http.StatusBadRequest, ledger.KindInvalidRequest, "limit must be a non-negative integer")
		return 0, false
	}
	return n, true
}

func defaultQty(qty int64) int64 {
	if qty == 0 {
		return 1
	}
	return qty
}

func parseExpiry(val string) (*time.Time, error) {
	trimmed := strings.TrimSpace(val)
	if trimmed == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, trimmed); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, errors.New("unrecognized expiry format")
}

// decode reads a bounded JSON body into dest and answers the request itself
// when the body is unusable.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxBodyBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	err := decoder.Decode(dest)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respondError(w, http.StatusRequestEntityTooLarge, kindPayloadTooLarge, "request body exceeds limit")
		return false
	}
	respondError(w, http.StatusBadRequest, kindInvalidJSON, err.Error())
	return false
}

// fail reports a ledger error with its HTTP status. Anything that is not a
// ledger error is logged and reported as INTERNAL_ERROR.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	kind := ledger.KindOf(err)
	if kind == "" {
		h.log.Error("request failed", zap.String("path", r.URL.Path), zap.String("request_id", middleware.GetReqID(r.Context())), zap.Error(err))
		respondError(w, http.StatusInternalServerError, kindInternal, "internal error")
		return
	}
	status := statusForKind(kind)
	if status >= http.StatusInternalServerError {
		h.log.Error("ledger consistency failure", zap.String("kind", string(kind)), zap.Error(err))
	} else {
		h.log.Info("request rejected", zap.String("path", r.URL.Path), zap.String("kind", string(kind)), zap.String("reason", err.Error()))
	}
	var lerr *ledger.Error
	errors.As(err, &lerr)
	respondError(w, status, kind, lerr.Message)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

type errorResponse struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func respondError(w http.ResponseWriter, status int, kind ledger.Kind, message string) {
	respondJSON(w, status, errorResponse{OK: false, Error: string(kind), Message: message})
}
