package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/Sri-Rahul/linkanalysis/internal/analytics"
	"github.com/Sri-Rahul/linkanalysis/internal/domain"
	"github.com/Sri-Rahul/linkanalysis/internal/service"
)

// ownerHeader carries the caller identity. The server trusts it as-is;
// authentication happens upstream.
const ownerHeader = "X-Owner-ID"

const defaultEventLimit = 50

// Handler holds the HTTP handlers for the link service
type Handler struct {
	links     service.LinkService
	engine    *analytics.Engine
	serverURL string
}

// NewHandler creates a new HTTP handler
func NewHandler(links service.LinkService, engine *analytics.Engine, serverURL string) *Handler {
	return &Handler{
		links:     links,
		engine:    engine,
		serverURL: serverURL,
	}
}

// statusFromError maps domain errors to HTTP status codes
func statusFromError(err error) int {
	switch {
	case errors.Is(err, domain.ErrLinkNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrLinkGone):
		return http.StatusGone
	case errors.Is(err, domain.ErrAliasTaken):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidAlias),
		errors.Is(err, domain.ErrMissingDestination),
		errors.Is(err, domain.ErrInvalidDestination),
		errors.Is(err, domain.ErrInvalidExpiry),
		errors.Is(err, domain.ErrInvalidDimension),
		errors.Is(err, domain.ErrOwnerRequired):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := statusFromError(err)
	if status == http.StatusInternalServerError {
		http.Error(w, "Internal server error", status)
		return
	}
	http.Error(w, err.Error(), status)
}

func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// ownerID extracts the caller identity header, nil when absent
func ownerID(r *http.Request) *string {
	owner := strings.TrimSpace(r.Header.Get(ownerHeader))
	if owner == "" {
		return nil
	}
	return &owner
}

func (h *Handler) toLinkResponse(link *domain.Link) domain.LinkInfo {
	return domain.LinkInfo{
		Code:        link.Code,
		ShortURL:    h.serverURL + "/" + link.Code,
		Destination: link.Destination,
		CustomAlias: link.CustomAlias,
		Clicks:      link.Clicks,
		Active:      link.Active,
		ExpiresAt:   link.ExpiresAt,
		CreatedAt:   link.CreatedAt,
	}
}

// CreateLink handles POST /api/urls
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[ERROR] Invalid JSON in create link request: %v", err)
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	link, err := h.links.CreateLink(r.Context(), req, ownerID(r))
	if err != nil {
		log.Printf("[ERROR] Failed to create link for '%s': %v", req.DestinationURL, err)
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(h.toLinkResponse(link)); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// ListLinks handles GET /api/urls
func (h *Handler) ListLinks(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == nil {
		http.Error(w, "Owner header is required", http.StatusBadRequest)
		return
	}

	links, err := h.links.ListLinks(r.Context(), *owner)
	if err != nil {
		log.Printf("[ERROR] Failed to list links for owner '%s': %v", *owner, err)
		h.writeError(w, err)
		return
	}

	responses := make([]domain.LinkInfo, 0, len(links))
	for _, link := range links {
		responses = append(responses, h.toLinkResponse(link))
	}

	h.writeJSON(w, responses)
}

// GetLink handles GET /api/urls/{code}
func (h *Handler) GetLink(w http.ResponseWriter, r *http.Request, code string) {
	link, err := h.links.GetLink(r.Context(), code)
	if err != nil {
		log.Printf("[ERROR] Failed to get link for code '%s': %v", code, err)
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, h.toLinkResponse(link))
}

// UpdateLink handles PATCH /api/urls/{code}
func (h *Handler) UpdateLink(w http.ResponseWriter, r *http.Request, code string) {
	var upd domain.LinkUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		log.Printf("[ERROR] Invalid JSON in update link request: %v", err)
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	link, err := h.links.UpdateLink(r.Context(), code, ownerID(r), upd)
	if err != nil {
		log.Printf("[ERROR] Failed to update link with code '%s': %v", code, err)
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, h.toLinkResponse(link))
}

// DeleteLink handles DELETE /api/urls/{code}
func (h *Handler) DeleteLink(w http.ResponseWriter, r *http.Request, code string) {
	if err := h.links.DeleteLink(r.Context(), code, ownerID(r)); err != nil {
		log.Printf("[ERROR] Failed to delete link with code '%s': %v", code, err)
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// QRCode handles GET /api/urls/{code}/qr
func (h *Handler) QRCode(w http.ResponseWriter, r *http.Request, code string) {
	if _, err := h.links.GetLink(r.Context(), code); err != nil {
		log.Printf("[ERROR] Failed to get link for QR code '%s': %v", code, err)
		h.writeError(w, err)
		return
	}

	png, err := qrcode.Encode(h.serverURL+"/"+code, qrcode.Medium, 256)
	if err != nil {
		log.Printf("[ERROR] Failed to generate QR code for '%s': %v", code, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(png); err != nil {
		log.Printf("Error writing QR code response: %v", err)
	}
}

// Summary handles GET /api/analytics/summary
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	owner := ownerID(r)
	if owner == nil {
		http.Error(w, "Owner header is required", http.StatusBadRequest)
		return
	}

	summary, err := h.engine.Summary(r.Context(), *owner)
	if err != nil {
		log.Printf("[ERROR] Failed to build analytics summary for owner '%s': %v", *owner, err)
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, summary)
}

// ClicksOverTime handles GET /api/analytics/urls/{code}/clicks
func (h *Handler) ClicksOverTime(w http.ResponseWriter, r *http.Request, code string) {
	window := r.URL.Query().Get("window")

	series, err := h.engine.ClicksOverTime(r.Context(), code, window)
	if err != nil {
		log.Printf("[ERROR] Failed to get click series for code '%s': %v", code, err)
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, series)
}

// Breakdown handles GET /api/analytics/urls/{code}/breakdown
func (h *Handler) Breakdown(w http.ResponseWriter, r *http.Request, code string) {
	dimension := r.URL.Query().Get("dimension")
	if dimension == "" {
		dimension = domain.DimensionDevice
	}

	counts, err := h.engine.Breakdown(r.Context(), code, dimension)
	if err != nil {
		log.Printf("[ERROR] Failed to get %s breakdown for code '%s': %v", dimension, code, err)
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, counts)
}

// Events handles GET /api/analytics/urls/{code}/events
func (h *Handler) Events(w http.ResponseWriter, r *http.Request, code string) {
	limit := defaultEventLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "Limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	events, err := h.engine.Events(r.Context(), code, limit)
	if err != nil {
		log.Printf("[ERROR] Failed to list events for code '%s': %v", code, err)
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, events)
}

// Redirect handles GET /{code} - resolves and redirects to the destination
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimPrefix(r.URL.Path, "/")
	if code == "" || strings.Contains(code, "/") {
		http.NotFound(w, r)
		return
	}

	visit := domain.VisitContext{
		UserAgent: r.UserAgent(),
		Referrer:  r.Referer(),
		IPAddress: clientIP(r),
	}

	destination, err := h.links.Resolve(r.Context(), code, visit)
	if err != nil {
		if errors.Is(err, domain.ErrLinkGone) {
			http.Error(w, "Link is no longer available", http.StatusGone)
			return
		}
		log.Printf("[ERROR] Failed to resolve code '%s': %v", code, err)
		http.NotFound(w, r)
		return
	}

	http.Redirect(w, r, destination, http.StatusFound)
}

// clientIP picks the originating address, preferring the forwarding header
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.Index(fwd, ","); idx >= 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx >= 0 {
		host = host[:idx]
	}
	return host
}

// LinksHandler handles both POST /api/urls and GET /api/urls
func (h *Handler) LinksHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.CreateLink(w, r)
	case http.MethodGet:
		h.ListLinks(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// LinksDetailHandler routes /api/urls/{code} and /api/urls/{code}/qr
func (h *Handler) LinksDetailHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/urls/")
	code, sub, _ := strings.Cut(rest, "/")
	if code == "" {
		http.Error(w, "Code is required", http.StatusBadRequest)
		return
	}

	if sub == "qr" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.QRCode(w, r, code)
		return
	}
	if sub != "" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.GetLink(w, r, code)
	case http.MethodPatch:
		h.UpdateLink(w, r, code)
	case http.MethodDelete:
		h.DeleteLink(w, r, code)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// AnalyticsDetailHandler routes /api/analytics/urls/{code}/{clicks|breakdown|events}
func (h *Handler) AnalyticsDetailHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/analytics/urls/")
	code, sub, _ := strings.Cut(rest, "/")
	if code == "" {
		http.Error(w, "Code is required", http.StatusBadRequest)
		return
	}

	switch sub {
	case "clicks":
		h.ClicksOverTime(w, r, code)
	case "breakdown":
		h.Breakdown(w, r, code)
	case "events":
		h.Events(w, r, code)
	default:
		http.NotFound(w, r)
	}
}
