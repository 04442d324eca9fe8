package share

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// MaxPayloadBytes bounds a share request body.
const MaxPayloadBytes = 1 << 20

// Handler serves the share boundary over a [Store].
type Handler struct {
	store  Store
	ttl    time.Duration
	newID  func() ItemID
	logger *log.Logger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithItemTTL sets how long stored items live. Zero keeps them forever.
func WithItemTTL(ttl time.Duration) HandlerOption {
	return func(h *Handler) { h.ttl = max(0, ttl) }
}

// WithItemIDFunc replaces the id generator (uuid by default).
func WithItemIDFunc(fn func() ItemID) HandlerOption {
	return func(h *Handler) { h.newID = fn }
}

// WithHandlerLogger sets the request logger.
func WithHandlerLogger(l *log.Logger) HandlerOption {
	return func(h *Handler) { h.logger = l }
}

// NewHandler serves items from store.
func NewHandler(store Store, opts ...HandlerOption) *Handler {
	h := &Handler{
		store:  store,
		ttl:    DefaultTTL,
		newID:  func() ItemID { return ItemID(uuid.NewString()) },
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterHTTP mounts the share routes on r.
func (h *Handler) RegisterHTTP(r chi.Router) {
	r.Post("/api/share", h.handleCreate)
	r.Get("/api/share/{id}", h.handleGet)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxPayloadBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, createResponse{Error: "payload too large"})
		return
	}
	var req createRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, createResponse{Error: "invalid request body"})
		return
	}
	if _, err := Decode(req.Data); err != nil {
		writeJSON(w, http.StatusBadRequest, createResponse{Error: err.Error()})
		return
	}

	now := time.Now()
	item := Item{ID: h.newID(), Data: req.Data, CreatedAt: now}
	if h.ttl > 0 {
		item.ExpiresAt = now.Add(h.ttl)
	}
	if err := h.store.Put(r.Context(), item); err != nil {
		h.logger.Error("store share item", "err", err)
		writeJSON(w, http.StatusInternalServerError, createResponse{Error: "failed to store"})
		return
	}
	h.logger.Debug("share item stored", "id", item.ID, "bytes", len(item.Data))
	writeJSON(w, http.StatusOK, createResponse{Success: true, ItemID: item.ID})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id := ItemID(chi.URLParam(r, "id"))
	item, err := h.store.Get(r.Context(), id)
	switch {
	case stderrors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case err != nil:
		h.logger.Error("load share item", "id", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load"})
	default:
		writeJSON(w, http.StatusOK, item)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
