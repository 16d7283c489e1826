package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"btcchart/internal/chart"
	"btcchart/internal/hub"
	"btcchart/internal/model"
	"btcchart/internal/recorder"
	"btcchart/internal/render"
)

type Handler struct {
	comp *chart.Component
	hub  *hub.Hub
	rec  recorder.Recorder
}

func NewHandler(comp *chart.Component, h *hub.Hub, rec recorder.Recorder) *Handler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Handler{comp: comp, hub: h, rec: rec}
}

// Routes registers every endpoint on a new mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.Page)
	mux.HandleFunc("GET /api/state", h.GetState)
	mux.HandleFunc("POST /api/currencies", h.ToggleCurrency)
	mux.HandleFunc("POST /api/range", h.SetTimeRange)
	mux.HandleFunc("GET /api/cycles", h.GetCycles)
	mux.HandleFunc("GET /health", h.HealthCheck)
	if h.hub != nil {
		mux.HandleFunc("GET /ws", h.hub.HandleWebSocket)
	}
	return mux
}

// Setup builds the HTTP server listening on addr.
func (h *Handler) Setup(addr string) *http.Server {
	return &http.Server{Addr: addr, Handler: h.Routes()}
}

func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	view, err := render.BuildView(h.comp.Snapshot())
	if err != nil {
		http.Error(w, "failed to build page: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.Page(w, view); err != nil {
		log.Printf("[ERROR] render page: %v", err)
	}
}

func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.comp.Snapshot())
}

type toggleRequest struct {
	Code    string `json:"code"`
	Enabled bool   `json:"enabled"`
}

func (h *Handler) ToggleCurrency(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.comp.ToggleCurrency(model.Currency(req.Code), req.Enabled); err != nil {
		writeInputError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, h.comp.Selection())
}

type rangeRequest struct {
	Code json.RawMessage `json:"code"`
}

func (h *Handler) SetTimeRange(w http.ResponseWriter, r *http.Request) {
	var req rangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	// Accept both "30" and 30.
	var code string
	if err := json.Unmarshal(req.Code, &code); err != nil {
		code = string(req.Code)
	}
	rng, err := model.ParseTimeRange(code)
	if err != nil {
		writeInputError(w, err)
		return
	}
	if err := h.comp.SetTimeRange(rng); err != nil {
		writeInputError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, h.comp.Selection())
}

// GetCycles returns the most recent fetch cycle diagnostics.
func (h *Handler) GetCycles(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit parameter", http.StatusBadRequest)
			return
		}
		limit = n
	}
	events, err := h.rec.RecentCycles(limit)
	if err != nil {
		http.Error(w, "failed to read cycles: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []recorder.CycleEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func writeInputError(w http.ResponseWriter, err error) {
	if errors.Is(err, model.ErrUnsupportedCurrency) || errors.Is(err, model.ErrUnsupportedTimeRange) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[ERROR] encode response: %v", err)
	}
}
