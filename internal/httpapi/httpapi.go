// Package httpapi exposes the locker service over HTTP.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rcliao/evidence-locker/internal/locker"
	"github.com/rcliao/evidence-locker/internal/manifest"
	"github.com/rcliao/evidence-locker/internal/model"
)

// Handler wires locker endpoints to a service.
type Handler struct {
	svc    *locker.Service
	log    *slog.Logger
	gather prometheus.Gatherer
}

// New creates a handler. gather may be nil to disable /metrics.
func New(svc *locker.Service, log *slog.Logger, gather prometheus.Gatherer) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, log: log, gather: gather}
}

// Router returns the full route table.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/arrests", h.arrest)
	r.Route("/players/{id}", func(r chi.Router) {
		r.Get("/snapshot", h.snapshot)
		r.Delete("/snapshot", h.clear)
		r.Get("/items/legal", h.legal)
		r.Get("/items/contraband", h.contraband)
		r.Post("/release", h.release)
	})
	r.Put("/positions/{name}", h.setPosition)
	r.Get("/positions/{name}", h.getPosition)
	r.Get("/stats", h.stats)
	r.Post("/save", h.save)
	if h.gather != nil {
		r.Handle("/metrics", promhttp.HandlerFor(h.gather, promhttp.HandlerOpts{}))
	}
	return r
}

func (h *Handler) arrest(w http.ResponseWriter, r *http.Request) {
	p, err := manifest.Decode(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	arrestID := h.svc.CreateInventorySnapshot(p)
	if arrestID == "" {
		writeError(w, http.StatusUnprocessableEntity, "snapshot not created")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"playerId": p.ID(), "arrestId": arrestID})
}

func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.svc.ActiveSnapshot(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "no active snapshot")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	h.svc.ClearPlayerSnapshot(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) legal(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.GetLegalItemsForPlayer(chi.URLParam(r, "id")))
}

func (h *Handler) contraband(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.GetContrabandItemsForPlayer(chi.URLParam(r, "id")))
}

type releaseResponse struct {
	locker.Release
	Clothing []manifest.LayerSpec `json:"clothing"`
}

// release takes the person document so clothing can be restored onto it.
// The restored outfit is returned for the caller to apply.
func (h *Handler) release(w http.ResponseWriter, r *http.Request) {
	p, err := manifest.Decode(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if id := chi.URLParam(r, "id"); p.ID() != id {
		writeError(w, http.StatusBadRequest, "person id does not match path")
		return
	}
	rel, ok := h.svc.Release(p)
	if !ok {
		writeError(w, http.StatusNotFound, "no active snapshot")
		return
	}
	writeJSON(w, http.StatusOK, releaseResponse{Release: rel, Clothing: p.Outfit})
}

func (h *Handler) setPosition(w http.ResponseWriter, r *http.Request) {
	var pos model.Vec3
	if err := json.NewDecoder(r.Body).Decode(&pos); err != nil {
		writeError(w, http.StatusBadRequest, "position must be [x, y, z]")
		return
	}
	h.svc.StorePlayerExitPosition(chi.URLParam(r, "name"), pos)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getPosition(w http.ResponseWriter, r *http.Request) {
	pos, ok := h.svc.GetPlayerExitPosition(chi.URLParam(r, "name"))
	if !ok {
		writeError(w, http.StatusNotFound, "no stored position")
		return
	}
	writeJSON(w, http.StatusOK, pos)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"stats":   h.svc.Stats(),
		"summary": h.svc.GetDataStats(),
	})
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ForceSave(); err != nil {
		h.log.Error("force save", "error", err)
		writeError(w, http.StatusInternalServerError, "save failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
