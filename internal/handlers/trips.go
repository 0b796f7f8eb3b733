package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"road-trip-planner/internal/export"
	"road-trip-planner/internal/models"
	"road-trip-planner/internal/planner"
)

// TripListResponse represents the list response
type TripListResponse struct {
	Trips  []models.TripSummary `json:"trips"`
	Total  int                  `json:"total"`
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`
}

// HandleCreateTrip handles POST /api/v1/trips
func (h *Handler) HandleCreateTrip(w http.ResponseWriter, r *http.Request) {
	var req planner.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Debug("invalid trip request body", "error", err)
		h.handleValidationError(w, "Invalid request body")
		return
	}

	start := time.Now()
	slog.Info("planning trip", "origin", req.Origin, "destination", req.Destination, "via", req.Via, "roundtrip", req.Roundtrip)

	plan, err := h.Planner.Plan(r.Context(), req, func(stage planner.Stage, message string) {
		slog.Debug("plan progress", "stage", stage, "message", message)
	})
	if err != nil {
		slog.Warn("trip planning failed", "origin", req.Origin, "destination", req.Destination, "error", err)
		h.handlePlanError(w, err)
		return
	}

	if err := h.DB.Trips().Create(r.Context(), plan); err != nil {
		h.handleInternalError(w, err)
		return
	}

	slog.Info("trip planned", "id", plan.ID, "stops", len(plan.MajorStops), "duration", time.Since(start))
	h.writeJSON(w, http.StatusCreated, plan)
}

// HandleListTrips handles GET /api/v1/trips
func (h *Handler) HandleListTrips(w http.ResponseWriter, r *http.Request) {
	limit := 20
	offset := 0

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	trips, total, err := h.DB.Trips().List(r.Context(), limit, offset)
	if err != nil {
		h.handleInternalError(w, err)
		return
	}
	if trips == nil {
		trips = []models.TripSummary{}
	}

	h.writeJSON(w, http.StatusOK, TripListResponse{
		Trips:  trips,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// loadTrip fetches the trip named by the {id} path value, writing the
// error response itself when it returns nil
func (h *Handler) loadTrip(w http.ResponseWriter, r *http.Request) *models.TripPlan {
	id := r.PathValue("id")
	plan, err := h.DB.Trips().GetByID(r.Context(), id)
	if err != nil {
		if h.checkNotFound(err) {
			h.handleNotFound(w, "Trip not found")
			return nil
		}
		h.handleInternalError(w, err)
		return nil
	}
	return plan
}

// HandleGetTrip handles GET /api/v1/trips/{id}
func (h *Handler) HandleGetTrip(w http.ResponseWriter, r *http.Request) {
	if plan := h.loadTrip(w, r); plan != nil {
		h.writeJSON(w, http.StatusOK, plan)
	}
}

// HandleTripGPX handles GET /api/v1/trips/{id}/gpx
func (h *Handler) HandleTripGPX(w http.ResponseWriter, r *http.Request) {
	plan := h.loadTrip(w, r)
	if plan == nil {
		return
	}
	h.writeExport(w, plan, "application/gpx+xml", ".gpx", export.WriteGPX)
}

// HandleTripSummary handles GET /api/v1/trips/{id}/summary
func (h *Handler) HandleTripSummary(w http.ResponseWriter, r *http.Request) {
	plan := h.loadTrip(w, r)
	if plan == nil {
		return
	}
	h.writeExport(w, plan, "text/markdown; charset=utf-8", "_summary.md", export.WriteMarkdown)
}

// writeExport renders into a buffer first so a failure can still become a
// JSON error response
func (h *Handler) writeExport(w http.ResponseWriter, plan *models.TripPlan, contentType, suffix string, write func(io.Writer, *models.TripPlan) error) {
	var buf bytes.Buffer
	if err := write(&buf, plan); err != nil {
		h.handleInternalError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Slug(plan)+suffix))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("failed to write export", "id", plan.ID, "error", err)
	}
}

// HandleDeleteTrip handles DELETE /api/v1/trips/{id}
func (h *Handler) HandleDeleteTrip(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.DB.Trips().Delete(r.Context(), id); err != nil {
		if h.checkNotFound(err) {
			h.handleNotFound(w, "Trip not found")
			return
		}
		h.handleInternalError(w, err)
		return
	}

	slog.Info("trip deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}
