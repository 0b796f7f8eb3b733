package handlers

import (
	"log/slog"
	"net/http"
)

// HandleAddressSearch handles GET /api/v1/address-search
func (h *Handler) HandleAddressSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("address")
	slog.Debug("address search", "query", query)

	if len(query) < 4 {
		h.writeJSON(w, http.StatusOK, []any{})
		return
	}

	results, err := h.Geocoder.Search(r.Context(), query, 5)
	if err != nil {
		slog.Warn("address search failed", "query", query, "error", err)
		h.writeJSON(w, http.StatusOK, []any{})
		return
	}

	slog.Debug("address search done", "query", query, "results", len(results))
	if results == nil {
		h.writeJSON(w, http.StatusOK, []any{})
		return
	}
	h.writeJSON(w, http.StatusOK, results)
}
