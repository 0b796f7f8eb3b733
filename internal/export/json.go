package export

import (
	"encoding/json"
	"io"

	"road-trip-planner/internal/models"
)

// WriteJSON writes the plan as indented JSON
func WriteJSON(w io.Writer, plan *models.TripPlan) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(plan)
}
