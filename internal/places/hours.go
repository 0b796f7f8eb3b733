package places

import "strings"

var twentyFourHourNames = []string{"24/7", "24-hour emergency", "24 hour emergency"}

// IsOpen24Hours infers round-the-clock service. Structured hours decide when
// present; the name is only consulted when the provider returned no hours.
func IsOpen24Hours(name string, hours *OpeningHours) bool {
	if hours.empty() {
		lower := strings.ToLower(name)
		for _, marker := range twentyFourHourNames {
			if strings.Contains(lower, marker) {
				return true
			}
		}
		return false
	}

	if len(hours.WeekdayDescriptions) == 7 {
		allDay := true
		for _, day := range hours.WeekdayDescriptions {
			if !strings.Contains(strings.ToLower(day), "open 24 hours") {
				allDay = false
				break
			}
		}
		if allDay {
			return true
		}
	}

	if len(hours.Periods) == 1 {
		p := hours.Periods[0]
		return p.Open != nil && p.Close == nil
	}
	return false
}

func (h *OpeningHours) empty() bool {
	return h == nil || (len(h.WeekdayDescriptions) == 0 && len(h.Periods) == 0)
}
