package export

import (
	"bufio"
	"fmt"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"road-trip-planner/internal/models"
)

// summaryParkLimit caps the city parks section
const summaryParkLimit = 20

// WriteMarkdown writes a human readable trip summary
func WriteMarkdown(w io.Writer, plan *models.TripPlan) error {
	bw := bufio.NewWriter(w)
	p := message.NewPrinter(language.English)

	p.Fprintf(bw, "# %s\n\n", plan.Name())
	p.Fprintf(bw, "*Generated: %s*\n\n", plan.GeneratedAt.Format("2006-01-02 15:04:05"))

	hours := plan.TotalDurationHours()
	h := int(hours)
	m := int((hours - float64(h)) * 60)
	p.Fprintf(bw, "## Trip Overview\n\n")
	fmt.Fprintf(bw, "- **Distance**: %.1f miles\n", plan.TotalDistanceMiles())
	fmt.Fprintf(bw, "- **Estimated Driving Time**: %dh %dm\n", h, m)
	fmt.Fprintf(bw, "- **Number of Stops**: %d\n\n", len(plan.MajorStops))

	fmt.Fprintf(bw, "## Stops\n\n")
	for i, stop := range plan.MajorStops {
		fmt.Fprintf(bw, "%d. %s\n", i+1, stop.Name)
	}
	fmt.Fprintln(bw)

	fmt.Fprintf(bw, "## Hotels (%d found)\n\n", len(plan.Hotels))
	for _, city := range sortedKeys(plan.Hotels) {
		hotel := plan.Hotels[city]
		fmt.Fprintf(bw, "### %s\n\n**%s**\n\n", city, hotel.Name)
		writeContact(bw, p, hotel.Place, hotel.Phone)
	}

	fmt.Fprintf(bw, "## Emergency Veterinarians (%d found)\n\n", len(plan.Vets))
	for _, city := range sortedKeys(plan.Vets) {
		vet := plan.Vets[city]
		fmt.Fprintf(bw, "### %s\n\n**%s**", city, vet.Name)
		if vet.Is24Hours {
			fmt.Fprint(bw, " ⏰ **24/7**")
		}
		fmt.Fprint(bw, "\n\n")
		writeContact(bw, p, vet.Place, vet.Phone)
	}

	a := plan.Attractions
	if len(a.NationalParks) > 0 {
		fmt.Fprintf(bw, "## 🏞️ Major National Parks (%d found)\n\n", len(a.NationalParks))
		for _, park := range a.NationalParks {
			p.Fprintf(bw, "- **%s** (%.1f⭐, %d reviews) - %s\n", park.Name, park.Rating, park.ReviewCount, park.State)
			if park.Website != "" {
				fmt.Fprintf(bw, "  - Website: %s\n", park.Website)
			}
			if park.WikipediaURL != "" {
				fmt.Fprintf(bw, "  - Wikipedia: %s\n", park.WikipediaURL)
			}
		}
		fmt.Fprintln(bw)
	}

	sections := []struct {
		title string
		items []models.Attraction
		limit int
	}{
		{"🗿 Monuments & Memorials", a.Monuments, 0},
		{"🌲 Parks", a.Parks, summaryParkLimit},
		{"🏛️ Museums & Cultural Attractions", a.Museums, 0},
		{"🍽️ Dog-Friendly Restaurants", a.Restaurants, 0},
		{"🐾 Dog Parks", a.DogParks, 0},
		{"📸 Scenic Viewpoints", a.Viewpoints, 0},
		{"🔌 EV Charging Stations", a.EVChargers, 0},
	}
	for _, s := range sections {
		if len(s.items) == 0 {
			continue
		}
		fmt.Fprintf(bw, "## %s (%d found)\n\n", s.title, len(s.items))
		items := s.items
		if s.limit > 0 && len(items) > s.limit {
			items = items[:s.limit]
		}
		for _, it := range items {
			p.Fprintf(bw, "- **%s** (%.1f⭐, %d reviews) - %s\n", it.Name, it.Rating, it.ReviewCount, it.Location)
			if it.WikipediaURL != "" {
				fmt.Fprintf(bw, "  - Wikipedia: %s\n", it.WikipediaURL)
			}
		}
		fmt.Fprintln(bw)
	}

	return bw.Flush()
}

func writeContact(w io.Writer, p *message.Printer, place models.Place, phone string) {
	p.Fprintf(w, "- Rating: %.1f⭐ (%d reviews)\n", place.Rating, place.ReviewCount)
	fmt.Fprintf(w, "- Address: %s\n", place.Address)
	if phone != "" {
		fmt.Fprintf(w, "- Phone: %s\n", phone)
	}
	if place.Website != "" {
		fmt.Fprintf(w, "- Website: %s\n", place.Website)
	}
	fmt.Fprintln(w)
}
