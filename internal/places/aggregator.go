package places

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"road-trip-planner/internal/config"
	"road-trip-planner/internal/distance"
	"road-trip-planner/internal/metrics"
	"road-trip-planner/internal/models"
	"road-trip-planner/internal/ranking"
	"road-trip-planner/internal/routing"
	"road-trip-planner/internal/travelguide"
)

// ArticleFinder looks up an encyclopedia article. A nil article means no match.
type ArticleFinder interface {
	Article(ctx context.Context, query string) (*travelguide.Article, error)
}

type Options struct {
	Categories           config.Categories
	ParkSampleMiles      float64
	ViewpointSampleMiles float64
	// Workers bounds concurrent searches; 1 runs them strictly in order
	Workers int
}

// Aggregator runs every category search for a trip and merges the results
type Aggregator struct {
	search   Searcher
	articles ArticleFinder
	opts     Options
}

// NewAggregator creates an aggregator. articles may be nil.
func NewAggregator(search Searcher, articles ArticleFinder, opts Options) *Aggregator {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.ParkSampleMiles <= 0 {
		opts.ParkSampleMiles = 25
	}
	if opts.ViewpointSampleMiles <= 0 {
		opts.ViewpointSampleMiles = 25
	}
	if !opts.Categories.WikipediaLinks {
		articles = nil
	}
	return &Aggregator{search: search, articles: articles, opts: opts}
}

// Request carries the planned trip the searches are run for
type Request struct {
	RouteGeometry  []models.Coordinates
	MajorStops     []models.Stop
	WaypointCities []models.Stop
	SampledCities  []models.CityCandidate
}

type Result struct {
	Hotels         map[string]models.Hotel
	WaypointHotels map[string]models.Hotel
	Vets           map[string]models.Veterinarian
	Attractions    models.Attractions
}

// slot holds the output of one task. Each task writes only its own slot.
type slot struct {
	hotel         *models.Hotel
	waypointHotel *models.Hotel
	vet           *models.Veterinarian
	stop          string
	attractions   models.Attractions
}

type task struct {
	name string
	run  func(ctx context.Context, out *slot) error
}

// Collect searches every enabled category. Search failures are logged and
// leave that task empty; only cancellation of ctx is returned as an error.
func (a *Aggregator) Collect(ctx context.Context, req Request) (*Result, error) {
	tasks := a.tasks(req)
	slots := make([]slot, len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Workers)

	for i, t := range tasks {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := t.run(gctx, &slots[i]); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				slog.Warn("place search failed", "task", t.name, "error", err)
				slots[i] = slot{}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return merge(slots), nil
}

func (a *Aggregator) tasks(req Request) []task {
	cats := a.opts.Categories
	var tasks []task

	var searchable []models.Stop
	for _, s := range req.MajorStops {
		if s.Searchable() {
			searchable = append(searchable, s)
		}
	}

	add := func(enabled bool, name string, run func(ctx context.Context, out *slot) error) {
		if enabled {
			tasks = append(tasks, task{name: name, run: run})
		}
	}

	for _, s := range searchable {
		add(cats.Hotels, "hotel "+s.Name, func(ctx context.Context, out *slot) error {
			h, err := a.bestHotel(ctx, s)
			out.stop, out.hotel = s.Name, h
			return err
		})
	}
	for _, s := range searchable {
		add(cats.Vets, "vet "+s.Name, func(ctx context.Context, out *slot) error {
			v, err := a.bestVet(ctx, s)
			out.stop, out.vet = s.Name, v
			return err
		})
	}

	names := make([]string, 0, len(req.SampledCities)+len(req.MajorStops))
	for _, c := range req.SampledCities {
		names = append(names, c.Name)
	}
	for _, s := range req.MajorStops {
		names = append(names, s.Name)
	}
	for _, st := range StatesVisited(names) {
		add(cats.NationalParks, "national parks "+st.Abbrev, func(ctx context.Context, out *slot) error {
			parks, err := a.nationalParks(ctx, st)
			out.attractions.NationalParks = parks
			return err
		})
		add(cats.Monuments, "monuments "+st.Abbrev, func(ctx context.Context, out *slot) error {
			monuments, err := a.monuments(ctx, st)
			out.attractions.Monuments = monuments
			return err
		})
	}

	add(cats.Parks, "parks along route", func(ctx context.Context, out *slot) error {
		parks, err := a.routeParks(ctx, req.RouteGeometry)
		out.attractions.Parks = parks
		return err
	})
	add(cats.Viewpoints, "viewpoints along route", func(ctx context.Context, out *slot) error {
		viewpoints, err := a.viewpoints(ctx, req.RouteGeometry)
		out.attractions.Viewpoints = viewpoints
		return err
	})

	for _, s := range searchable {
		add(cats.Parks, "parks "+s.Name, func(ctx context.Context, out *slot) error {
			parks, err := a.nearbyAttractions(ctx, ParkPolicy, models.AttractionPark, s)
			out.attractions.Parks = parks
			return err
		})
		add(cats.Museums, "museums "+s.Name, func(ctx context.Context, out *slot) error {
			museums, err := a.nearbyAttractions(ctx, MuseumPolicy, models.AttractionMuseum, s)
			out.attractions.Museums = museums
			return err
		})
		add(cats.Restaurants, "restaurants "+s.Name, func(ctx context.Context, out *slot) error {
			restaurants, err := a.textAttractions(ctx, RestaurantPolicy, models.AttractionRestaurant, s)
			out.attractions.Restaurants = restaurants
			return err
		})
		add(cats.DogParks, "dog parks "+s.Name, func(ctx context.Context, out *slot) error {
			dogParks, err := a.textAttractions(ctx, DogParkPolicy, models.AttractionDogPark, s)
			out.attractions.DogParks = dogParks
			return err
		})
		add(cats.EVChargers, "ev chargers "+s.Name, func(ctx context.Context, out *slot) error {
			chargers, err := a.nearbyAttractions(ctx, EVChargerPolicy, models.AttractionEVCharger, s)
			out.attractions.EVChargers = chargers
			return err
		})
	}

	for _, w := range req.WaypointCities {
		add(cats.WaypointHotels, "waypoint hotel "+w.Name, func(ctx context.Context, out *slot) error {
			h, err := a.bestHotel(ctx, w)
			out.stop, out.waypointHotel = w.Name, h
			return err
		})
	}

	return tasks
}

func merge(slots []slot) *Result {
	res := &Result{
		Hotels:         make(map[string]models.Hotel),
		WaypointHotels: make(map[string]models.Hotel),
		Vets:           make(map[string]models.Veterinarian),
	}

	var all models.Attractions
	for _, s := range slots {
		if s.hotel != nil {
			res.Hotels[s.stop] = *s.hotel
		}
		if s.waypointHotel != nil {
			res.WaypointHotels[s.stop] = *s.waypointHotel
		}
		if s.vet != nil {
			res.Vets[s.stop] = *s.vet
		}
		all.NationalParks = append(all.NationalParks, s.attractions.NationalParks...)
		all.Monuments = append(all.Monuments, s.attractions.Monuments...)
		all.Parks = append(all.Parks, s.attractions.Parks...)
		all.Museums = append(all.Museums, s.attractions.Museums...)
		all.Restaurants = append(all.Restaurants, s.attractions.Restaurants...)
		all.DogParks = append(all.DogParks, s.attractions.DogParks...)
		all.Viewpoints = append(all.Viewpoints, s.attractions.Viewpoints...)
		all.EVChargers = append(all.EVChargers, s.attractions.EVChargers...)
	}

	res.Attractions = models.Attractions{
		NationalParks: ranking.MergeRank(all.NationalParks),
		Monuments:     ranking.MergeRank(all.Monuments),
		Parks:         ranking.MergeRank(all.Parks),
		Museums:       ranking.MergeRank(all.Museums),
		Restaurants:   ranking.MergeRank(all.Restaurants),
		DogParks:      ranking.MergeRank(all.DogParks),
		Viewpoints:    ranking.MergeRank(all.Viewpoints),
		EVChargers:    ranking.MergeRank(all.EVChargers),
	}

	metrics.CandidatesKept.WithLabelValues(string(CategoryHotels)).Add(float64(len(res.Hotels) + len(res.WaypointHotels)))
	metrics.CandidatesKept.WithLabelValues(string(CategoryVets)).Add(float64(len(res.Vets)))
	metrics.CandidatesKept.WithLabelValues(string(CategoryNationalParks)).Add(float64(len(res.Attractions.NationalParks)))
	metrics.CandidatesKept.WithLabelValues(string(CategoryMonuments)).Add(float64(len(res.Attractions.Monuments)))
	metrics.CandidatesKept.WithLabelValues(string(CategoryParks)).Add(float64(len(res.Attractions.Parks)))
	metrics.CandidatesKept.WithLabelValues(string(CategoryMuseums)).Add(float64(len(res.Attractions.Museums)))
	metrics.CandidatesKept.WithLabelValues(string(CategoryRestaurants)).Add(float64(len(res.Attractions.Restaurants)))
	metrics.CandidatesKept.WithLabelValues(string(CategoryDogParks)).Add(float64(len(res.Attractions.DogParks)))
	metrics.CandidatesKept.WithLabelValues(string(CategoryViewpoints)).Add(float64(len(res.Attractions.Viewpoints)))
	metrics.CandidatesKept.WithLabelValues(string(CategoryEVChargers)).Add(float64(len(res.Attractions.EVChargers)))

	return res
}

func place(r PlaceRecord, location string, coords models.Coordinates) models.Place {
	return models.Place{
		Name:        r.Name,
		Address:     r.FormattedAddress,
		Location:    location,
		Coords:      coords,
		Rating:      r.Rating,
		ReviewCount: r.ReviewCount,
		Website:     r.Website,
		Score:       distance.PopularityScore(r.Rating, r.ReviewCount),
	}
}

func (a *Aggregator) bestHotel(ctx context.Context, stop models.Stop) (*models.Hotel, error) {
	records, err := a.search.SearchNearby(ctx, HotelPolicy.Nearby(stop.Coords))
	if err != nil {
		return nil, err
	}

	var hotels []models.Hotel
	for _, r := range records {
		if !HotelPolicy.Accepts(r, stop.Coords) || !IsPetFriendlyChain(r.Name) {
			continue
		}
		hotels = append(hotels, models.Hotel{
			Place:      place(r, stop.Name, coordsOr(r, stop.Coords)),
			PriceLevel: r.PriceLevel,
			Phone:      r.Phone,
			PlaceID:    r.ID,
		})
	}

	best, ok := ranking.Best(hotels)
	if !ok {
		slog.Info("no pet-friendly hotel found", "stop", stop.Name)
		return nil, nil
	}
	slog.Info("hotel selected", "stop", stop.Name, "hotel", best.Name, "rating", best.Rating)
	return &best, nil
}

func (a *Aggregator) bestVet(ctx context.Context, stop models.Stop) (*models.Veterinarian, error) {
	records, err := a.search.SearchNearby(ctx, VetPolicy.Nearby(stop.Coords))
	if err != nil {
		return nil, err
	}

	var vets []models.Veterinarian
	for _, r := range records {
		if !VetPolicy.Accepts(r, stop.Coords) {
			continue
		}
		vet := models.Veterinarian{
			Place:     place(r, stop.Name, coordsOr(r, stop.Coords)),
			Is24Hours: IsOpen24Hours(r.Name, r.OpeningHours),
			Phone:     r.Phone,
			PlaceID:   r.ID,
		}
		if vet.Is24Hours {
			vet.Score *= 1.5
		}
		vets = append(vets, vet)
	}

	best, ok := ranking.Best(vets)
	if !ok {
		slog.Info("no veterinarian found", "stop", stop.Name)
		return nil, nil
	}
	slog.Info("vet selected", "stop", stop.Name, "vet", best.Name, "24h", best.Is24Hours)
	return &best, nil
}

func (a *Aggregator) nearbyAttractions(ctx context.Context, p Policy, kind models.AttractionType, stop models.Stop) ([]models.Attraction, error) {
	records, err := a.search.SearchNearby(ctx, p.Nearby(stop.Coords))
	if err != nil {
		return nil, err
	}
	return a.attractions(ctx, p, kind, stop, records), nil
}

func (a *Aggregator) textAttractions(ctx context.Context, p Policy, kind models.AttractionType, stop models.Stop) ([]models.Attraction, error) {
	records, err := a.search.SearchText(ctx, p.Text(stop.Name, stop.Coords))
	if err != nil {
		return nil, err
	}
	return a.attractions(ctx, p, kind, stop, records), nil
}

func (a *Aggregator) attractions(ctx context.Context, p Policy, kind models.AttractionType, stop models.Stop, records []PlaceRecord) []models.Attraction {
	var out []models.Attraction
	for _, r := range records {
		if !p.Accepts(r, stop.Coords) {
			continue
		}
		out = append(out, models.Attraction{
			Place: place(r, stop.Name, coordsOr(r, stop.Coords)),
			Type:  kind,
		})
	}

	out = ranking.Top(out, p.Keep)
	if kind == models.AttractionMuseum {
		for i := range out {
			out[i].WikipediaURL, out[i].WikipediaSummary = a.article(ctx, out[i].Name)
		}
	}
	return out
}

// routeParks scans the route corridor for major parks
func (a *Aggregator) routeParks(ctx context.Context, geometry []models.Coordinates) ([]models.Attraction, error) {
	seen := make(map[string]bool)
	var parks []models.Attraction

	for _, pt := range routing.SamplePoints(geometry, a.opts.ParkSampleMiles) {
		records, err := a.search.SearchNearby(ctx, RouteParkPolicy.Nearby(pt.Coords))
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Warn("route park search failed", "mile", int(distance.MetersToMiles(pt.CumulativeMeters)), "error", err)
			continue
		}
		for _, r := range records {
			if seen[r.ID] || !RouteParkPolicy.Accepts(r, pt.Coords) {
				continue
			}
			seen[r.ID] = true
			parks = append(parks, models.Attraction{
				Place: place(r, milesFromStart(pt.CumulativeMeters), coordsOr(r, pt.Coords)),
				Type:  models.AttractionPark,
			})
		}
	}

	return ranking.MergeRank(parks), nil
}

// viewpoints scans the route corridor for scenic overlooks
func (a *Aggregator) viewpoints(ctx context.Context, geometry []models.Coordinates) ([]models.Attraction, error) {
	seen := make(map[string]bool)
	var viewpoints []models.Attraction

	for _, pt := range routing.SamplePoints(geometry, a.opts.ViewpointSampleMiles) {
		records, err := a.search.SearchText(ctx, ViewpointPolicy.Text("", pt.Coords))
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Warn("viewpoint search failed", "mile", int(distance.MetersToMiles(pt.CumulativeMeters)), "error", err)
			continue
		}
		for _, r := range records {
			if r.Location == nil || seen[r.ID] {
				continue
			}
			if !ViewpointPolicy.Accepts(r, pt.Coords) || !IsViewpoint(r.Name, r.FormattedAddress) {
				continue
			}
			seen[r.ID] = true
			viewpoints = append(viewpoints, models.Attraction{
				Place: place(r, milesFromStart(pt.CumulativeMeters), *r.Location),
				Type:  models.AttractionViewpoint,
			})
		}
	}

	return ranking.MergeRank(viewpoints), nil
}

func (a *Aggregator) nationalParks(ctx context.Context, st State) ([]models.NationalPark, error) {
	records, err := a.search.SearchText(ctx, NationalParkPolicy.Text(st.Name, models.Coordinates{}))
	if err != nil {
		return nil, err
	}

	var parks []models.NationalPark
	for _, r := range records {
		if !IsNationalSite(r.Name, r.FormattedAddress, st.Name) {
			continue
		}
		parks = append(parks, models.NationalPark{
			Place: place(r, st.Name, r.Coords()),
			State: st.Name,
		})
	}

	forests, err := a.search.SearchText(ctx, NationalForestPolicy.Text(st.Name, models.Coordinates{}))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		slog.Warn("national forest search failed", "state", st.Name, "error", err)
	}
	var extra []models.NationalPark
	for _, r := range forests {
		if !IsNationalForest(r.Name, r.FormattedAddress, st.Name) {
			continue
		}
		// unrated forests still deserve a place in the list
		if r.Rating == 0 && r.ReviewCount == 0 {
			r.Rating, r.ReviewCount = 4.5, 10
		}
		extra = append(extra, models.NationalPark{
			Place: place(r, st.Name, r.Coords()),
			State: st.Name,
		})
	}

	parks = ranking.Top(ranking.MergeRank(parks, extra), NationalParkPolicy.Keep)
	for i := range parks {
		parks[i].WikipediaURL, parks[i].WikipediaSummary = a.article(ctx, parks[i].Name)
	}
	return parks, nil
}

func (a *Aggregator) monuments(ctx context.Context, st State) ([]models.Attraction, error) {
	records, err := a.search.SearchText(ctx, MonumentPolicy.Text(st.Name, models.Coordinates{}))
	if err != nil {
		return nil, err
	}

	var monuments []models.Attraction
	for _, r := range records {
		if !IsMonument(r.Name, r.FormattedAddress, st.Name) {
			continue
		}
		monuments = append(monuments, models.Attraction{
			Place: place(r, st.Name, r.Coords()),
			Type:  models.AttractionMonument,
		})
	}

	monuments = ranking.MergeRank(monuments)
	for i := range monuments {
		monuments[i].WikipediaURL, monuments[i].WikipediaSummary = a.article(ctx, monuments[i].Name)
	}
	return monuments, nil
}

// article returns the Wikipedia URL and summary for name, or empty strings
func (a *Aggregator) article(ctx context.Context, name string) (string, string) {
	if a.articles == nil {
		return "", ""
	}
	art, err := a.articles.Article(ctx, name)
	if err != nil {
		if ctx.Err() == nil {
			slog.Warn("wikipedia lookup failed", "query", name, "error", err)
		}
		return "", ""
	}
	if art == nil {
		return "", ""
	}
	return art.URL, art.Summary
}

func (r Result) String() string {
	return fmt.Sprintf("%d hotels, %d waypoint hotels, %d vets, %d attractions",
		len(r.Hotels), len(r.WaypointHotels), len(r.Vets), r.Attractions.Total())
}
