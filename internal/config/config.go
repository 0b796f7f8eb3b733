package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Log         LogConfig         `mapstructure:"log"`
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Geocoding   GeocodingConfig   `mapstructure:"geocoding"`
	Routing     RoutingConfig     `mapstructure:"routing"`
	Places      PlacesConfig      `mapstructure:"places"`
	TravelGuide TravelGuideConfig `mapstructure:"travel_guide"`
	Planner     PlannerConfig     `mapstructure:"planner"`
	Categories  Categories        `mapstructure:"categories"`
	Export      ExportConfig      `mapstructure:"export"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig locates the SQLite file. An empty path means the app dir default.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type CacheConfig struct {
	// Backend is one of "sqlite", "valkey" or "none"
	Backend    string        `mapstructure:"backend"`
	ValkeyAddr string        `mapstructure:"valkey_addr"`
	PlacesTTL  time.Duration `mapstructure:"places_ttl"`
}

type GeocodingConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	UserAgent         string        `mapstructure:"user_agent"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Timeout           time.Duration `mapstructure:"timeout"`
	Retries           int           `mapstructure:"retries"`
}

type RoutingConfig struct {
	// Provider is "osrm" or "google"
	Provider      string        `mapstructure:"provider"`
	OSRMURL       string        `mapstructure:"osrm_url"`
	GoogleAPIKey  string        `mapstructure:"google_api_key"`
	GoogleBaseURL string        `mapstructure:"google_base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

type PlacesConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

type TravelGuideConfig struct {
	WikivoyageURL     string        `mapstructure:"wikivoyage_url"`
	WikipediaURL      string        `mapstructure:"wikipedia_url"`
	UserAgent         string        `mapstructure:"user_agent"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

type PlannerConfig struct {
	TargetHours           float64 `mapstructure:"target_hours"`
	AverageSpeedMPH       float64 `mapstructure:"mph"`
	WaypointIntervalMiles float64 `mapstructure:"waypoint_interval_miles"`
	CitySampleMiles       float64 `mapstructure:"city_sample_miles"`
	ParkSampleMiles       float64 `mapstructure:"park_sample_miles"`
	ViewpointSampleMiles  float64 `mapstructure:"viewpoint_sample_miles"`
	Workers               int     `mapstructure:"workers"`
}

// Categories switches individual search categories on or off
type Categories struct {
	Hotels         bool `mapstructure:"hotels"`
	Vets           bool `mapstructure:"vets"`
	Parks          bool `mapstructure:"parks"`
	Museums        bool `mapstructure:"museums"`
	Restaurants    bool `mapstructure:"restaurants"`
	DogParks       bool `mapstructure:"dog_parks"`
	Viewpoints     bool `mapstructure:"viewpoints"`
	NationalParks  bool `mapstructure:"national_parks"`
	Monuments      bool `mapstructure:"monuments"`
	EVChargers     bool `mapstructure:"ev_chargers"`
	WaypointHotels bool `mapstructure:"waypoint_hotels"`
	WikipediaLinks bool `mapstructure:"wikipedia_links"`
	TravelGuides   bool `mapstructure:"travel_guides"`
}

// NeedsPlaces reports whether any enabled category queries the places provider
func (c Categories) NeedsPlaces() bool {
	return c.Hotels || c.Vets || c.Parks || c.Museums || c.Restaurants || c.DogParks ||
		c.Viewpoints || c.NationalParks || c.Monuments || c.EVChargers || c.WaypointHotels
}

// DefaultCategories enables everything except EV chargers
func DefaultCategories() Categories {
	return Categories{
		Hotels: true, Vets: true, Parks: true, Museums: true, Restaurants: true,
		DogParks: true, Viewpoints: true, NationalParks: true, Monuments: true,
		WaypointHotels: true, WikipediaLinks: true, TravelGuides: true,
	}
}

type ExportConfig struct {
	Dir      string `mapstructure:"dir"`
	JSON     bool   `mapstructure:"json"`
	GPX      bool   `mapstructure:"gpx"`
	Markdown bool   `mapstructure:"markdown"`
}

// flagKeys maps CLI flag names onto configuration keys
var flagKeys = map[string]string{
	"log-level":         "log.level",
	"log-format":        "log.format",
	"port":              "server.port",
	"db":                "database.path",
	"cache":             "cache.backend",
	"router":            "routing.provider",
	"target-hours":      "planner.target_hours",
	"mph":               "planner.mph",
	"waypoint-interval": "planner.waypoint_interval_miles",
	"workers":           "planner.workers",
	"ev-chargers":       "categories.ev_chargers",
	"out":               "export.dir",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "10m")

	v.SetDefault("database.path", "")

	v.SetDefault("cache.backend", "sqlite")
	v.SetDefault("cache.valkey_addr", "localhost:6379")
	v.SetDefault("cache.places_ttl", "168h")

	v.SetDefault("geocoding.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocoding.user_agent", "RoadTripPlanner/2.0 (Personal trip planning)")
	v.SetDefault("geocoding.requests_per_second", 1.0)
	v.SetDefault("geocoding.timeout", "10s")
	v.SetDefault("geocoding.retries", 3)

	v.SetDefault("routing.provider", "osrm")
	v.SetDefault("routing.osrm_url", "https://router.project-osrm.org")
	v.SetDefault("routing.google_api_key", "")
	v.SetDefault("routing.google_base_url", "")
	v.SetDefault("routing.timeout", "30s")

	v.SetDefault("places.api_key", "")
	v.SetDefault("places.base_url", "https://places.googleapis.com")
	v.SetDefault("places.requests_per_second", 2.0)
	v.SetDefault("places.timeout", "15s")

	v.SetDefault("travel_guide.wikivoyage_url", "https://en.wikivoyage.org/w/api.php")
	v.SetDefault("travel_guide.wikipedia_url", "https://en.wikipedia.org/w/api.php")
	v.SetDefault("travel_guide.user_agent", "RoadTripPlanner/1.0 (Educational road trip planning tool)")
	v.SetDefault("travel_guide.requests_per_second", 5.0)
	v.SetDefault("travel_guide.timeout", "10s")

	v.SetDefault("planner.target_hours", 8.0)
	v.SetDefault("planner.mph", 65.0)
	v.SetDefault("planner.waypoint_interval_miles", 100.0)
	v.SetDefault("planner.city_sample_miles", 50.0)
	v.SetDefault("planner.park_sample_miles", 25.0)
	v.SetDefault("planner.viewpoint_sample_miles", 25.0)
	v.SetDefault("planner.workers", 1)

	cats := DefaultCategories()
	v.SetDefault("categories.hotels", cats.Hotels)
	v.SetDefault("categories.vets", cats.Vets)
	v.SetDefault("categories.parks", cats.Parks)
	v.SetDefault("categories.museums", cats.Museums)
	v.SetDefault("categories.restaurants", cats.Restaurants)
	v.SetDefault("categories.dog_parks", cats.DogParks)
	v.SetDefault("categories.viewpoints", cats.Viewpoints)
	v.SetDefault("categories.national_parks", cats.NationalParks)
	v.SetDefault("categories.monuments", cats.Monuments)
	v.SetDefault("categories.ev_chargers", cats.EVChargers)
	v.SetDefault("categories.waypoint_hotels", cats.WaypointHotels)
	v.SetDefault("categories.wikipedia_links", cats.WikipediaLinks)
	v.SetDefault("categories.travel_guides", cats.TravelGuides)

	v.SetDefault("export.dir", "")
	v.SetDefault("export.json", true)
	v.SetDefault("export.gpx", true)
	v.SetDefault("export.markdown", true)
}

// Load reads configuration from defaults, an optional config file, a .env
// file, the environment and finally any changed flags. flags may be nil.
func Load(flags *pflag.FlagSet, configDirs ...string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	for _, dir := range configDirs {
		v.AddConfigPath(dir)
	}
	if flags != nil {
		if f := flags.Lookup("config"); f != nil && f.Value.String() != "" {
			v.SetConfigFile(f.Value.String())
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// Environment variables: ROADTRIP_PLANNER_TARGET_HOURS → planner.target_hours
	v.SetEnvPrefix("ROADTRIP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("places.api_key", "ROADTRIP_PLACES_API_KEY", "GOOGLE_PLACES_API_KEY")
	_ = v.BindEnv("routing.google_api_key", "ROADTRIP_ROUTING_GOOGLE_API_KEY", "GOOGLE_MAPS_API_KEY")

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}

	switch c.Cache.Backend {
	case "sqlite", "none":
	case "valkey":
		if c.Cache.ValkeyAddr == "" {
			errs = append(errs, "cache.valkey_addr is required for the valkey backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("cache.backend must be sqlite, valkey or none, got %q", c.Cache.Backend))
	}

	if c.Geocoding.BaseURL == "" {
		errs = append(errs, "geocoding.base_url is required")
	}
	if c.Geocoding.RequestsPerSecond <= 0 {
		errs = append(errs, "geocoding.requests_per_second must be positive")
	}

	switch c.Routing.Provider {
	case "osrm":
		if c.Routing.OSRMURL == "" {
			errs = append(errs, "routing.osrm_url is required for the osrm provider")
		}
	case "google":
		if c.Routing.GoogleAPIKey == "" {
			errs = append(errs, "routing.google_api_key (GOOGLE_MAPS_API_KEY) is required for the google provider")
		}
	default:
		errs = append(errs, fmt.Sprintf("routing.provider must be osrm or google, got %q", c.Routing.Provider))
	}

	if c.Categories.NeedsPlaces() && c.Places.APIKey == "" {
		errs = append(errs, "places.api_key (GOOGLE_PLACES_API_KEY) is required when place categories are enabled")
	}
	if c.Places.RequestsPerSecond <= 0 {
		errs = append(errs, "places.requests_per_second must be positive")
	}

	p := c.Planner
	if p.TargetHours <= 0 {
		errs = append(errs, "planner.target_hours must be positive")
	}
	if p.AverageSpeedMPH <= 0 {
		errs = append(errs, "planner.mph must be positive")
	}
	if p.WaypointIntervalMiles <= 0 {
		errs = append(errs, "planner.waypoint_interval_miles must be positive")
	}
	if p.CitySampleMiles <= 0 {
		errs = append(errs, "planner.city_sample_miles must be positive")
	}
	if p.ParkSampleMiles <= 0 {
		errs = append(errs, "planner.park_sample_miles must be positive")
	}
	if p.ViewpointSampleMiles < 25 || p.ViewpointSampleMiles > 75 {
		errs = append(errs, fmt.Sprintf("planner.viewpoint_sample_miles must be 25-75, got %g", p.ViewpointSampleMiles))
	}
	if p.Workers < 1 {
		errs = append(errs, "planner.workers must be at least 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
