// Command roadtrip plans a pet-friendly road trip and writes JSON, GPX and
// Markdown exports.
//
//	roadtrip plan "Atlanta, GA" "Chicago, IL" --via "Nashville, TN" --target-hours 6
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"road-trip-planner/internal/app"
	"road-trip-planner/internal/config"
	"road-trip-planner/internal/database"
	"road-trip-planner/internal/export"
	"road-trip-planner/internal/logging"
	"road-trip-planner/internal/models"
	"road-trip-planner/internal/planner"
)

const usage = `usage: roadtrip plan ORIGIN DESTINATION [flags]

Flags:
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] != "plan" {
		fmt.Fprint(stderr, usage)
		newFlagSet(stderr).PrintDefaults()
		return 1
	}

	flags := newFlagSet(stderr)
	if err := flags.Parse(args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if flags.NArg() != 2 {
		fmt.Fprintf(stderr, "Error: expected ORIGIN and DESTINATION, got %d arguments\n", flags.NArg())
		return 1
	}

	via, _ := flags.GetStringArray("via")
	roundtrip, _ := flags.GetBool("roundtrip")
	req := planner.Request{
		Origin:      flags.Arg(0),
		Destination: flags.Arg(1),
		Via:         via,
		Roundtrip:   roundtrip,
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	opts := export.Options{Dir: cfg.Export.Dir, JSON: cfg.Export.JSON, GPX: cfg.Export.GPX, Markdown: cfg.Export.Markdown}
	if opts.Dir == "" {
		if opts.Dir, err = database.GetDefaultExportDir(); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer a.Close()

	if err := plan(ctx, a.Planner, req, opts, stdout); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newFlagSet(stderr io.Writer) *pflag.FlagSet {
	flags := pflag.NewFlagSet("roadtrip plan", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringArray("via", nil, "intermediate city, repeatable; the trip returns to the origin")
	flags.Bool("roundtrip", false, "return to the origin after the destination")
	flags.Float64("target-hours", 8, "target driving hours per day")
	flags.Float64("mph", 65, "average driving speed")
	flags.Float64("waypoint-interval", 100, "minimum miles between waypoint cities")
	flags.Int("workers", 1, "concurrent place searches")
	flags.Bool("ev-chargers", false, "search EV charging stations")
	flags.String("out", "", "export directory (default ~/.road-trip-planner/trips)")
	flags.String("config", "", "path to config.yaml")
	flags.String("db", "", "SQLite database path")
	flags.String("cache", "sqlite", "place cache backend: sqlite, valkey or none")
	flags.String("router", "osrm", "routing provider: osrm or google")
	flags.String("log-level", "warn", "log level: debug, info, warn, error")
	flags.String("log-format", "text", "log format: text or json")
	return flags
}

type tripPlanner interface {
	Plan(ctx context.Context, req planner.Request, progress planner.ProgressFunc) (*models.TripPlan, error)
}

// plan runs the planner, prints progress and the trip summary, and writes
// the exports
func plan(ctx context.Context, p tripPlanner, req planner.Request, opts export.Options, out io.Writer) error {
	trip, err := p.Plan(ctx, req, func(stage planner.Stage, message string) {
		fmt.Fprintf(out, "[%s] %s\n", stage, message)
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\n%s\n", trip.Name())
	fmt.Fprintf(out, "Distance: %.1f miles, driving time: %.1f hours\n", trip.TotalDistanceMiles(), trip.TotalDurationHours())
	for i, stop := range trip.MajorStops {
		line := fmt.Sprintf("  %d. %s", i+1, stop.Name)
		if h, ok := trip.Hotels[stop.Name]; ok {
			line += fmt.Sprintf("  (hotel: %s)", h.Name)
		}
		fmt.Fprintln(out, line)
	}
	if len(trip.WaypointCities) > 0 {
		fmt.Fprintf(out, "Waypoints: %d, attractions: %d\n", len(trip.WaypointCities), trip.Attractions.Total())
	}

	paths, err := export.WriteAll(trip, opts)
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	for _, path := range paths {
		fmt.Fprintf(out, "Saved %s\n", path)
	}
	return nil
}
