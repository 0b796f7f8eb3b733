// Package export writes a TripPlan as JSON data, a GPX file for navigation
// apps, and a Markdown summary.
package export

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"road-trip-planner/internal/models"
)

// Options selects which files WriteAll produces
type Options struct {
	Dir      string
	JSON     bool
	GPX      bool
	Markdown bool
}

var unsafeFileChars = strings.NewReplacer("/", "-", "\\", "-", ":", "-")

// Slug names the output files for a plan, e.g. trip_Atlanta_GA_Chicago_IL
func Slug(plan *models.TripPlan) string {
	part := func(s string) string {
		return strings.ReplaceAll(s, ", ", "_")
	}

	slug := "trip_" + part(plan.Origin) + "_" + part(plan.Destination)
	if len(plan.ViaCities) > 0 {
		via := make([]string, len(plan.ViaCities))
		for i, v := range plan.ViaCities {
			via[i] = part(v)
		}
		slug += "_via_" + strings.Join(via, "_")
	}
	slug = strings.ReplaceAll(slug, " ", "_")
	return unsafeFileChars.Replace(slug)
}

// WriteAll writes the enabled exports into opts.Dir and returns their paths
func WriteAll(plan *models.TripPlan, opts Options) ([]string, error) {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}

	base := filepath.Join(dir, Slug(plan))
	writers := []struct {
		enabled bool
		path    string
		write   func(io.Writer, *models.TripPlan) error
	}{
		{opts.JSON, base + "_data.json", WriteJSON},
		{opts.GPX, base + ".gpx", WriteGPX},
		{opts.Markdown, base + "_summary.md", WriteMarkdown},
	}

	var paths []string
	for _, w := range writers {
		if !w.enabled {
			continue
		}
		if err := writeFile(w.path, plan, w.write); err != nil {
			return paths, err
		}
		slog.Info("export written", "path", w.path)
		paths = append(paths, w.path)
	}
	return paths, nil
}

func writeFile(path string, plan *models.TripPlan, write func(io.Writer, *models.TripPlan) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f, plan); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
