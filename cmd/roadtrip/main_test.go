package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"road-trip-planner/internal/export"
	"road-trip-planner/internal/models"
	"road-trip-planner/internal/planner"
	"road-trip-planner/internal/testutil"
)

func newTestPlanner() *planner.Planner {
	geocoder := testutil.NewMockGeocoder()
	geocoder.SetLocation("Atlanta, GA", models.Coordinates{Lat: 33.7490, Lng: -84.3880})
	geocoder.SetLocation("Chicago, IL", models.Coordinates{Lat: 41.8781, Lng: -87.6298})
	return planner.New(geocoder, testutil.NewMockRouter(), nil, nil, planner.Settings{})
}

func TestPlanWritesExports(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	err := plan(context.Background(), newTestPlanner(), planner.Request{
		Origin:      "Atlanta, GA",
		Destination: "Chicago, IL",
	}, export.Options{Dir: dir, JSON: true, GPX: true, Markdown: true}, &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "[geocoding] Geocoding locations\n")
	assert.Contains(t, out.String(), "Road Trip: Atlanta, GA → Chicago, IL\n")
	assert.Contains(t, out.String(), "  1. Atlanta, GA\n")

	for _, name := range []string{
		"trip_Atlanta_GA_Chicago_IL_data.json",
		"trip_Atlanta_GA_Chicago_IL.gpx",
		"trip_Atlanta_GA_Chicago_IL_summary.md",
	} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
		assert.Contains(t, out.String(), "Saved "+filepath.Join(dir, name))
	}
}

func TestPlanUnknownOrigin(t *testing.T) {
	var out bytes.Buffer
	err := plan(context.Background(), newTestPlanner(), planner.Request{
		Origin:      "Atlantis",
		Destination: "Chicago, IL",
	}, export.Options{Dir: t.TempDir(), JSON: true}, &out)

	var notFound *planner.ErrInputNotFound
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "origin", notFound.Role)
}

func TestRunUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no command", nil, "usage: roadtrip plan"},
		{"unknown command", []string{"drive"}, "usage: roadtrip plan"},
		{"missing destination", []string{"plan", "Atlanta, GA"}, "Error: expected ORIGIN and DESTINATION, got 1 arguments\n"},
		{"bad flag", []string{"plan", "--nope", "A", "B"}, "Error: unknown flag: --nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(tt.args, &stdout, &stderr)
			assert.Equal(t, 1, code)
			assert.Contains(t, stderr.String(), tt.want)
		})
	}
}
