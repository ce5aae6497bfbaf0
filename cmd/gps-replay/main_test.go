package main

import (
	"strings"
	"testing"
	"time"

	"github.com/north-road/gps-replay/gps"
)

func TestFormatFix(t *testing.T) {
	fix := gps.Fix{
		Timestamp: time.Date(2021, 3, 21, 10, 0, 1, 0, time.UTC),
		Fields: gps.Fields{
			Latitude: 48.117300, HasLatitude: true,
			Longitude: 11.516667, HasLongitude: true,
			Speed: 12.5, HasSpeed: true,
			Satellites: 8, HasSatellites: true,
		},
	}

	out := formatFix(fix)
	for _, want := range []string{"2021-03-21T10:00:01Z", "lat=48.117300", "lon=11.516667", "speed=12.5", "sats=8"} {
		if !strings.Contains(out, want) {
			t.Errorf("formatFix output missing %q: %s", want, out)
		}
	}
	// absent fields render as dashes
	for _, want := range []string{"alt=-", "course=-", "quality=-"} {
		if !strings.Contains(out, want) {
			t.Errorf("formatFix should dash absent field %q: %s", want, out)
		}
	}
}

func TestRootCmdHasSubcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"info", "dump", "play"} {
		found := false
		for _, c := range root.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command missing %q subcommand", name)
		}
	}
}
