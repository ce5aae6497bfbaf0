package gps

import "time"

// Fields is the sparse set of values extracted from a single sentence. The
// Has* flags distinguish an absent field from a zero value; a field that fails
// to parse or is out of range is simply left absent.
type Fields struct {
	Timestamp    time.Time
	HasTimestamp bool

	Latitude    float64 // decimal degrees, positive north
	HasLatitude bool

	Longitude    float64 // decimal degrees, positive east
	HasLongitude bool

	Altitude    float64 // meters above mean sea level
	HasAltitude bool

	Speed    float64 // knots
	HasSpeed bool

	Course    float64 // degrees from true north
	HasCourse bool

	Quality    int // fix quality indicator (0 = invalid, 1 = GPS, 2 = DGPS, ...)
	HasQuality bool

	Satellites    int // number of satellites used for the fix
	HasSatellites bool
}

// merge unions src into f. A field already present keeps its value; the names
// of fields where both sides carry differing values are returned so the caller
// can flag the data-quality problem.
func (f *Fields) merge(src Fields) []string {
	var conflicts []string

	if src.HasTimestamp && !f.HasTimestamp {
		f.Timestamp, f.HasTimestamp = src.Timestamp, true
	}
	if src.HasLatitude {
		if !f.HasLatitude {
			f.Latitude, f.HasLatitude = src.Latitude, true
		} else if f.Latitude != src.Latitude {
			conflicts = append(conflicts, "latitude")
		}
	}
	if src.HasLongitude {
		if !f.HasLongitude {
			f.Longitude, f.HasLongitude = src.Longitude, true
		} else if f.Longitude != src.Longitude {
			conflicts = append(conflicts, "longitude")
		}
	}
	if src.HasAltitude {
		if !f.HasAltitude {
			f.Altitude, f.HasAltitude = src.Altitude, true
		} else if f.Altitude != src.Altitude {
			conflicts = append(conflicts, "altitude")
		}
	}
	if src.HasSpeed {
		if !f.HasSpeed {
			f.Speed, f.HasSpeed = src.Speed, true
		} else if f.Speed != src.Speed {
			conflicts = append(conflicts, "speed")
		}
	}
	if src.HasCourse {
		if !f.HasCourse {
			f.Course, f.HasCourse = src.Course, true
		} else if f.Course != src.Course {
			conflicts = append(conflicts, "course")
		}
	}
	if src.HasQuality {
		if !f.HasQuality {
			f.Quality, f.HasQuality = src.Quality, true
		} else if f.Quality != src.Quality {
			conflicts = append(conflicts, "quality")
		}
	}
	if src.HasSatellites {
		if !f.HasSatellites {
			f.Satellites, f.HasSatellites = src.Satellites, true
		} else if f.Satellites != src.Satellites {
			conflicts = append(conflicts, "satellites")
		}
	}

	return conflicts
}

// Fix is a consolidated position/status record for one instant in time,
// holding the union of fields observed across every sentence sharing that
// timestamp. Fixes are immutable once the index they belong to is built.
type Fix struct {
	Timestamp time.Time
	Fields    Fields
	Sentences []string // raw log lines merged into this fix, in arrival order
}

// HasPosition reports whether the fix carries a usable latitude/longitude
// pair. Timestamp-only fixes are legal and act as time anchors, but position
// queries skip them.
func (f Fix) HasPosition() bool {
	return f.Fields.HasLatitude && f.Fields.HasLongitude
}
