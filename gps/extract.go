package gps

import (
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Extractor turns classified sentences into sparse field sets. It carries the
// most recently seen date forward so time-of-day-only sentences still produce
// absolute instants, and rolls that date over when the clock wraps past
// midnight. One Extractor is bound to one parsing session; a new connect gets
// a fresh one.
type Extractor struct {
	date    time.Time // midnight UTC of the most recently seen date
	hasDate bool
	clock   time.Duration // most recent time-of-day, for midnight rollover
	log     zerolog.Logger
}

// NewExtractor creates an extractor logging through logger
func NewExtractor(logger zerolog.Logger) *Extractor {
	return &Extractor{log: logger}
}

// SeedDate primes the date carried forward for time-of-day-only sentences
// that arrive before the log's first date-bearing sentence.
func (e *Extractor) SeedDate(date time.Time) {
	y, m, d := date.UTC().Date()
	e.setDate(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// setDate adopts a date the sentence itself carries. The wrap heuristic in
// applyTime only covers sentences that rely on the carried date, so the clock
// reference resets here; otherwise a midnight-crossing sentence with its own
// date field would advance the day twice.
func (e *Extractor) setDate(date time.Time) {
	e.date = date
	e.hasDate = true
	e.clock = 0
}

// Extract pulls the recognized fields out of a sentence. ok is false when the
// sentence family is unknown. A recognized sentence may still yield an empty
// field set (GSA/GSV carry nothing extractable).
func (e *Extractor) Extract(s Sentence) (Fields, bool) {
	switch s.Type {
	case TypeRMC:
		return e.extractRMC(s), true
	case TypeGGA:
		return e.extractGGA(s), true
	case TypeGNS:
		return e.extractGNS(s), true
	case TypeGLL:
		return e.extractGLL(s), true
	case TypeZDA:
		return e.extractZDA(s), true
	case TypeVTG:
		return e.extractVTG(s), true
	case TypeGSA, TypeGSV:
		// satellite status only; the raw line still rides along with the
		// open fix
		return Fields{}, true
	default:
		return Fields{}, false
	}
}

// extractRMC handles the combined-fix sentence: date+time, position, validity
// flag, speed and course. A void fix (status "V") keeps its timestamp but
// contributes no position or motion fields.
func (e *Extractor) extractRMC(s Sentence) Fields {
	var f Fields

	// date field first, so the time field resolves against it
	if d, ok := parseDate(s.field(8)); ok {
		e.setDate(d)
	}
	e.applyTime(&f, s.field(0))

	if s.field(1) != "A" {
		return f
	}

	applyLatLon(&f, s.field(2), s.field(3), s.field(4), s.field(5))
	if v, err := strconv.ParseFloat(s.field(6), 64); err == nil && v >= 0 {
		f.Speed, f.HasSpeed = v, true
	}
	if v, err := strconv.ParseFloat(s.field(7), 64); err == nil {
		f.Course, f.HasCourse = v, true
	}
	return f
}

// extractGGA handles the position-with-altitude sentence: time, position, fix
// quality, satellite count and altitude.
func (e *Extractor) extractGGA(s Sentence) Fields {
	var f Fields

	e.applyTime(&f, s.field(0))
	applyLatLon(&f, s.field(1), s.field(2), s.field(3), s.field(4))
	if v, err := strconv.Atoi(s.field(5)); err == nil {
		f.Quality, f.HasQuality = v, true
	}
	if v, err := strconv.Atoi(s.field(6)); err == nil {
		f.Satellites, f.HasSatellites = v, true
	}
	if v, err := strconv.ParseFloat(s.field(8), 64); err == nil {
		f.Altitude, f.HasAltitude = v, true
	}
	return f
}

// extractGNS handles the multi-constellation fix sentence, which shares the
// GGA layout apart from the mode field.
func (e *Extractor) extractGNS(s Sentence) Fields {
	var f Fields

	e.applyTime(&f, s.field(0))
	applyLatLon(&f, s.field(1), s.field(2), s.field(3), s.field(4))
	if v, err := strconv.Atoi(s.field(6)); err == nil {
		f.Satellites, f.HasSatellites = v, true
	}
	if v, err := strconv.ParseFloat(s.field(8), 64); err == nil {
		f.Altitude, f.HasAltitude = v, true
	}
	return f
}

func (e *Extractor) extractGLL(s Sentence) Fields {
	var f Fields

	e.applyTime(&f, s.field(4))
	if s.field(5) == "A" {
		applyLatLon(&f, s.field(0), s.field(1), s.field(2), s.field(3))
	}
	return f
}

// extractZDA handles the date-and-time sentence. The date fields arrive
// separated, with a four-digit year.
func (e *Extractor) extractZDA(s Sentence) Fields {
	var f Fields

	day, errD := strconv.Atoi(s.field(1))
	month, errM := strconv.Atoi(s.field(2))
	year, errY := strconv.Atoi(s.field(3))
	if errD == nil && errM == nil && errY == nil && validDate(year, month, day) {
		e.setDate(time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC))
	}

	e.applyTime(&f, s.field(0))
	return f
}

// extractVTG handles the course/speed sentence, which carries no timestamp
// and can only be anchored to an already open fix.
func (e *Extractor) extractVTG(s Sentence) Fields {
	var f Fields

	if v, err := strconv.ParseFloat(s.field(0), 64); err == nil {
		f.Course, f.HasCourse = v, true
	}
	if v, err := strconv.ParseFloat(s.field(4), 64); err == nil && v >= 0 {
		f.Speed, f.HasSpeed = v, true
	}
	return f
}

// applyTime resolves an hhmmss.sss time-of-day field against the carried date
// and stores the absolute instant. The field stays absent when the value is
// malformed or no date is known yet.
func (e *Extractor) applyTime(f *Fields, value string) {
	clock, ok := parseClock(value)
	if !ok || !e.hasDate {
		return
	}

	// a time-of-day smaller than the previous one by more than half a day
	// means the clock wrapped past midnight
	if clock < e.clock && e.clock-clock > 12*time.Hour {
		e.date = e.date.AddDate(0, 0, 1)
		e.log.Debug().Time("date", e.date).Msg("clock wrapped, advancing carried date")
	}
	e.clock = clock

	f.Timestamp = e.date.Add(clock)
	f.HasTimestamp = true
}

// dateFromSentence extracts just the date component from a date-bearing
// sentence, used to locate the log's first date before full parsing.
func dateFromSentence(s Sentence) (time.Time, bool) {
	switch s.Type {
	case TypeRMC:
		return parseDate(s.field(8))
	case TypeZDA:
		day, errD := strconv.Atoi(s.field(1))
		month, errM := strconv.Atoi(s.field(2))
		year, errY := strconv.Atoi(s.field(3))
		if errD != nil || errM != nil || errY != nil || !validDate(year, month, day) {
			return time.Time{}, false
		}
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
	default:
		return time.Time{}, false
	}
}

// parseClock parses an hhmmss[.sss] time-of-day field into an offset from
// midnight
func parseClock(value string) (time.Duration, bool) {
	if len(value) < 6 {
		return 0, false
	}

	hh, errH := strconv.Atoi(value[0:2])
	mm, errM := strconv.Atoi(value[2:4])
	ss, errS := strconv.Atoi(value[4:6])
	if errH != nil || errM != nil || errS != nil {
		return 0, false
	}
	if hh > 23 || mm > 59 || ss > 60 {
		return 0, false
	}

	clock := time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute + time.Duration(ss)*time.Second

	// fractional seconds
	if len(value) > 6 {
		frac, err := strconv.ParseFloat("0"+value[6:], 64)
		if err != nil {
			return 0, false
		}
		clock += time.Duration(frac * float64(time.Second))
	}

	return clock, true
}

// parseDate parses a ddmmyy date field. Two-digit years at or above 80 fall
// in the 1900s, everything below in the 2000s.
func parseDate(value string) (time.Time, bool) {
	if len(value) != 6 {
		return time.Time{}, false
	}

	dd, errD := strconv.Atoi(value[0:2])
	mm, errM := strconv.Atoi(value[2:4])
	yy, errY := strconv.Atoi(value[4:6])
	if errD != nil || errM != nil || errY != nil {
		return time.Time{}, false
	}

	if yy >= 80 {
		yy += 1900
	} else {
		yy += 2000
	}
	if !validDate(yy, mm, dd) {
		return time.Time{}, false
	}

	return time.Date(yy, time.Month(mm), dd, 0, 0, 0, 0, time.UTC), true
}

func validDate(year, month, day int) bool {
	return year >= 1 && month >= 1 && month <= 12 && day >= 1 && day <= 31
}

// applyLatLon parses a ddmm.mmmm coordinate pair with hemisphere indicators.
// Out-of-range or malformed values leave the individual field absent.
func applyLatLon(f *Fields, lat, latHem, lon, lonHem string) {
	if v, ok := parseCoordinate(lat, latHem); ok && v >= -90 && v <= 90 {
		f.Latitude, f.HasLatitude = v, true
	}
	if v, ok := parseCoordinate(lon, lonHem); ok && v >= -180 && v <= 180 {
		f.Longitude, f.HasLongitude = v, true
	}
}

// parseCoordinate converts an NMEA [d]ddmm.mmmm coordinate and its hemisphere
// to signed decimal degrees. The minutes always occupy the two digits before
// the decimal point, so the degree width needs no per-field configuration.
func parseCoordinate(value, hemisphere string) (float64, bool) {
	if value == "" {
		return 0, false
	}

	split := strings.IndexByte(value, '.')
	if split < 0 {
		split = len(value)
	}
	degEnd := split - 2
	if degEnd < 1 {
		return 0, false
	}

	deg, errD := strconv.Atoi(value[:degEnd])
	min, errM := strconv.ParseFloat(value[degEnd:], 64)
	if errD != nil || errM != nil || min >= 60 {
		return 0, false
	}

	dec := float64(deg) + min/60
	switch hemisphere {
	case "N", "E":
		return dec, true
	case "S", "W":
		return -dec, true
	default:
		return 0, false
	}
}
