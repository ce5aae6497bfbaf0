package gps

import "strings"

// SentenceType identifies the recognized NMEA sentence families. The set is
// closed: anything else classifies as TypeUnknown and contributes nothing.
type SentenceType int

const (
	TypeUnknown SentenceType = iota
	TypeRMC                  // recommended minimum: date+time, position, validity, speed, course
	TypeGGA                  // fix data: time, position, quality, satellite count, altitude
	TypeGNS                  // GNSS fix data: time, position, satellite count, altitude
	TypeGLL                  // geographic position: position, time, validity
	TypeZDA                  // date and time only
	TypeVTG                  // speed and course over ground, no timestamp
	TypeGSA                  // DOP and active satellites, no timestamp
	TypeGSV                  // satellites in view, no timestamp
)

// String returns the three-character sentence type code
func (t SentenceType) String() string {
	switch t {
	case TypeRMC:
		return "RMC"
	case TypeGGA:
		return "GGA"
	case TypeGNS:
		return "GNS"
	case TypeGLL:
		return "GLL"
	case TypeZDA:
		return "ZDA"
	case TypeVTG:
		return "VTG"
	case TypeGSA:
		return "GSA"
	case TypeGSV:
		return "GSV"
	default:
		return "unknown"
	}
}

// Sentence is a single checksum-validated log line split into its comma
// delimited data fields. Sentences are transient: they are produced by the
// Tokenizer and consumed immediately by the Extractor.
type Sentence struct {
	Type   SentenceType
	Talker string   // talker prefix of the address field, e.g. "GP", "GN"
	Fields []string // data fields; Fields[0] is the first field after the address
	Raw    string   // original line including checksum, without line terminator
}

// field returns the i-th data field, or "" when the sentence is too short
func (s Sentence) field(i int) string {
	if i < 0 || i >= len(s.Fields) {
		return ""
	}
	return s.Fields[i]
}

// classify splits a sentence payload (leading '$' and checksum suffix already
// stripped) on commas and determines its type from the last three characters
// of the address field. The type code position is fixed, so no pattern
// matching is needed.
func classify(payload string) Sentence {
	parts := strings.Split(payload, ",")
	address := parts[0]

	s := Sentence{
		Type:   TypeUnknown,
		Fields: parts[1:],
	}
	if len(address) < 3 {
		return s
	}
	s.Talker = address[:len(address)-3]

	switch address[len(address)-3:] {
	case "RMC":
		s.Type = TypeRMC
	case "GGA":
		s.Type = TypeGGA
	case "GNS":
		s.Type = TypeGNS
	case "GLL":
		s.Type = TypeGLL
	case "ZDA":
		s.Type = TypeZDA
	case "VTG":
		s.Type = TypeVTG
	case "GSA":
		s.Type = TypeGSA
	case "GSV":
		s.Type = TypeGSV
	}

	return s
}
