package gps

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
)

// LoadStats summarizes one log load for diagnostics
type LoadStats struct {
	LinesRead        int
	ChecksumFailures int
	UnknownSentences int
	DroppedTimeless  int
	DroppedBackward  int
	FieldConflicts   int
	Fixes            int
}

// Loader reads an NMEA log in bounded chunks and builds the time-ordered fix
// sequence. Chunked reading keeps index construction from blocking the host's
// event loop on large logs; the chunk size has no effect on the output.
type Loader struct {
	config Config
}

// NewLoader creates a loader with the given configuration
func NewLoader(config Config) (*Loader, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Loader{config: config}, nil
}

// Load parses the log at path into fixes. The file is scanned once for its
// first date so that time-of-day-only sentences before the first date-bearing
// sentence can still be anchored, then parsed in full. Cancelling ctx between
// chunk reads abandons the partial build.
func (l *Loader) Load(ctx context.Context, path string) ([]Fix, LoadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{}, errors.Wrapf(err, "opening log %s", path)
	}
	defer f.Close()

	seed, err := l.scanInitialDate(ctx, f)
	if err != nil {
		return nil, LoadStats{}, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, LoadStats{}, errors.Wrap(err, "rewinding log")
	}

	tokenizer := NewTokenizer(l.config.RequireChecksum)
	extractor := NewExtractor(l.config.Logger)
	extractor.SeedDate(seed)
	aggregator := NewAggregator(l.config.Logger)

	stats := LoadStats{}
	feed := func(s Sentence) {
		fields, ok := extractor.Extract(s)
		if !ok {
			stats.UnknownSentences++
			l.config.Logger.Debug().Str("sentence", s.Raw).Msg("unrecognized sentence type")
			return
		}
		aggregator.Add(fields, s.Raw)
	}

	buf := make([]byte, l.config.ChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return nil, LoadStats{}, err
		}
		n, rerr := f.Read(buf)
		if n > 0 {
			for _, s := range tokenizer.Push(buf[:n]) {
				feed(s)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return nil, LoadStats{}, errors.Wrap(rerr, "reading log")
		}
	}
	for _, s := range tokenizer.Flush() {
		feed(s)
	}

	fixes := aggregator.Finish()
	stats.LinesRead = tokenizer.LinesRead()
	stats.ChecksumFailures = tokenizer.ChecksumFailures()
	stats.DroppedTimeless = aggregator.DroppedTimeless()
	stats.DroppedBackward = aggregator.DroppedBackward()
	stats.FieldConflicts = aggregator.FieldConflicts()
	stats.Fixes = len(fixes)

	l.config.Logger.Debug().
		Int("lines", stats.LinesRead).
		Int("checksum_failures", stats.ChecksumFailures).
		Int("unknown", stats.UnknownSentences).
		Int("fixes", stats.Fixes).
		Msg("log loaded")

	if len(fixes) == 0 {
		return nil, stats, ErrNoUsableData
	}
	return fixes, stats, nil
}

// scanInitialDate tokenizes from the current position until the first
// date-bearing sentence and returns its date. A log with no date at all falls
// back to today, since its time-of-day stamps cannot be anchored any better.
func (l *Loader) scanInitialDate(ctx context.Context, r io.Reader) (time.Time, error) {
	tokenizer := NewTokenizer(l.config.RequireChecksum)

	buf := make([]byte, l.config.ChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return time.Time{}, err
		}
		n, rerr := r.Read(buf)
		if n > 0 {
			for _, s := range tokenizer.Push(buf[:n]) {
				if date, ok := dateFromSentence(s); ok {
					return date, nil
				}
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return time.Time{}, errors.Wrap(rerr, "scanning log for date")
		}
	}
	for _, s := range tokenizer.Flush() {
		if date, ok := dateFromSentence(s); ok {
			return date, nil
		}
	}

	l.config.Logger.Warn().Msg("no date stamp found in log, anchoring to today")
	return time.Now().UTC(), nil
}
