// internal/stream/parser.go
package stream

import (
	"strconv"
	"strings"
)

// Sample is one numeric value for one plot channel
type Sample struct {
	Channel int     `json:"channel"`
	Value   float64 `json:"value"`
}

// Record is the parse result of one line. Width is the number of channels
// the line addresses; channels below Width without a sample had a
// malformed field.
type Record struct {
	Width   int      `json:"width"`
	Samples []Sample `json:"samples"`
}

// Parse splits line on commas and converts the first channels fields to
// numbers. Surrounding whitespace is ignored and fields that are not
// numbers produce no sample. A blank or whitespace-only line has Width 0,
// so it advances no channel rather than counting as one empty field.
func Parse(line string, channels int) Record {
	if channels <= 0 || strings.TrimSpace(line) == "" {
		return Record{}
	}

	fields := strings.Split(line, ",")
	width := min(channels, len(fields))

	rec := Record{Width: width, Samples: make([]Sample, 0, width)}
	for i := 0; i < width; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
		if err != nil {
			continue
		}
		rec.Samples = append(rec.Samples, Sample{Channel: i, Value: v})
	}
	return rec
}

// Value returns the sample for channel ch
func (r Record) Value(ch int) (float64, bool) {
	for _, s := range r.Samples {
		if s.Channel == ch {
			return s.Value, true
		}
	}
	return 0, false
}

// Skipped returns how many addressed channels had no valid value
func (r Record) Skipped() int {
	return r.Width - len(r.Samples)
}
