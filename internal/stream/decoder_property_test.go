package stream

import (
	"slices"
	"sort"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

// asciiStreamGen generates device output made of numbers, separators and
// line terminators
func asciiStreamGen() *rapid.Generator[string] {
	return rapid.StringOfN(rapid.SampledFrom([]rune("0123456789,.-e x\r\n")), 0, 200, -1)
}

func TestPropertyLineDecoderChunkingInvariant(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		input := asciiStreamGen().Draw(t, "input")
		cuts := rapid.SliceOfN(rapid.IntRange(0, len(input)), 0, 20).Draw(t, "cuts")
		sort.Ints(cuts)

		whole := NewLineDecoder(nil)
		want, err := whole.Feed([]byte(input))
		if err != nil {
			t.Fatalf("feed whole: %v", err)
		}

		chunked := NewLineDecoder(nil)
		var got []string
		prev := 0
		for _, cut := range append(cuts, len(input)) {
			lines, err := chunked.Feed([]byte(input[prev:cut]))
			if err != nil {
				t.Fatalf("feed chunk: %v", err)
			}
			got = append(got, lines...)
			prev = cut
		}

		if !slices.Equal(want, got) {
			t.Fatalf("lines differ: whole=%q chunked=%q", want, got)
		}
		if whole.Carry() != chunked.Carry() {
			t.Fatalf("carry differs: whole=%q chunked=%q", whole.Carry(), chunked.Carry())
		}
		for _, line := range got {
			if strings.ContainsAny(line, "\r\n") {
				t.Fatalf("line %q still holds a terminator", line)
			}
		}
	})
}

func TestPropertyParseWidthBounded(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		line := rapid.StringOfN(rapid.SampledFrom([]rune("0123456789,.- ab")), 0, 60, -1).Draw(t, "line")
		channels := rapid.IntRange(1, 8).Draw(t, "channels")

		rec := Parse(line, channels)
		if rec.Width > channels {
			t.Fatalf("width %d exceeds %d channels", rec.Width, channels)
		}
		if strings.TrimSpace(line) != "" {
			if want := min(channels, len(strings.Split(line, ","))); rec.Width != want {
				t.Fatalf("width %d, want %d for %q", rec.Width, want, line)
			}
		}
		for _, s := range rec.Samples {
			if s.Channel < 0 || s.Channel >= rec.Width {
				t.Fatalf("sample channel %d outside width %d", s.Channel, rec.Width)
			}
		}
	})
}
