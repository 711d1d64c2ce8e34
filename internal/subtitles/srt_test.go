package subtitles

import (
	"errors"
	"math"
	"testing"

	"github.com/patrickprogramme/reelscribe/pkg/model"
)

func TestToSRT(t *testing.T) {
	tests := []struct {
		name string
		in   []model.Segment
		want string
	}{
		{
			name: "empty",
			in:   nil,
			want: "",
		},
		{
			name: "single cue",
			in:   []model.Segment{{Start: 0, End: 1.5, Text: "hi"}},
			want: "1\n00:00:00,000 --> 00:00:01,500\nhi\n\n",
		},
		{
			name: "numbering follows input order",
			in: []model.Segment{
				{Start: 0, End: 2, Text: "first"},
				{Start: 2, End: 3661.234, Text: "second"},
			},
			want: "1\n00:00:00,000 --> 00:00:02,000\nfirst\n\n" +
				"2\n00:00:02,000 --> 01:01:01,234\nsecond\n\n",
		},
		{
			name: "text kept verbatim",
			in:   []model.Segment{{Start: 1, End: 2, Text: "  two\nlines "}},
			want: "1\n00:00:01,000 --> 00:00:02,000\n  two\nlines \n\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ToSRT(tc.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("ToSRT() = %q; want %q", got, tc.want)
			}
		})
	}
}

func TestToSRT_Deterministic(t *testing.T) {
	segs := []model.Segment{
		{Start: 0.5, End: 1.25, Text: "a"},
		{Start: 1.25, End: 7.333, Text: "b"},
		{Start: 7.333, End: 12.1, Text: "c"},
	}
	first, err := ToSRT(segs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := ToSRT(segs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("ToSRT is not deterministic:\n%q\n%q", first, second)
	}
}

func TestToSRT_InvalidOffsetFailsFast(t *testing.T) {
	segs := []model.Segment{
		{Start: 0, End: 1, Text: "ok"},
		{Start: model.Seconds(math.NaN()), End: 2, Text: "bad"},
	}
	out, err := ToSRT(segs)
	if !errors.Is(err, model.ErrInvalidTimestamp) {
		t.Fatalf("expected ErrInvalidTimestamp, got %v", err)
	}
	if out != "" {
		t.Errorf("no partial output expected, got %q", out)
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		base, lang string
		f          model.Format
		want       string
	}{
		{"instagram DA1b2C3", "en", model.FormatSRT, "Instagram DA1b2C3 (en).srt"},
		{"youtube abc", "", model.FormatVTT, "Youtube abc (und).vtt"},
		{"a/b:c", "fr", model.FormatTXT, "A b-c (fr).txt"},
		{"", "en", model.FormatTXT, "untitled (en).txt"},
	}
	for _, tc := range tests {
		if got := Filename(tc.base, tc.lang, tc.f); got != tc.want {
			t.Errorf("Filename(%q, %q, %q) = %q; want %q", tc.base, tc.lang, tc.f, got, tc.want)
		}
	}
}
