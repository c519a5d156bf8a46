package analysis

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/philipparndt/gobbox/pkg/yolo"
)

func TestAnalyzeEntries(t *testing.T) {
	stats := AnalyzeEntries("a.jpg", []yolo.Entry{
		{LabelID: 0, W: 0.1, H: 0.3},
		{LabelID: 2, W: 0.5, H: 0.05},
		{LabelID: 0, W: 0.2, H: 0.2},
	})

	if stats.NumObjects != 3 {
		t.Errorf("expected 3 objects, got %d", stats.NumObjects)
	}
	if math.Abs(stats.MinRelSize-0.05) > 1e-10 {
		t.Errorf("expected min 0.05, got %v", stats.MinRelSize)
	}
	if math.Abs(stats.MaxRelSize-0.5) > 1e-10 {
		t.Errorf("expected max 0.5, got %v", stats.MaxRelSize)
	}
	if stats.LabelCounts[0] != 2 || stats.LabelCounts[2] != 1 {
		t.Errorf("unexpected label counts %v", stats.LabelCounts)
	}
	if labels := stats.Labels(); len(labels) != 2 || labels[0] != 0 || labels[1] != 2 {
		t.Errorf("unexpected labels %v", labels)
	}
}

func TestAnalyzeEntriesEmpty(t *testing.T) {
	stats := AnalyzeEntries("a.jpg", nil)

	if !math.IsInf(stats.MinRelSize, 1) || stats.MaxRelSize != 0 {
		t.Errorf("unexpected sizes for empty image: %v %v", stats.MinRelSize, stats.MaxRelSize)
	}
}

func TestFilterMatch(t *testing.T) {
	small := AnalyzeEntries("dir/cat_01.jpg", []yolo.Entry{{W: 0.02, H: 0.03}})
	big := AnalyzeEntries("dir/dog_01.jpg", []yolo.Entry{{W: 0.4, H: 0.5}, {W: 0.3, H: 0.3}})
	empty := AnalyzeEntries("dir/cat_02.jpg", nil)

	tests := []struct {
		name     string
		filter   Filter
		expected []bool
	}{
		{"no filter", Filter{}, []bool{true, true, true}},
		{"name", Filter{NamePattern: "cat"}, []bool{true, false, true}},
		{"objects", Filter{NumObjects: &Range[int]{Min: 1, Max: 1}}, []bool{true, false, false}},
		{"size from zero", Filter{RelSize: &Range[float64]{Min: 0, Max: 0.1}}, []bool{true, false, true}},
		{"size positive minimum", Filter{RelSize: &Range[float64]{Min: 0.01, Max: 1}}, []bool{true, true, false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i, s := range []ImageStats{small, big, empty} {
				if got := tt.filter.Match(s); got != tt.expected[i] {
					t.Errorf("%s: expected %v, got %v", s.Image, tt.expected[i], got)
				}
			}
		})
	}
}

func TestFilterApplyKeepsOrder(t *testing.T) {
	stats := []ImageStats{
		AnalyzeEntries("b.jpg", nil),
		AnalyzeEntries("a.jpg", []yolo.Entry{{W: 0.1, H: 0.1}}),
		AnalyzeEntries("c.jpg", []yolo.Entry{{W: 0.1, H: 0.1}}),
	}

	got := Filter{NumObjects: &Range[int]{Min: 1, Max: 10}}.Apply(stats)
	if len(got) != 2 || got[0].Image != "a.jpg" || got[1].Image != "c.jpg" {
		t.Errorf("unexpected result %v", got)
	}
}

func TestSortStats(t *testing.T) {
	stats := []ImageStats{
		AnalyzeEntries("b.jpg", []yolo.Entry{{W: 0.1, H: 0.1}}),
		AnalyzeEntries("a.jpg", []yolo.Entry{{W: 0.1, H: 0.1}, {W: 0.2, H: 0.2}}),
		AnalyzeEntries("c.jpg", nil),
	}

	if err := SortStats(stats, SortByNumObjects, true); err != nil {
		t.Fatal(err)
	}
	if stats[0].Image != "a.jpg" || stats[2].Image != "c.jpg" {
		t.Errorf("unexpected order %s %s %s", stats[0].Image, stats[1].Image, stats[2].Image)
	}

	if err := SortStats(stats, SortByName, false); err != nil {
		t.Fatal(err)
	}
	if stats[0].Image != "a.jpg" || stats[1].Image != "b.jpg" {
		t.Errorf("unexpected order %s %s %s", stats[0].Image, stats[1].Image, stats[2].Image)
	}

	if err := SortStats(stats, "color", false); err == nil {
		t.Error("expected an error for an unknown column")
	}
}

func TestFormatRelSize(t *testing.T) {
	if got := FormatRelSize(0.125); got != "12.5%" {
		t.Errorf("unexpected %q", got)
	}
	if got := FormatRelSize(math.Inf(1)); got != "-" {
		t.Errorf("unexpected %q", got)
	}
}

func TestAnalyzeFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.txt")
	bad := filepath.Join(dir, "bad.txt")
	if err := os.WriteFile(good, []byte("1 0.5 0.5 0.2 0.1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte("1 0.5 inf 0.2 0.1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if s := AnalyzeFile("good.jpg", good); s.Err != nil || s.NumObjects != 1 {
		t.Errorf("unexpected stats %+v", s)
	}
	if s := AnalyzeFile("missing.jpg", filepath.Join(dir, "missing.txt")); s.Err != nil || s.NumObjects != 0 {
		t.Errorf("unexpected stats for a missing file %+v", s)
	}
	if s := AnalyzeFile("bad.jpg", bad); !errors.Is(s.Err, yolo.ErrCorruptAnnotationFile) {
		t.Errorf("expected a corrupt file error, got %v", s.Err)
	}
}

func TestParseIntRange(t *testing.T) {
	tests := []struct {
		input    string
		expected *Range[int]
	}{
		{"", nil},
		{"3", &Range[int]{Min: 3, Max: 3}},
		{"1-4", &Range[int]{Min: 1, Max: 4}},
		{" 2 - ", &Range[int]{Min: 2, Max: math.MaxInt}},
		{"-5", &Range[int]{Min: 0, Max: 5}},
	}

	for _, tt := range tests {
		got, err := ParseIntRange(tt.input)
		if err != nil {
			t.Errorf("%q: unexpected error %v", tt.input, err)
			continue
		}
		if (got == nil) != (tt.expected == nil) || (got != nil && *got != *tt.expected) {
			t.Errorf("%q: expected %v, got %v", tt.input, tt.expected, got)
		}
	}

	for _, bad := range []string{"-", "a-3", "5-2"} {
		if _, err := ParseIntRange(bad); err == nil {
			t.Errorf("%q: expected an error", bad)
		}
	}
}

func TestParseFloatRange(t *testing.T) {
	r, err := ParseFloatRange("0.01-")
	if err != nil {
		t.Fatal(err)
	}
	if r.Min != 0.01 || !math.IsInf(r.Max, 1) {
		t.Errorf("unexpected range %v", r)
	}
}
