package analysis

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/philipparndt/gobbox/pkg/yolo"
)

// ImageStats summarizes the annotations of one image
type ImageStats struct {
	Image       string
	NumObjects  int
	MinRelSize  float64 // smallest normalized width or height, +Inf without objects
	MaxRelSize  float64 // largest normalized width or height, 0 without objects
	LabelCounts map[int]int
	Err         error // set when the label file could not be read
}

// AnalyzeEntries computes the statistics of a set of label entries
func AnalyzeEntries(image string, entries []yolo.Entry) ImageStats {
	stats := ImageStats{
		Image:       image,
		MinRelSize:  math.Inf(1),
		LabelCounts: make(map[int]int),
	}

	for _, e := range entries {
		stats.NumObjects++
		stats.MinRelSize = math.Min(stats.MinRelSize, math.Min(e.W, e.H))
		stats.MaxRelSize = math.Max(stats.MaxRelSize, math.Max(e.W, e.H))
		stats.LabelCounts[e.LabelID]++
	}

	return stats
}

// AnalyzeFile reads the label file of an image. A missing label file
// counts as an image without objects.
func AnalyzeFile(image, labelFile string) ImageStats {
	entries, err := yolo.ReadFile(labelFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		stats := AnalyzeEntries(image, nil)
		stats.Err = err
		return stats
	}
	return AnalyzeEntries(image, entries)
}

// Labels returns the label ids present in the image in ascending order
func (s ImageStats) Labels() []int {
	ids := make([]int, 0, len(s.LabelCounts))
	for id := range s.LabelCounts {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Range is an inclusive interval
type Range[T int | float64] struct {
	Min T
	Max T
}

// Contains reports whether v lies in the range
func (r Range[T]) Contains(v T) bool {
	return v >= r.Min && v <= r.Max
}

// ParseIntRange parses "min-max", "min-", "-max" or a single number.
// Open ends are unbounded. An empty string yields nil.
func ParseIntRange(s string) (*Range[int], error) {
	lo, hi, err := splitRange(s, "0", strconv.Itoa(math.MaxInt))
	if err != nil || lo == "" {
		return nil, err
	}
	min, err := strconv.Atoi(lo)
	if err != nil {
		return nil, fmt.Errorf("invalid range %q: %w", s, err)
	}
	max, err := strconv.Atoi(hi)
	if err != nil {
		return nil, fmt.Errorf("invalid range %q: %w", s, err)
	}
	return newRange(s, min, max)
}

// ParseFloatRange is ParseIntRange for relative sizes
func ParseFloatRange(s string) (*Range[float64], error) {
	lo, hi, err := splitRange(s, "0", "+Inf")
	if err != nil || lo == "" {
		return nil, err
	}
	min, err := strconv.ParseFloat(lo, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid range %q: %w", s, err)
	}
	max, err := strconv.ParseFloat(hi, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid range %q: %w", s, err)
	}
	return newRange(s, min, max)
}

func splitRange(s, openMin, openMax string) (string, string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", "", nil
	}
	lo, hi, found := strings.Cut(s, "-")
	if !found {
		return s, s, nil
	}
	lo, hi = strings.TrimSpace(lo), strings.TrimSpace(hi)
	if lo == "" && hi == "" {
		return "", "", fmt.Errorf("invalid range %q", s)
	}
	if lo == "" {
		lo = openMin
	}
	if hi == "" {
		hi = openMax
	}
	return lo, hi, nil
}

func newRange[T int | float64](s string, min, max T) (*Range[T], error) {
	if min > max {
		return nil, fmt.Errorf("invalid range %q: minimum exceeds maximum", s)
	}
	return &Range[T]{Min: min, Max: max}, nil
}

// Filter selects images by name and annotation statistics. Nil criteria
// are disabled.
type Filter struct {
	NamePattern string
	NumObjects  *Range[int]
	RelSize     *Range[float64]
}

// Match reports whether the image passes every enabled criterion. A
// relative size filter with a positive minimum rejects images without
// objects.
func (f Filter) Match(s ImageStats) bool {
	if f.NamePattern != "" && !strings.Contains(filepath.Base(s.Image), f.NamePattern) {
		return false
	}

	if f.RelSize != nil {
		if s.MinRelSize < f.RelSize.Min || s.MaxRelSize > f.RelSize.Max {
			return false
		}
		if f.RelSize.Min > 0 && s.NumObjects == 0 {
			return false
		}
	}

	if f.NumObjects != nil && !f.NumObjects.Contains(s.NumObjects) {
		return false
	}

	return true
}

// Apply returns the stats matching the filter, keeping their order
func (f Filter) Apply(stats []ImageStats) []ImageStats {
	var out []ImageStats
	for _, s := range stats {
		if f.Match(s) {
			out = append(out, s)
		}
	}
	return out
}

// Sort columns
const (
	SortByName       = "name"
	SortByNumObjects = "objects"
	SortByMinRelSize = "min-size"
	SortByMaxRelSize = "max-size"
)

// SortStats sorts stats in place by column. Ties keep name order.
func SortStats(stats []ImageStats, column string, desc bool) error {
	var less func(a, b ImageStats) bool
	switch column {
	case SortByName, "":
		less = func(a, b ImageStats) bool { return a.Image < b.Image }
	case SortByNumObjects:
		less = func(a, b ImageStats) bool { return a.NumObjects < b.NumObjects }
	case SortByMinRelSize:
		less = func(a, b ImageStats) bool { return a.MinRelSize < b.MinRelSize }
	case SortByMaxRelSize:
		less = func(a, b ImageStats) bool { return a.MaxRelSize < b.MaxRelSize }
	default:
		return fmt.Errorf("unknown sort column %q", column)
	}

	sort.SliceStable(stats, func(i, j int) bool {
		if desc {
			return less(stats[j], stats[i])
		}
		return less(stats[i], stats[j])
	})
	return nil
}

// FormatRelSize formats a relative size as a percentage
func FormatRelSize(v float64) string {
	if math.IsInf(v, 0) {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", v*100)
}
