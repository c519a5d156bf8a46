package yolo

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

var (
	// ErrMalformedLine is returned by ParseLine for lines that are skipped on load
	ErrMalformedLine = errors.New("malformed annotation line")

	// ErrCorruptAnnotationFile is returned when a line carries a non-finite number.
	// A file containing such a line must not be loaded at all.
	ErrCorruptAnnotationFile = errors.New("corrupt annotation file")
)

// Entry is one line of a YOLO label file. Geometry is normalized to
// the image size: center x, center y, width and height.
type Entry struct {
	LabelID int
	CX      float64
	CY      float64
	W       float64
	H       float64
}

// ParseLine parses a single "label cx cy w h" line.
// Fields past the fifth are ignored.
func ParseLine(line string) (Entry, error) {
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return Entry{}, fmt.Errorf("%w: expected 5 fields, got %d", ErrMalformedLine, len(fields))
	}

	label, err := strconv.Atoi(fields[0])
	if err != nil {
		return Entry{}, fmt.Errorf("%w: invalid label %q", ErrMalformedLine, fields[0])
	}

	var values [4]float64
	for i := range values {
		v, err := strconv.ParseFloat(fields[i+1], 64)
		// out of range values parse as +-Inf
		if errors.Is(err, strconv.ErrRange) && math.IsInf(v, 0) {
			return Entry{}, fmt.Errorf("%w: non-finite value %q", ErrCorruptAnnotationFile, fields[i+1])
		}
		if err != nil {
			return Entry{}, fmt.Errorf("%w: invalid number %q", ErrMalformedLine, fields[i+1])
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Entry{}, fmt.Errorf("%w: non-finite value %q", ErrCorruptAnnotationFile, fields[i+1])
		}
		values[i] = v
	}

	return Entry{
		LabelID: label,
		CX:      values[0],
		CY:      values[1],
		W:       values[2],
		H:       values[3],
	}, nil
}

// Read parses all entries from r. Malformed lines are skipped, a corrupt
// line aborts the whole read.
func Read(r io.Reader) ([]Entry, error) {
	scanner := bufio.NewScanner(r)
	var entries []Entry

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		entry, err := ParseLine(line)
		if errors.Is(err, ErrMalformedLine) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		entries = append(entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading annotations: %w", err)
	}

	return entries, nil
}

// ReadFile reads a label file. A missing file yields an error matching
// fs.ErrNotExist, which callers treat as "no annotations yet".
func ReadFile(filename string) ([]Entry, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	entries, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return entries, nil
}
