package yolo

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
)

// precision keeps well over six significant digits, enough for a
// sub-pixel round trip on any realistic image size
const precision = 8

// FormatEntry renders an entry as "label cx cy w h"
func FormatEntry(e Entry) string {
	return strconv.Itoa(e.LabelID) + " " +
		formatFloat(e.CX) + " " +
		formatFloat(e.CY) + " " +
		formatFloat(e.W) + " " +
		formatFloat(e.H)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', precision, 64)
}

// Write writes one line per entry
func Write(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)
	for _, e := range entries {
		if _, err := fmt.Fprintln(bw, FormatEntry(e)); err != nil {
			return fmt.Errorf("failed to write entry: %w", err)
		}
	}
	return bw.Flush()
}

// WriteFile truncates filename and writes all entries to it
func WriteFile(filename string, entries []Entry) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := Write(file, entries); err != nil {
		file.Close()
		return fmt.Errorf("%s: %w", filename, err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", filename, err)
	}
	return nil
}
