// Package hotspots extracts ranked function entries from a perf report dump.
//
// The scan is deliberately bounded: only the first 50 lines of the report are
// read and at most the first 20 qualifying entries are kept, in scan order.
// This is not a top-K selection; callers needing true top-K must pre-sort the
// source report.
package hotspots

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

const (
	maxScanLines  = 50
	maxEntries    = 20
	minPercentage = 0.5
	maxLabelLen   = 100
)

// Entry is one ranked line of a profile report.
type Entry struct {
	Percentage float64
	Function   string
}

// Parse reads ranked entries from a perf report. Comment and blank lines are
// skipped; lines that fail structural or numeric parsing are silently dropped.
// Entries at or below 0.5% are discarded and labels are capped at 100 chars.
func Parse(r io.Reader) []Entry {
	var entries []Entry

	scanner := bufio.NewScanner(r)
	for lineNo := 0; lineNo < maxScanLines && scanner.Scan(); lineNo++ {
		line := scanner.Text()

		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}
		if !strings.Contains(line, "%") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 5 {
			continue
		}

		percentage, err := strconv.ParseFloat(strings.TrimSuffix(fields[0], "%"), 64)
		if err != nil {
			continue
		}
		if percentage <= minPercentage {
			continue
		}

		function := strings.Join(fields[4:], " ")
		if len(function) > maxLabelLen {
			function = function[:maxLabelLen]
		}

		entries = append(entries, Entry{
			Percentage: percentage,
			Function:   strings.TrimSpace(function),
		})
		if len(entries) == maxEntries {
			break
		}
	}

	return entries
}

// ParseText is a convenience wrapper over Parse for in-memory report text.
func ParseText(text string) []Entry {
	return Parse(strings.NewReader(text))
}
