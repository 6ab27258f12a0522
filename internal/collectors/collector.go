// Package collectors reads the hardware counter vocabulary for a target
// process directly through the perf_event_open interface, producing the same
// counter dump artifacts the text extractor consumes.
package collectors

import (
	"fmt"
	"os"
	"strings"
)

// Sample is one measured counter, keyed by its perf stat label.
type Sample struct {
	Label string
	Value uint64
}

// WriteDump writes samples as counter dump lines, one "<count> <label>" per
// line, matching the perf stat text format the extractor parses.
func WriteDump(path string, samples []Sample) error {
	var b strings.Builder
	for _, sample := range samples {
		fmt.Fprintf(&b, "%16s      %s\n", withThousands(sample.Value), sample.Label)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write counter dump %s: %w", path, err)
	}
	return nil
}

// withThousands formats a count with comma separators, perf stat style.
func withThousands(v uint64) string {
	digits := fmt.Sprintf("%d", v)
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
