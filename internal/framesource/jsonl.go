// Package framesource provides a minimal concrete FrameSource: one
// JSON object per line, each holding a timestamp and a signal map.
// This is not a VCD/FSDB reader — those formats stay out of scope per
// spec.md §1 — it exists only so the CLI and pipeline tests have a
// frame source to iterate without inventing a binary waveform parser.
// Grounded on the teacher's line-oriented stdin readers (kissutil.go,
// gen_packets.go).
package framesource

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/MBarae/waveform-reg-access-extractor/internal/model"
)

type jsonlFrame struct {
	Timestamp int64          `json:"timestamp"`
	Signals   map[string]any `json:"signals"`
}

// JSONL reads sample frames from a line-oriented JSON stream.
type JSONL struct {
	scanner   *bufio.Scanner
	lastFrame int64
	seenAny   bool
}

// NewJSONL wraps r as a FrameSource.
func NewJSONL(r io.Reader) *JSONL {
	return &JSONL{scanner: bufio.NewScanner(r)}
}

// Next implements pipeline.FrameSource.
func (j *JSONL) Next() (model.SampleFrame, bool, error) {
	for j.scanner.Scan() {
		line := strings.TrimSpace(j.scanner.Text())
		if line == "" {
			continue
		}
		var f jsonlFrame
		if err := json.Unmarshal([]byte(line), &f); err != nil {
			return model.SampleFrame{}, false, fmt.Errorf("framesource: invalid frame line %q: %w", line, err)
		}
		// encoding/json decodes every JSON number as float64; hand
		// integral ones to the recognizers as int64.
		for name, v := range f.Signals {
			if n, ok := v.(float64); ok && n == math.Trunc(n) {
				f.Signals[name] = int64(n)
			}
		}
		if j.seenAny && f.Timestamp < j.lastFrame {
			return model.SampleFrame{}, false, fmt.Errorf(
				"framesource: non-monotonic timestamp %d after %d", f.Timestamp, j.lastFrame)
		}
		j.lastFrame = f.Timestamp
		j.seenAny = true
		return model.SampleFrame{Timestamp: f.Timestamp, Signals: f.Signals}, true, nil
	}
	if err := j.scanner.Err(); err != nil {
		return model.SampleFrame{}, false, fmt.Errorf("framesource: read: %w", err)
	}
	return model.SampleFrame{}, false, nil
}
