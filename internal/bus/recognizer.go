// Package bus implements the per-protocol state recognizers that turn
// a pair of sample frames into a raw bus transaction. AHB and APB are
// the two protocols this spec covers; Recognizer is the contract any
// future protocol addition implements.
package bus

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/MBarae/waveform-reg-access-extractor/internal/model"
)

// SignalMapping maps a recognizer's logical signal names to the
// actual names present in a frame's Signals map. Missing entries
// default to identity (logical name == frame key).
type SignalMapping map[string]string

// resolve returns the frame key a logical name maps to.
func (m SignalMapping) resolve(logical string) string {
	if m != nil {
		if actual, ok := m[logical]; ok {
			return actual
		}
	}
	return logical
}

// Recognizer is the capability set every protocol recognizer exposes,
// per spec.md §4.1.
type Recognizer interface {
	ProtocolName() string
	RequiredSignals() []string
	OptionalSignals() []string
	HexSignals() []string
	IsValidTransaction(frame model.SampleFrame) bool
	TransactionType(frame model.SampleFrame) model.Operation
	ExtractTransaction(frame, next model.SampleFrame) (model.RawTransaction, bool)
}

// Constructor builds a Recognizer given a signal mapping (nil or
// empty means identity mapping throughout).
type Constructor func(mapping SignalMapping) Recognizer

// CheckRequiredSignals validates that every required logical signal
// resolves to something the frame stream is expected to carry. It
// does not inspect actual frame contents (that's a per-frame parse
// concern) — it only validates the mapping/signal-name contract at
// setup time, per spec.md §7's configuration-error class.
func CheckRequiredSignals(r Recognizer, presentSignals map[string]struct{}, mapping SignalMapping) error {
	var missing []string
	for _, logical := range r.RequiredSignals() {
		actual := mapping.resolve(logical)
		if _, ok := presentSignals[actual]; !ok {
			missing = append(missing, fmt.Sprintf("%s (mapped to %q)", logical, actual))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s: missing required signal(s): %s", r.ProtocolName(), strings.Join(missing, ", "))
	}
	return nil
}

// lookup resolves a logical signal name through mapping and fetches
// its raw value from frame.Signals, tolerating absence.
func lookup(frame model.SampleFrame, mapping SignalMapping, logical string) (any, bool) {
	actual := mapping.resolve(logical)
	v, ok := frame.Signals[actual]
	return v, ok
}

// bitValue interprets a raw signal value as a single logic bit.
// Accepts "0"/"1", the characters 'x'/'z' (returned as !ok), or
// integers 0/1. Any other content is treated as invalid (!ok), per
// spec.md §6 normalization rules.
func bitValue(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		if v == 0 || v == 1 {
			return v, true
		}
	case int64:
		if v == 0 || v == 1 {
			return int(v), true
		}
	case string:
		s := strings.TrimSpace(v)
		switch s {
		case "0":
			return 0, true
		case "1":
			return 1, true
		case "x", "X", "z", "Z":
			return 0, false
		}
		if n, err := strconv.Atoi(s); err == nil && (n == 0 || n == 1) {
			return n, true
		}
	}
	return 0, false
}

// hexValue interprets a raw signal value as a big-endian hexadecimal
// integer of arbitrary width. Accepts strings with or without a "0x"
// prefix (always read as hex digits) and bare integers (taken at their
// numeric value).
func hexValue(raw any) (*big.Int, bool) {
	switch v := raw.(type) {
	case int:
		return big.NewInt(int64(v)), true
	case int64:
		return big.NewInt(v), true
	case uint64:
		return new(big.Int).SetUint64(v), true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, false
		}
		lower := strings.ToLower(s)
		if strings.ContainsAny(lower, "xz") && !strings.HasPrefix(lower, "0x") {
			return nil, false
		}
		trimmed := strings.TrimPrefix(lower, "0x")
		n, ok := new(big.Int).SetString(trimmed, 16)
		if !ok {
			return nil, false
		}
		return n, true
	}
	return nil, false
}

// hexString formats a raw hex-signal value as a "0x"-prefixed string.
// When the raw value is already a string, its hex digits (sans "0x")
// are preserved verbatim so leading zeros — and therefore the
// signal's captured bit width — survive into the RawTransaction, per
// spec.md §8's round-trip/reconstruction invariants.
func hexString(raw any) (string, bool) {
	if s, ok := raw.(string); ok {
		trimmed := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
		if trimmed == "" {
			return "", false
		}
		if _, ok := new(big.Int).SetString(trimmed, 16); !ok {
			return "", false
		}
		return "0x" + trimmed, true
	}
	n, ok := hexValue(raw)
	if !ok {
		return "", false
	}
	return "0x" + n.Text(16), true
}
