// Package logging wraps charmbracelet/log into the small set of
// conventions this pipeline needs: debug-level per-frame rejects,
// warn-level resolver misses and unknown response codes, error-level
// setup-time fatals. Grounded on the teacher's deviceid.go, the only
// file in the teacher that imports charmbracelet/log.
package logging

import (
	"os"

	"github.com/charmbracelet/log"
)

// Logger is the package-wide handle every component logs through. It
// is a var, not a singleton behind a getter, so tests can swap it for
// a buffered logger and assert on output.
var Logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Prefix:          "regextract",
})

// FrameRejected logs a per-frame validity-gate miss at debug level —
// expected, high-volume, and not worth the caller's attention.
func FrameRejected(protocol string, timestamp int64, reason string) {
	Logger.Debug("frame rejected", "protocol", protocol, "timestamp", timestamp, "reason", reason)
}

// ResolverMiss logs a non-fatal "no register at this address" event.
func ResolverMiss(address string) {
	Logger.Warn("no register at address", "address", address)
}

// UnknownResponse logs a non-fatal unrecognized response code.
func UnknownResponse(protocol string, raw any) {
	Logger.Warn("unknown response code", "protocol", protocol, "raw", raw)
}

// ConfigFatal logs a setup-time configuration error before the caller
// aborts startup.
func ConfigFatal(err error) {
	Logger.Error("configuration error", "err", err)
}
