// Package pipeline implements the frame-pairing driver: it zips a
// lazy frame source into (frame, next_frame) pairs, runs each pair
// through a protocol recognizer and the transaction decoder, and
// yields an ordered stream of decoded transactions. Grounded on the
// teacher's appserver.go accept loop, which pairs an incoming
// connection with its own goroutine and tears down cleanly on
// cancellation.
package pipeline

import (
	"context"
	"fmt"

	"github.com/MBarae/waveform-reg-access-extractor/internal/bus"
	"github.com/MBarae/waveform-reg-access-extractor/internal/decode"
	"github.com/MBarae/waveform-reg-access-extractor/internal/logging"
	"github.com/MBarae/waveform-reg-access-extractor/internal/model"
)

// FrameSource is the external frame-acquisition collaborator, per
// spec.md §6: an iterator yielding sample frames in non-decreasing
// timestamp order.
type FrameSource interface {
	// Next returns the next frame, or ok=false when the source is
	// exhausted. err is non-nil only on an unrecoverable read failure.
	Next() (frame model.SampleFrame, ok bool, err error)
}

// Result pairs a decoded transaction with any non-fatal decode error
// encountered while producing it, so the consumer can log and
// continue rather than aborting the whole stream (spec.md §7's
// propagation policy: frame/resolver errors are absorbed locally).
type Result struct {
	Transaction model.DecodedTransaction
	Err         error
}

// Run drives the pipeline to completion (or until ctx is canceled),
// emitting decoded transactions on the returned channel in frame
// order. At most one frame of lookahead is buffered at a time, per
// spec.md §5's resource policy. The channel is closed when the source
// is exhausted or ctx is done; no partially formed record is ever
// published.
func Run(ctx context.Context, source FrameSource, recognizer bus.Recognizer, decoder *decode.Decoder) <-chan Result {
	out := make(chan Result)

	go func() {
		defer close(out)

		frame, ok, err := source.Next()
		if err != nil {
			emit(ctx, out, Result{Err: fmt.Errorf("pipeline: frame source: %w", err)})
			return
		}
		if !ok {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			next, ok, err := source.Next()
			if err != nil {
				emit(ctx, out, Result{Err: fmt.Errorf("pipeline: frame source: %w", err)})
				return
			}
			if !ok {
				// No next frame to pair with; the final address phase
				// can't be completed and is dropped, per spec.md §4.1's
				// two-frame extraction contract.
				return
			}

			if recognizer.IsValidTransaction(frame) {
				raw, extracted := recognizer.ExtractTransaction(frame, next)
				if extracted {
					decoded, err := decoder.Decode(raw)
					if err != nil {
						if !emit(ctx, out, Result{Err: fmt.Errorf("pipeline: decode: %w", err)}) {
							return
						}
					} else if !emit(ctx, out, Result{Transaction: decoded}) {
						return
					}
				}
			} else {
				logging.FrameRejected(recognizer.ProtocolName(), frame.Timestamp, "validity gate failed")
			}

			frame = next
		}
	}()

	return out
}

// emit sends r on out, respecting cancellation. Returns false if the
// caller should stop (context canceled).
func emit(ctx context.Context, out chan<- Result, r Result) bool {
	select {
	case out <- r:
		return true
	case <-ctx.Done():
		return false
	}
}
