package bus

import (
	"github.com/MBarae/waveform-reg-access-extractor/internal/logging"
	"github.com/MBarae/waveform-reg-access-extractor/internal/model"
)

var apbRequired = []string{"pclk", "psel", "penable", "paddr", "pwrite", "pwdata", "prdata"}
var apbOptional = []string{"pslverr", "pready"}
var apbHex = []string{"paddr", "pwdata", "prdata"}

// APBRecognizer recognizes AMBA APB bus transactions: a two-phase
// (setup then access) protocol, simpler than AHB and without
// pipelining.
type APBRecognizer struct {
	mapping SignalMapping
}

// NewAPBRecognizer builds an APB recognizer with the given signal
// mapping (nil means identity).
func NewAPBRecognizer(mapping SignalMapping) Recognizer {
	return &APBRecognizer{mapping: mapping}
}

func (r *APBRecognizer) ProtocolName() string      { return "APB" }
func (r *APBRecognizer) RequiredSignals() []string { return apbRequired }
func (r *APBRecognizer) OptionalSignals() []string { return apbOptional }
func (r *APBRecognizer) HexSignals() []string      { return apbHex }

// IsValidTransaction gates on the access phase: pclk, psel and
// penable all asserted. The setup phase (penable==0) is rejected.
func (r *APBRecognizer) IsValidTransaction(frame model.SampleFrame) bool {
	for _, logical := range []string{"pclk", "psel", "penable"} {
		raw, ok := lookup(frame, r.mapping, logical)
		if !ok {
			return false
		}
		v, ok := bitValue(raw)
		if !ok || v != 1 {
			return false
		}
	}
	return true
}

func (r *APBRecognizer) TransactionType(frame model.SampleFrame) model.Operation {
	if raw, ok := lookup(frame, r.mapping, "pwrite"); ok {
		if v, ok := bitValue(raw); ok && v == 1 {
			return model.OpWrite
		}
	}
	return model.OpRead
}

// ExtractTransaction reads the access-phase frame for address,
// direction and write data, and the completion frame for ready, error
// and read data. If pready is present and deasserted, it emits a
// wait-state record.
func (r *APBRecognizer) ExtractTransaction(frame, next model.SampleFrame) (model.RawTransaction, bool) {
	addr, ok := lookup(frame, r.mapping, "paddr")
	if !ok {
		return model.RawTransaction{}, false
	}
	addrHex, ok := hexString(addr)
	if !ok {
		return model.RawTransaction{}, false
	}

	op := r.TransactionType(frame)
	tx := model.RawTransaction{
		Time:      frame.Timestamp,
		Address:   addrHex,
		Operation: op,
	}

	if preadyRaw, ok := lookup(next, r.mapping, "pready"); ok {
		if ready, ok := bitValue(preadyRaw); ok && ready == 0 {
			tx.WaitState = true
			return tx, true
		}
	}

	switch op {
	case model.OpWrite:
		if v, ok := lookup(frame, r.mapping, "pwdata"); ok {
			if s, ok := hexString(v); ok {
				tx.Value = s
			}
		}
	case model.OpRead:
		if v, ok := lookup(next, r.mapping, "prdata"); ok {
			if s, ok := hexString(v); ok {
				tx.Value = s
			}
		}
	}

	tx.Response = model.RespOKAY
	if pslverrRaw, ok := lookup(next, r.mapping, "pslverr"); ok {
		if v, ok := bitValue(pslverrRaw); ok {
			if v == 1 {
				tx.Response = model.RespERROR
			} else {
				tx.Response = model.RespOKAY
			}
		} else {
			logging.UnknownResponse("APB", pslverrRaw)
			tx.Response = model.RespUnknown
		}
	}

	return tx, true
}
