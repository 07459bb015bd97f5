package bus

import (
	"github.com/MBarae/waveform-reg-access-extractor/internal/logging"
	"github.com/MBarae/waveform-reg-access-extractor/internal/model"
)

// htrans values, per spec.md §4.2.
const (
	htransIDLE   = 0
	htransBUSY   = 1
	htransNONSEQ = 2
	htransSEQ    = 3
)

// ahbRequired/ahbOptional are the logical signal names the AHB
// recognizer looks for, per spec.md §4.2.
var ahbRequired = []string{"hclk", "htrans", "haddr", "hwrite", "hwdata", "hrdata"}
var ahbOptional = []string{"hready", "hresp"}
var ahbHex = []string{"haddr", "hwdata", "hrdata"}

// AHBRecognizer recognizes AMBA AHB bus transactions: a pipelined,
// two-phase (address then data) protocol.
type AHBRecognizer struct {
	mapping SignalMapping
}

// NewAHBRecognizer builds an AHB recognizer with the given signal
// mapping (nil means identity).
func NewAHBRecognizer(mapping SignalMapping) Recognizer {
	return &AHBRecognizer{mapping: mapping}
}

func (r *AHBRecognizer) ProtocolName() string      { return "AHB" }
func (r *AHBRecognizer) RequiredSignals() []string { return ahbRequired }
func (r *AHBRecognizer) OptionalSignals() []string { return ahbOptional }
func (r *AHBRecognizer) HexSignals() []string      { return ahbHex }

// IsValidTransaction gates on hclk==1 and htrans in {NONSEQ, SEQ}.
// IDLE and BUSY are rejected, as is any malformed or x/z signal.
func (r *AHBRecognizer) IsValidTransaction(frame model.SampleFrame) bool {
	hclkRaw, ok := lookup(frame, r.mapping, "hclk")
	if !ok {
		return false
	}
	hclk, ok := bitValue(hclkRaw)
	if !ok || hclk != 1 {
		return false
	}

	htransRaw, ok := lookup(frame, r.mapping, "htrans")
	if !ok {
		return false
	}
	htrans, ok := hexValue(htransRaw)
	if !ok || !htrans.IsInt64() {
		return false
	}
	v := htrans.Int64()
	return v == htransNONSEQ || v == htransSEQ
}

func (r *AHBRecognizer) TransactionType(frame model.SampleFrame) model.Operation {
	hwriteRaw, ok := lookup(frame, r.mapping, "hwrite")
	if ok {
		if v, ok := bitValue(hwriteRaw); ok && v == 1 {
			return model.OpWrite
		}
	}
	return model.OpRead
}

// ExtractTransaction pairs the address-phase frame with the
// next-cycle data phase. If the slave isn't ready, it emits a
// wait-state record with no value. Otherwise it resolves the data
// word from the appropriate signal for the transaction's direction
// and maps HRESP to a Response.
func (r *AHBRecognizer) ExtractTransaction(frame, next model.SampleFrame) (model.RawTransaction, bool) {
	addr, ok := lookup(frame, r.mapping, "haddr")
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

	if hreadyRaw, ok := lookup(next, r.mapping, "hready"); ok {
		if ready, ok := bitValue(hreadyRaw); ok && ready == 0 {
			tx.WaitState = true
			if hrespRaw, ok := lookup(next, r.mapping, "hresp"); ok {
				tx.Response = ahbResponse(hrespRaw)
			}
			return tx, true
		}
	}

	switch op {
	case model.OpWrite:
		// Prefer the data-phase signal; some captured traces present
		// write data eagerly in the address phase instead. See
		// SPEC_FULL.md §1 open-question resolution.
		if v, ok := lookup(next, r.mapping, "hwdata"); ok {
			if s, ok := hexString(v); ok {
				tx.Value = s
			}
		}
		if tx.Value == "" {
			if v, ok := lookup(frame, r.mapping, "hwdata"); ok {
				if s, ok := hexString(v); ok {
					tx.Value = s
				}
			}
		}
	case model.OpRead:
		if v, ok := lookup(next, r.mapping, "hrdata"); ok {
			if s, ok := hexString(v); ok {
				tx.Value = s
			}
		}
	}

	tx.Response = model.RespOKAY
	if hrespRaw, ok := lookup(next, r.mapping, "hresp"); ok {
		tx.Response = ahbResponse(hrespRaw)
	}

	return tx, true
}

// ahbResponse maps an HRESP signal value to a Response, per spec.md
// §4.2: 0=OKAY, 1=ERROR, 2=RETRY, 3=SPLIT, anything else UNKNOWN.
func ahbResponse(raw any) model.Response {
	n, ok := hexValue(raw)
	if !ok || !n.IsUint64() {
		logging.UnknownResponse("AHB", raw)
		return model.RespUnknown
	}
	switch n.Uint64() {
	case 0:
		return model.RespOKAY
	case 1:
		return model.RespERROR
	case 2:
		return model.RespRETRY
	case 3:
		return model.RespSPLIT
	default:
		logging.UnknownResponse("AHB", raw)
		return model.RespUnknown
	}
}
