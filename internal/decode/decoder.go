// Package decode implements the transaction decoder: splitting a raw
// transaction's value into register fields, marking reserved fields,
// and synthesizing unidentified placeholders for every bit range the
// register map doesn't cover.
package decode

import (
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/MBarae/waveform-reg-access-extractor/internal/logging"
	"github.com/MBarae/waveform-reg-access-extractor/internal/model"
)

// Resolver looks up register metadata by address. Implementations
// (IP-XACT, YAML, ...) live in internal/regmap; this package only
// depends on the interface, per spec.md §6.
type Resolver interface {
	FindRegisterByAddress(address *big.Int) (model.RegisterDefinition, bool)
}

// Decoder splits RawTransactions into field-level DecodedTransactions
// against a Resolver.
type Decoder struct {
	Resolver Resolver
}

// New builds a Decoder backed by the given resolver.
func New(resolver Resolver) *Decoder {
	return &Decoder{Resolver: resolver}
}

// Decode turns one raw transaction into its decoded form. A
// wait-state transaction has no value to decode and is passed through
// with a register_info named "unidentified" (has_fields=false, no
// fields) since its value is, per spec.md §3, unobservable.
func (d *Decoder) Decode(tx model.RawTransaction) (model.DecodedTransaction, error) {
	out := model.DecodedTransaction{
		Time:      tx.Time,
		Address:   tx.Address,
		Operation: tx.Operation,
		Value:     tx.Value,
		Response:  tx.Response,
		WaitState: tx.WaitState,
	}

	if tx.WaitState {
		out.RegisterInfo = model.RegisterInfo{Name: model.UnidentifiedRegisterName, HasFields: false}
		return out, nil
	}

	addr, ok := parseHex(tx.Address)
	if !ok {
		return model.DecodedTransaction{}, fmt.Errorf("decode: invalid address %q", tx.Address)
	}
	value, ok := parseHex(tx.Value)
	if !ok {
		return model.DecodedTransaction{}, fmt.Errorf("decode: invalid value %q", tx.Value)
	}

	reg, found := d.Resolver.FindRegisterByAddress(addr)
	if !found {
		logging.ResolverMiss(tx.Address)
		width := hexDigitWidth(tx.Value)
		field := makeField(model.FieldName(0, width-1), 0, width, value, false)
		out.RegisterInfo = model.RegisterInfo{
			Name:      model.UnidentifiedRegisterName,
			HasFields: false,
			Fields:    []model.DecodedField{field},
		}
		return out, nil
	}

	width := reg.Size
	masked := maskTo(value, width)

	fields := decodeFields(reg, masked, width)
	out.RegisterInfo = model.RegisterInfo{
		Name:      reg.Name,
		HasFields: len(reg.Fields) > 0,
		Fields:    fields,
	}
	return out, nil
}

// decodeFields extracts every defined field, then synthesizes
// unidentified fields for any gap in [0, width-1] the map doesn't
// cover, returning everything in ascending bit_offset order.
func decodeFields(reg model.RegisterDefinition, value *big.Int, width int) []model.DecodedField {
	defined := make([]model.FieldDefinition, len(reg.Fields))
	copy(defined, reg.Fields)
	sort.Slice(defined, func(i, j int) bool { return defined[i].BitOffset < defined[j].BitOffset })

	var out []model.DecodedField
	covered := 0 // next bit not yet accounted for by a gap/field, for contiguous-gap detection

	for _, f := range defined {
		if f.BitOffset > covered {
			out = append(out, gapField(covered, f.BitOffset-1, value))
		}
		fieldVal := extractBits(value, f.BitOffset, f.BitWidth)
		out = append(out, makeField(f.Name, f.BitOffset, f.BitWidth, fieldVal, f.IsReserved))
		end := f.BitOffset + f.BitWidth
		if end > covered {
			covered = end
		}
	}

	if covered < width {
		out = append(out, gapField(covered, width-1, value))
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].BitOffset < out[j].BitOffset })
	return out
}

func gapField(lo, hi int, value *big.Int) model.DecodedField {
	w := hi - lo + 1
	v := extractBits(value, lo, w)
	return makeField(model.FieldName(lo, hi), lo, w, v, false)
}

func makeField(name string, offset, width int, value *big.Int, reserved bool) model.DecodedField {
	return model.DecodedField{
		Name:       name,
		BitOffset:  offset,
		BitWidth:   width,
		Value:      formatHex(value, width),
		IsReserved: reserved,
	}
}

// extractBits returns (value >> offset) & ((1 << width) - 1).
func extractBits(value *big.Int, offset, width int) *big.Int {
	shifted := new(big.Int).Rsh(value, uint(offset))
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(width)), big.NewInt(1))
	return shifted.And(shifted, mask)
}

// maskTo masks value to the low `width` bits.
func maskTo(value *big.Int, width int) *big.Int {
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(width)), big.NewInt(1))
	return new(big.Int).And(value, mask)
}

// formatHex renders value as "0x" + hex zero-padded to ceil(width/4)
// digits, per spec.md §3/§4.4.
func formatHex(value *big.Int, width int) string {
	digits := (width + 3) / 4
	if digits == 0 {
		digits = 1
	}
	s := value.Text(16)
	if len(s) < digits {
		s = strings.Repeat("0", digits-len(s)) + s
	}
	return "0x" + s
}

// hexDigitWidth returns the bit width implied by a captured hex
// string's digit count (4 bits per digit), used to size the single
// unidentified field covering a transaction whose address matched no
// register. An empty string yields a width of 1.
func hexDigitWidth(hexStr string) int {
	s := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(hexStr)), "0x")
	if s == "" {
		return 1
	}
	return len(s) * 4
}

// parseHex parses a "0x"-prefixed or bare hex string into a big.Int.
func parseHex(s string) (*big.Int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, false
	}
	return n, true
}
