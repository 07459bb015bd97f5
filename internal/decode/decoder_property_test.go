package decode

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/MBarae/waveform-reg-access-extractor/internal/model"
)

// genRegister draws a random, non-overlapping field layout over a
// register of a random standard width, the way the teacher's
// fx25_send_test.go draws random byte slices to exercise bit-stuffing.
func genRegister(t *rapid.T) (model.RegisterDefinition, int) {
	width := rapid.SampledFrom([]int{8, 16, 32, 64, 128}).Draw(t, "width")

	var fields []model.FieldDefinition
	cursor := 0
	for cursor < width {
		if rapid.Float64Range(0, 1).Draw(t, "gap_roll") < 0.3 {
			// Leave a gap of random size so the decoder has to
			// synthesize an unidentified range here.
			gap := rapid.IntRange(1, width-cursor).Draw(t, "gap_width")
			cursor += gap
			continue
		}
		remaining := width - cursor
		w := rapid.IntRange(1, remaining).Draw(t, "field_width")
		fields = append(fields, model.FieldDefinition{
			Name:      rapid.StringMatching(`[a-z][a-z0-9]{0,6}`).Draw(t, "field_name") + "_" + itoaForTest(cursor),
			BitOffset: cursor,
			BitWidth:  w,
		})
		cursor += w
	}

	reg := model.RegisterDefinition{
		Name:        "reg",
		FullAddress: big.NewInt(0x1000),
		Size:        width,
		Fields:      fields,
	}
	return reg, width
}

func itoaForTest(n int) string {
	if n == 0 {
		return "0"
	}
	digits := ""
	for n > 0 {
		digits = string(rune('0'+n%10)) + digits
		n /= 10
	}
	return digits
}

// Property: field coverage. The union of decoded-field bit ranges
// equals [0, W-1] exactly, for non-overlapping defined fields.
func Test_Property_FieldCoverage(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		reg, width := genRegister(t)
		value := rapid.Uint64().Draw(t, "value")

		d := New(newFakeResolver(reg))
		valHex := new(big.Int).SetUint64(value).Text(16)
		out, err := d.Decode(model.RawTransaction{
			Address: "0x1000", Operation: model.OpRead, Value: "0x" + valHex,
		})
		require.NoError(t, err)

		covered := make([]bool, width)
		for _, f := range out.RegisterInfo.Fields {
			for b := f.BitOffset; b < f.BitOffset+f.BitWidth; b++ {
				require.Falsef(t, covered[b], "bit %d covered twice", b)
				covered[b] = true
			}
		}
		for b := 0; b < width; b++ {
			require.Truef(t, covered[b], "bit %d not covered", b)
		}
	})
}

// Property: ordering. Decoded fields are strictly ascending by
// bit_offset.
func Test_Property_Ordering(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		reg, _ := genRegister(t)
		value := rapid.Uint64().Draw(t, "value")

		d := New(newFakeResolver(reg))
		out, err := d.Decode(model.RawTransaction{
			Address: "0x1000", Operation: model.OpRead,
			Value: "0x" + new(big.Int).SetUint64(value).Text(16),
		})
		require.NoError(t, err)

		for i := 1; i < len(out.RegisterInfo.Fields); i++ {
			require.Less(t, out.RegisterInfo.Fields[i-1].BitOffset, out.RegisterInfo.Fields[i].BitOffset)
		}
	})
}

// Property: width honoring. No decoded field's value exceeds
// (1 << bit_width) - 1.
func Test_Property_WidthHonoring(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		reg, _ := genRegister(t)
		value := rapid.Uint64().Draw(t, "value")

		d := New(newFakeResolver(reg))
		out, err := d.Decode(model.RawTransaction{
			Address: "0x1000", Operation: model.OpRead,
			Value: "0x" + new(big.Int).SetUint64(value).Text(16),
		})
		require.NoError(t, err)

		for _, f := range out.RegisterInfo.Fields {
			n, ok := new(big.Int).SetString(f.Value[2:], 16)
			require.True(t, ok)
			max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(f.BitWidth)), big.NewInt(1))
			require.True(t, n.Cmp(max) <= 0, "field %s value exceeds its width", f.Name)
		}
	})
}

// Property: reconstruction. Concatenating decoded-field values at
// their bit_offsets, masked to W bits, equals the original value
// masked to W bits.
func Test_Property_Reconstruction(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		reg, width := genRegister(t)
		value := rapid.Uint64().Draw(t, "value")

		d := New(newFakeResolver(reg))
		original := new(big.Int).SetUint64(value)
		masked := maskTo(original, width)

		out, err := d.Decode(model.RawTransaction{
			Address: "0x1000", Operation: model.OpRead,
			Value: "0x" + original.Text(16),
		})
		require.NoError(t, err)

		reconstructed := big.NewInt(0)
		for _, f := range out.RegisterInfo.Fields {
			n, ok := new(big.Int).SetString(f.Value[2:], 16)
			require.True(t, ok)
			shifted := new(big.Int).Lsh(n, uint(f.BitOffset))
			reconstructed.Or(reconstructed, shifted)
		}

		assert.Equal(t, 0, masked.Cmp(reconstructed))
	})
}
