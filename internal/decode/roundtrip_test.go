package decode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MBarae/waveform-reg-access-extractor/internal/bus"
	"github.com/MBarae/waveform-reg-access-extractor/internal/model"
)

// Round-trip property (spec.md §8): encoding a transaction through
// AHB/APB then decoding yields the original address, operation,
// value, and response.
func Test_RoundTrip_AHB(t *testing.T) {
	r := bus.NewAHBRecognizer(nil)
	d := New(newFakeResolver())

	addrPhase := model.SampleFrame{Timestamp: 0, Signals: map[string]any{
		"hclk": 1, "htrans": 2, "haddr": "0x5000", "hwrite": 1, "hwdata": "0x0",
	}}
	dataPhase := model.SampleFrame{Timestamp: 1, Signals: map[string]any{
		"hready": 1, "hresp": 1, "hwdata": "0xcafef00d",
	}}

	require.True(t, r.IsValidTransaction(addrPhase))
	raw, ok := r.ExtractTransaction(addrPhase, dataPhase)
	require.True(t, ok)

	decoded, err := d.Decode(raw)
	require.NoError(t, err)

	assert.Equal(t, "0x5000", decoded.Address)
	assert.Equal(t, model.OpWrite, decoded.Operation)
	assert.Equal(t, "0xcafef00d", decoded.Value)
	assert.Equal(t, model.RespERROR, decoded.Response)
}

func Test_RoundTrip_APB(t *testing.T) {
	r := bus.NewAPBRecognizer(nil)
	d := New(newFakeResolver())

	access := model.SampleFrame{Timestamp: 0, Signals: map[string]any{
		"pclk": 1, "psel": 1, "penable": 1, "paddr": "0x6000", "pwrite": 0, "prdata": "0x0",
	}}
	completion := model.SampleFrame{Timestamp: 1, Signals: map[string]any{"prdata": "0xfeedface"}}

	require.True(t, r.IsValidTransaction(access))
	raw, ok := r.ExtractTransaction(access, completion)
	require.True(t, ok)

	decoded, err := d.Decode(raw)
	require.NoError(t, err)

	assert.Equal(t, "0x6000", decoded.Address)
	assert.Equal(t, model.OpRead, decoded.Operation)
	assert.Equal(t, "0xfeedface", decoded.Value)
	assert.Equal(t, model.RespOKAY, decoded.Response)
}
