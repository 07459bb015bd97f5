package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_New_KnownProtocols(t *testing.T) {
	ahb, err := New("AHB", nil)
	require.NoError(t, err)
	assert.Equal(t, "AHB", ahb.ProtocolName())

	apb, err := New("APB", nil)
	require.NoError(t, err)
	assert.Equal(t, "APB", apb.ProtocolName())
}

func Test_New_UnknownProtocol(t *testing.T) {
	_, err := New("WISHBONE", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WISHBONE")
}
