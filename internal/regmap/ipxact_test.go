package regmap

import (
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleIPXACT = `<?xml version="1.0"?>
<ipxact:component xmlns:ipxact="http://www.accellera.org/XMLSchema/IPXACT/1685-2014">
  <ipxact:memoryMaps>
    <ipxact:memoryMap>
      <ipxact:addressBlock>
        <ipxact:baseAddress>0x1000</ipxact:baseAddress>
        <ipxact:width>32</ipxact:width>
        <ipxact:register>
          <ipxact:name>ctrl</ipxact:name>
          <ipxact:addressOffset>0x0</ipxact:addressOffset>
          <ipxact:size>32</ipxact:size>
          <ipxact:field>
            <ipxact:name>enable</ipxact:name>
            <ipxact:bitOffset>0</ipxact:bitOffset>
            <ipxact:bitWidth>1</ipxact:bitWidth>
            <ipxact:access>read-write</ipxact:access>
          </ipxact:field>
          <ipxact:field>
            <ipxact:name>reserved</ipxact:name>
            <ipxact:bitOffset>1</ipxact:bitOffset>
            <ipxact:bitWidth>7</ipxact:bitWidth>
            <ipxact:access>reserved</ipxact:access>
          </ipxact:field>
        </ipxact:register>
        <ipxact:register>
          <ipxact:name>status</ipxact:name>
          <ipxact:addressOffset>0x4</ipxact:addressOffset>
        </ipxact:register>
      </ipxact:addressBlock>
    </ipxact:memoryMap>
  </ipxact:memoryMaps>
</ipxact:component>`

func mustBig(hex string) *big.Int {
	n, ok := new(big.Int).SetString(hex, 16)
	if !ok {
		panic("bad test literal: " + hex)
	}
	return n
}

func Test_ParseIPXACT(t *testing.T) {
	resolver, err := parseIPXACT(strings.NewReader(sampleIPXACT))
	require.NoError(t, err)

	reg, ok := resolver.FindRegisterByAddress(mustBig("1000"))
	require.True(t, ok)
	assert.Equal(t, "ctrl", reg.Name)
	assert.Equal(t, 32, reg.Size)
	require.Len(t, reg.Fields, 2)
	assert.Equal(t, "enable", reg.Fields[0].Name)
	assert.False(t, reg.Fields[0].IsReserved)
	assert.Equal(t, "reserved", reg.Fields[1].Name)
	assert.True(t, reg.Fields[1].IsReserved)

	// status register has no declared size; it inherits the
	// enclosing addressBlock's width.
	statusReg, ok := resolver.FindRegisterByAddress(mustBig("1004"))
	require.True(t, ok)
	assert.Equal(t, 32, statusReg.Size)

	_, ok = resolver.FindRegisterByAddress(mustBig("9999"))
	assert.False(t, ok)
}

func Test_ParseIPXACT_SchemaError(t *testing.T) {
	_, err := parseIPXACT(strings.NewReader("not xml at all <<<"))
	assert.Error(t, err)
}
