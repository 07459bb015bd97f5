package regmap

import (
	"math/big"
	"strconv"
	"strings"
)

// parseBig parses a decimal or "0x"-prefixed hex string into a
// big.Int, for addresses that may exceed 64 bits.
func parseBig(s string) (*big.Int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "0x") {
		n, ok := new(big.Int).SetString(lower[2:], 16)
		return n, ok
	}
	n, ok := new(big.Int).SetString(s, 10)
	return n, ok
}

// parseInt parses a decimal or "0x"-prefixed hex string into a plain
// int, for bit widths/offsets which never need arbitrary precision.
func parseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "0x") {
		n, err := strconv.ParseInt(lower[2:], 16, 64)
		return int(n), err == nil
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}
