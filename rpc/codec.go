package rpc

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// errBadRequest wraps every request decoding failure so the status mapper can
// classify them without enumerating causes.
var errBadRequest = errors.New("bad request")

func badRequestf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{errBadRequest}, args...)...)
}

func parseAddr(raw string) ([20]byte, error) {
	var addr [20]byte
	trimmed := strings.TrimPrefix(strings.TrimSpace(raw), "0x")
	decoded, err := hex.DecodeString(trimmed)
	if err != nil {
		return addr, badRequestf("invalid address %q", raw)
	}
	if len(decoded) != len(addr) {
		return addr, badRequestf("address must be 20 bytes, got %d", len(decoded))
	}
	copy(addr[:], decoded)
	return addr, nil
}

func formatAddr(addr [20]byte) string {
	return "0x" + hex.EncodeToString(addr[:])
}

// parseCode accepts either a 32-byte hex string or a short UTF-8 label that is
// zero-padded into the code slot.
func parseCode(raw string) ([32]byte, error) {
	var code [32]byte
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return code, badRequestf("empty code")
	}
	if strings.HasPrefix(trimmed, "0x") {
		decoded, err := hex.DecodeString(trimmed[2:])
		if err != nil || len(decoded) != len(code) {
			return code, badRequestf("invalid code %q", raw)
		}
		copy(code[:], decoded)
		return code, nil
	}
	if len(trimmed) > len(code) {
		return code, badRequestf("code label exceeds 32 bytes")
	}
	copy(code[:], trimmed)
	return code, nil
}

func formatCode(code [32]byte) string {
	return "0x" + hex.EncodeToString(code[:])
}

func parseWord(raw string) ([32]byte, error) {
	var word [32]byte
	trimmed := strings.TrimPrefix(strings.TrimSpace(raw), "0x")
	decoded, err := hex.DecodeString(trimmed)
	if err != nil || len(decoded) != len(word) {
		return word, badRequestf("invalid entropy word %q", raw)
	}
	copy(word[:], decoded)
	return word, nil
}

func parseAmount(raw string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(strings.TrimSpace(raw), 10)
	if !ok {
		return nil, badRequestf("invalid amount %q", raw)
	}
	return amount, nil
}

func formatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
