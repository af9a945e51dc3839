package payment

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
)

// NormalizeAddress lowercases an EVM address for comparison. Address
// equality throughout the gateway is case-insensitive.
func NormalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// ChecksumAddress renders an address in EIP-55 mixed-case form for display
// in challenge responses and ledger summaries. Inputs that do not look like
// a 20-byte hex address are returned unchanged.
func ChecksumAddress(addr string) string {
	stripped := strings.TrimPrefix(NormalizeAddress(addr), "0x")
	if len(stripped) != 40 {
		return addr
	}
	if _, err := hex.DecodeString(stripped); err != nil {
		return addr
	}

	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(stripped))
	hash := hex.EncodeToString(h.Sum(nil))

	out := make([]byte, 40)
	for i := 0; i < 40; i++ {
		c := stripped[i]
		if c >= 'a' && c <= 'f' && hash[i] >= '8' {
			c = c - 'a' + 'A'
		}
		out[i] = c
	}
	return "0x" + string(out)
}
