package sign

import (
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Field elements are big.Int values in the Stark field. Helpers here
// cover the encodings the hash layout needs: Cairo short strings and
// the truncated keccak used for type and selector hashes.

// shortStringMaxLen is the Cairo short-string limit: 31 ASCII bytes so
// the value stays below the field prime.
const shortStringMaxLen = 31

// starknetKeccakMask keeps the low 250 bits of keccak256.
var starknetKeccakMask = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 250), big.NewInt(1))

// contractAddressBound caps contract addresses: 2^251 - 256.
var contractAddressBound = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 251), big.NewInt(256))

// shortStringToFelt encodes an ASCII string of up to 31 bytes as a
// big-endian integer, the Cairo short-string form.
func shortStringToFelt(s string) (*big.Int, error) {
	if len(s) > shortStringMaxLen {
		return nil, fmt.Errorf("short string %q exceeds %d bytes", s, shortStringMaxLen)
	}
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7f {
			return nil, fmt.Errorf("short string %q contains non-ASCII byte at %d", s, i)
		}
	}
	return new(big.Int).SetBytes([]byte(s)), nil
}

func mustShortString(s string) *big.Int {
	f, err := shortStringToFelt(s)
	if err != nil {
		panic(err)
	}
	return f
}

// starknetKeccak is keccak256 truncated to 250 bits, the hash Cairo
// uses for type strings and entry-point selectors.
func starknetKeccak(data []byte) *big.Int {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	out := new(big.Int).SetBytes(h.Sum(nil))
	return out.And(out, starknetKeccakMask)
}

// selectorFromName hashes an entry-point name to its selector.
func selectorFromName(name string) *big.Int {
	return starknetKeccak([]byte(name))
}

// strToFelt encodes an order id: all-digit ids are taken as decimal
// integers, anything else as a short string. Matches the venue's
// modify-order hashing rule.
func strToFelt(s string) (*big.Int, error) {
	if s != "" && isASCIIDigits(s) {
		v, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, fmt.Errorf("parse decimal id %q", s)
		}
		return v, nil
	}
	return shortStringToFelt(s)
}

func isASCIIDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// feltToHex renders a field element as 0x-prefixed lowercase hex.
func feltToHex(f *big.Int) string {
	return "0x" + f.Text(16)
}

// feltFromHex parses a 0x-prefixed hex field element.
func feltFromHex(s string) (*big.Int, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if trimmed == "" {
		return nil, fmt.Errorf("empty field element")
	}
	v, ok := new(big.Int).SetString(trimmed, 16)
	if !ok {
		return nil, fmt.Errorf("parse field element %q", s)
	}
	return v, nil
}
