package sign

import (
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/NethermindEth/starknet.go/curve"
)

// Signature is a Stark-curve signature over a message hash.
type Signature struct {
	R *big.Int
	S *big.Int
}

// String renders the signature as the venue's wire form: a JSON array
// of two hex strings, carried inside the order's signature field.
func (s Signature) String() string {
	return fmt.Sprintf(`["%s","%s"]`, feltToHex(s.R), feltToHex(s.S))
}

// Signer holds a Stark private key and produces signatures over
// message hashes. Signing is deterministic: the nonce derivation is
// keyed on the hash and the key, so signing the same hash twice yields
// the same signature.
type Signer struct {
	priv *big.Int
	pubX *big.Int
	pubY *big.Int
}

// NewSigner builds a signer from a 0x-prefixed hex private key.
func NewSigner(privateKeyHex string) (*Signer, error) {
	priv, err := feltFromHex(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSigningFailure, err)
	}
	if priv.Sign() <= 0 {
		return nil, fmt.Errorf("%w: private key must be positive", ErrSigningFailure)
	}
	x, y, err := curve.Curve.PrivateToPoint(priv)
	if err != nil {
		return nil, fmt.Errorf("%w: derive public key: %v", ErrSigningFailure, err)
	}
	return &Signer{priv: priv, pubX: x, pubY: y}, nil
}

// LoadSigner reads a hex private key from a file, ignoring surrounding
// whitespace.
func LoadSigner(path string) (*Signer, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read key file: %v", ErrSigningFailure, err)
	}
	return NewSigner(strings.TrimSpace(string(raw)))
}

// Sign produces a signature over a message hash.
func (s *Signer) Sign(msgHash *big.Int) (Signature, error) {
	if s == nil || s.priv == nil || s.priv.Sign() == 0 {
		return Signature{}, fmt.Errorf("%w: signer closed or uninitialized", ErrSigningFailure)
	}
	r, sg, err := curve.Curve.Sign(msgHash, s.priv)
	if err != nil {
		return Signature{}, fmt.Errorf("%w: %v", ErrSigningFailure, err)
	}
	return Signature{R: r, S: sg}, nil
}

// Verify reports whether sig is a valid signature by this key over
// msgHash.
func (s *Signer) Verify(msgHash *big.Int, sig Signature) bool {
	if s == nil || s.pubX == nil {
		return false
	}
	return curve.Curve.Verify(msgHash, sig.R, sig.S, s.pubX, s.pubY)
}

// PublicKey returns the x coordinate of the public key, the value the
// venue registers for the account.
func (s *Signer) PublicKey() *big.Int {
	return new(big.Int).Set(s.pubX)
}

// Close zeroizes the private key. The signer is unusable afterwards.
func (s *Signer) Close() {
	if s.priv != nil {
		s.priv.SetInt64(0)
	}
}

// String redacts the key material.
func (s *Signer) String() string { return "sign.Signer{pub=" + feltToHex(s.pubX) + "}" }

// GoString redacts the key material in %#v output too.
func (s *Signer) GoString() string { return s.String() }
