package sign

import (
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testPrivateKey = "0x2dccce1da22003777062968ba9e8b7c44ce1031db9eebfe9b4a6d62ba9c0798"

func TestSignerSignVerify(t *testing.T) {
	s, err := NewSigner(testPrivateKey)
	if err != nil {
		t.Fatalf("NewSigner failed: %v", err)
	}

	hash := big.NewInt(0xdeadbeef)
	sig, err := s.Sign(hash)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if !s.Verify(hash, sig) {
		t.Error("signature did not verify against its own key")
	}
	if s.Verify(big.NewInt(0xdeadbef0), sig) {
		t.Error("signature verified against a different hash")
	}
}

func TestSignerDeterministic(t *testing.T) {
	s, err := NewSigner(testPrivateKey)
	if err != nil {
		t.Fatalf("NewSigner failed: %v", err)
	}
	hash := big.NewInt(12345)
	sig1, err := s.Sign(hash)
	if err != nil {
		t.Fatalf("first Sign failed: %v", err)
	}
	sig2, err := s.Sign(hash)
	if err != nil {
		t.Fatalf("second Sign failed: %v", err)
	}
	if sig1.R.Cmp(sig2.R) != 0 || sig1.S.Cmp(sig2.S) != 0 {
		t.Error("signing the same hash twice produced different signatures")
	}
}

func TestSignatureWireForm(t *testing.T) {
	sig := Signature{R: big.NewInt(0xab), S: big.NewInt(0xcd)}
	if got, want := sig.String(), `["0xab","0xcd"]`; got != want {
		t.Errorf("String() = %s, want %s", got, want)
	}
}

func TestLoadSigner(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stark.key")
	if err := os.WriteFile(path, []byte(testPrivateKey+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSigner(path)
	if err != nil {
		t.Fatalf("LoadSigner failed: %v", err)
	}
	if s.PublicKey().Sign() <= 0 {
		t.Error("loaded signer has no public key")
	}

	if _, err := LoadSigner(filepath.Join(t.TempDir(), "missing")); !errors.Is(err, ErrSigningFailure) {
		t.Errorf("missing key file: err = %v, want ErrSigningFailure", err)
	}
}

func TestSignerClose(t *testing.T) {
	s, err := NewSigner(testPrivateKey)
	if err != nil {
		t.Fatalf("NewSigner failed: %v", err)
	}
	s.Close()
	if _, err := s.Sign(big.NewInt(1)); !errors.Is(err, ErrSigningFailure) {
		t.Errorf("Sign after Close: err = %v, want ErrSigningFailure", err)
	}
}

func TestSignerRedaction(t *testing.T) {
	s, err := NewSigner(testPrivateKey)
	if err != nil {
		t.Fatalf("NewSigner failed: %v", err)
	}
	priv := strings.TrimPrefix(testPrivateKey, "0x")
	for _, repr := range []string{s.String(), s.GoString()} {
		if strings.Contains(repr, priv) {
			t.Errorf("representation leaks the private key: %s", repr)
		}
	}
}

func TestNewSignerRejectsBadKeys(t *testing.T) {
	for _, bad := range []string{"", "0x", "zzzz", "0x0"} {
		if _, err := NewSigner(bad); !errors.Is(err, ErrSigningFailure) {
			t.Errorf("NewSigner(%q): err = %v, want ErrSigningFailure", bad, err)
		}
	}
}
