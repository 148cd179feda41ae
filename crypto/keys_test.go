package crypto

import (
	"bytes"
	"testing"
)

func TestAddressRoundTrip(t *testing.T) {
	key, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	addr := key.PubKey().Address()
	decoded, err := DecodeAddress(addr.String())
	if err != nil {
		t.Fatalf("decode address: %v", err)
	}
	if !bytes.Equal(decoded.Bytes(), addr.Bytes()) {
		t.Fatalf("round trip mismatch: %x != %x", decoded.Bytes(), addr.Bytes())
	}
}

func TestNewAddressRejectsBadLength(t *testing.T) {
	if _, err := NewAddress(make([]byte, 19)); err == nil {
		t.Fatal("expected error for short payload")
	}
}

func TestIsZero(t *testing.T) {
	var empty Address
	if !empty.IsZero() {
		t.Fatal("empty address should be zero")
	}
	zero := MustNewAddress(make([]byte, AddressLength))
	if !zero.IsZero() {
		t.Fatal("all-zero address should be zero")
	}
	raw := make([]byte, AddressLength)
	raw[0] = 0x01
	if MustNewAddress(raw).IsZero() {
		t.Fatal("non-zero address reported zero")
	}
}
