package types

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cosmos/cosmos-sdk/types/bech32"
)

const (
	HashLength    = 32
	AddressLength = 20
	PubKeyLength  = 33
)

// Hash represents the 32 byte Keccak256 hash of arbitrary data.
type Hash [HashLength]byte

func BytesToHash(b []byte) Hash {
	var h Hash
	h.SetBytes(b)
	return h
}

func (h Hash) Bytes() []byte { return h[:] }
func (h Hash) Hex() string   { return "0x" + hex.EncodeToString(h[:]) }

func (h Hash) String() string {
	return h.Hex()
}

// SetBytes sets the hash to the value of b. If b is larger than len(h), 'b' will be cropped (from the left).
func (h *Hash) SetBytes(b []byte) {
	if len(b) > len(h) {
		b = b[len(b)-HashLength:]
	}

	copy(h[HashLength-len(b):], b)
}

/////////// Address

// Address is a 20 byte account or contract identifier, rendered as bech32
// with AddressPrefix as the human readable part.
type Address [AddressLength]byte

func BytesToAddress(b []byte) Address {
	var a Address
	a.SetBytes(b)
	return a
}

// AddressFromString decodes a bech32 address. Only the current prefix is accepted.
func AddressFromString(s string) (Address, error) {
	hrp, data, err := bech32.DecodeAndConvert(strings.TrimSpace(s))
	if err != nil {
		return Address{}, err
	}
	if hrp != AddressPrefix {
		return Address{}, fmt.Errorf("invalid address prefix %q, expected %q", hrp, AddressPrefix)
	}
	if len(data) != AddressLength {
		return Address{}, fmt.Errorf("invalid address length %d", len(data))
	}

	return BytesToAddress(data), nil
}

// MustAddressFromString panics on malformed input, use it for constants and tests only
func MustAddressFromString(s string) Address {
	a, err := AddressFromString(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Address) Bytes() []byte { return a[:] }

func (a Address) IsZero() bool { return a == Address{} }

func (a Address) String() string {
	s, err := bech32.ConvertAndEncode(AddressPrefix, a[:])
	if err != nil {
		panic(err)
	}
	return s
}

func (a Address) Compare(a2 Address) int {
	return bytes.Compare(a.Bytes(), a2.Bytes())
}

// SetBytes sets the address to the value of b. If b is larger than len(a) it will panic
func (a *Address) SetBytes(b []byte) {
	if len(b) > len(a) {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(input []byte) error {
	address, err := AddressFromString(string(input))
	if err != nil {
		return err
	}
	*a = address
	return nil
}

func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *Address) UnmarshalJSON(input []byte) error {
	var s string
	if err := json.Unmarshal(input, &s); err != nil {
		return err
	}
	return a.UnmarshalText([]byte(s))
}

/////////// Pubkey

// Pubkey is a compressed secp256k1 public key.
type Pubkey [PubKeyLength]byte

func HexToPubkey(s string) (Pubkey, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return Pubkey{}, err
	}
	if len(b) != PubKeyLength {
		return Pubkey{}, fmt.Errorf("invalid pubkey length %d", len(b))
	}
	var p Pubkey
	copy(p[:], b)
	return p, nil
}

func (p Pubkey) Bytes() []byte { return p[:] }

func (p Pubkey) String() string {
	return "0x" + hex.EncodeToString(p[:])
}

func (p Pubkey) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Pubkey) UnmarshalJSON(input []byte) error {
	var s string
	if err := json.Unmarshal(input, &s); err != nil {
		return err
	}
	pubkey, err := HexToPubkey(s)
	if err != nil {
		return err
	}
	*p = pubkey
	return nil
}
