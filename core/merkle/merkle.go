// Package merkle verifies allocation claims against a published whitelist root.
//
// A leaf is sha256 of the decimal concatenation "<address><private_cap><public_cap>".
// Inner nodes are sha256 of the two children ordered lexicographically, so proofs
// carry siblings only, without left/right flags.
package merkle

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/MinterTeam/minter-presale/core/code"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
)

const hashLength = sha256.Size

type Hash [hashLength]byte

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// LeafHash returns the leaf of an allocation entry
func LeafHash(address string, privateCap, publicCap uint64) Hash {
	return sha256.Sum256([]byte(fmt.Sprintf("%s%d%d", address, privateCap, publicCap)))
}

func hashPair(a, b Hash) Hash {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return sha256.Sum256(append(a[:], b[:]...))
}

// DecodeHash parses 64 hex chars into a hash
func DecodeHash(s string) (Hash, error) {
	var h Hash
	if len(s) != hex.EncodedLen(hashLength) {
		return h, sdkerrors.Wrapf(code.ErrProofDecode, "wrong length %d of %q", len(s), s)
	}
	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return h, sdkerrors.Wrapf(code.ErrProofDecode, "%q: %s", s, err)
	}
	return h, nil
}

// ComputeRoot folds the proof over the leaf
func ComputeRoot(leaf Hash, proof []string) (Hash, error) {
	hash := leaf
	for _, p := range proof {
		sibling, err := DecodeHash(p)
		if err != nil {
			return Hash{}, err
		}
		hash = hashPair(hash, sibling)
	}
	return hash, nil
}

// Verify checks the (address, privateCap, publicCap) claim against root.
// Empty root disables the check.
func Verify(root string, address string, privateCap, publicCap uint64, proof []string) error {
	if root == "" {
		return nil
	}

	computed, err := ComputeRoot(LeafHash(address, privateCap, publicCap), proof)
	if err != nil {
		return err
	}

	expected, err := DecodeHash(root)
	if err != nil {
		return err
	}

	if computed != expected {
		return sdkerrors.Wrapf(code.ErrProofMismatch, "computed root %s", computed)
	}

	return nil
}

// ValidateRoot accepts empty string or 64 hex chars
func ValidateRoot(root string) error {
	if root == "" {
		return nil
	}
	_, err := DecodeHash(root)
	return err
}
