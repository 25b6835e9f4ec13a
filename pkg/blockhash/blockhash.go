// Package blockhash computes the content-addressed digest blocks are
// identified by: a 256-bit cryptographic hash, collision-resistance
// assumed (spec §3 "Identifiers").
package blockhash

import (
	"encoding/hex"

	sha256 "github.com/minio/sha256-simd"
	"github.com/zeebo/errs"
)

// Error is the class of errors raised decoding or validating a Hash.
var Error = errs.Class("blockhash")

// Size is the digest length in bytes.
const Size = 32

// Hash identifies a block by the SHA-256 digest of its bytes.
type Hash [Size]byte

// Sum returns the digest of data.
func Sum(data []byte) Hash {
	return sha256.Sum256(data)
}

// String renders the hash as lowercase hex.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Bytes returns the hash's raw bytes.
func (h Hash) Bytes() []byte {
	return h[:]
}

// IsZero reports whether h is the all-zero sentinel hash.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// FromBytes builds a Hash from a byte slice of the correct length.
func FromBytes(b []byte) (Hash, error) {
	var h Hash
	if len(b) != Size {
		return h, Error.New("invalid hash length %d", len(b))
	}
	copy(h[:], b)
	return h, nil
}

// Verify reports whether data digests to h, per the block manager's
// get_block contract (§4.3, §8: "digest(get_block(h)) == h").
func Verify(h Hash, data []byte) bool {
	return Sum(data) == h
}
