package objstore

import (
	"encoding/hex"
	"time"

	uuid "github.com/satori/go.uuid"
)

// UUID is a 128-bit random version identifier (spec §3 "Identifiers").
type UUID [16]byte

// NewUUID generates a fresh random (v4) UUID.
func NewUUID() UUID {
	var out UUID
	copy(out[:], uuid.NewV4().Bytes())
	return out
}

// ZeroUUID is the sentinel value DELETE returns for a no-op (spec §4.7).
var ZeroUUID = UUID{}

// IsZero reports whether u is the zero-UUID sentinel.
func (u UUID) IsZero() bool {
	return u == ZeroUUID
}

// String renders the UUID as lowercase hex, matching the "body is
// hex(zero uuid)" scenario in spec §8.
func (u UUID) String() string {
	return hex.EncodeToString(u[:])
}

// nowMsec returns wall-clock milliseconds since epoch (spec §3
// "now_msec()"). Clocks are assumed loosely synchronized; skew affects
// CRDT ordering but never safety (spec §5).
func nowMsec() uint64 {
	return uint64(time.Now().UnixNano() / int64(time.Millisecond))
}

// NowMsec is the exported form, used by the PUT/DELETE pipelines to
// timestamp the versions they write.
func NowMsec() uint64 {
	return nowMsec()
}
