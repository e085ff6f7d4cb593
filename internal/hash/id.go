package hash

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Sum computes the xxHash64 of data.
func Sum(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// RecordKey computes the xxHash64 identity of a (user id, record id) pair, the key
// under which LAS variable length records are registered.
func RecordKey(userID string, recordID uint16) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(userID)

	var id [3]byte // id[0] is a NUL separator
	binary.LittleEndian.PutUint16(id[1:], recordID)
	_, _ = d.Write(id[:])

	return d.Sum64()
}

// NewDigest returns a streaming xxHash64 digest. Feeding it the same bytes yields Sum.
func NewDigest() *xxhash.Digest {
	return xxhash.New()
}
