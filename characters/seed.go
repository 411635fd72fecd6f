// Package characters implements the discovery, deduplication, and
// profile-synthesis stages of the character extraction pipeline (C3-C6):
// name extraction from an LLM, alias deduplication, RAG-grounded
// profile synthesis, and the deterministic seed function.
package characters

import (
	"crypto/md5"
	"encoding/binary"
	"strings"
)

// Seed deterministically maps a canonical name to a 32-bit integer used
// to seed image generation. It is a pure function: the same name always
// produces the same seed, across processes, platforms, and runtimes.
// MD5 is used deliberately here — it is universally available, cheap,
// and well-defined; cryptographic strength is irrelevant to this use.
//
// The digest is treated as a single big-endian 128-bit integer taken
// mod 2^32, which is equivalent to big-endian-decoding its last 4
// bytes: seed("Harry Potter") == 1085936863.
func Seed(name string) uint32 {
	normalized := strings.ToLower(strings.TrimSpace(name))
	sum := md5.Sum([]byte(normalized))
	return binary.BigEndian.Uint32(sum[12:16])
}
