// Hash algorithms for payload digests.
//
// Delete builds its matched set out of 16 hex character digests of each
// row's canonical payload, so rows with identical content share a digest.
// Three algorithms are supported, selectable via Config.HashAlgorithm.
package shelf

import (
	"fmt"
	"hash/fnv"

	"github.com/zeebo/xxh3"
	"golang.org/x/crypto/blake2b"
)

// Hash algorithm constants.
const (
	AlgXXHash3 = 1 // Default, fastest
	AlgFNV1a   = 2 // No external dependencies
	AlgBlake2b = 3 // Best distribution
)

// digest generates a 16 hex character digest of a canonical payload
// using the specified algorithm.
func digest(payload []byte, alg int) string {
	switch alg {
	case AlgXXHash3:
		return fmt.Sprintf("%016x", xxh3.Hash(payload))
	case AlgFNV1a:
		h := fnv.New64a()
		h.Write(payload)
		return fmt.Sprintf("%016x", h.Sum64())
	case AlgBlake2b:
		h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
		h.Write(payload)
		return fmt.Sprintf("%016x", h.Sum(nil))
	default:
		return ""
	}
}
