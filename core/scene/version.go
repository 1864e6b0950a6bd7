package scene

import (
	"encoding/binary"
	"sort"

	"github.com/zeebo/blake3"
)

// versionBits keeps fingerprints inside the exactly representable range of a
// JSON number (2^53).
const versionBits = 53

// Version returns the scene fingerprint of elements: a BLAKE3 digest over the
// (id, version) pairs sorted by id. The order of the input does not matter.
func Version(elements []Element) int64 {
	type pair struct {
		id      string
		version int64
	}
	pairs := make([]pair, len(elements))
	for i, el := range elements {
		pairs[i] = pair{id: el.ID, version: el.Version}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].id != pairs[j].id {
			return pairs[i].id < pairs[j].id
		}
		return pairs[i].version < pairs[j].version
	})

	hasher := blake3.New()
	var buf [8]byte
	for _, p := range pairs {
		binary.BigEndian.PutUint64(buf[:], uint64(len(p.id)))
		hasher.Write(buf[:])
		hasher.Write([]byte(p.id))
		binary.BigEndian.PutUint64(buf[:], uint64(p.version))
		hasher.Write(buf[:])
	}
	sum := hasher.Sum(nil)
	return int64(binary.BigEndian.Uint64(sum[:8]) >> (64 - versionBits))
}
