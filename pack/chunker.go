package pack

import (
	"math/bits"

	xxhash "github.com/cespare/xxhash/v2"
)

// chunker finds content-defined cut points with a gear rolling hash. A cut
// falls where the low bits of the hash are zero, so equal runs in different
// payloads are cut the same way once the hash has settled.
type chunker struct {
	gear     [256]uint64
	mask     uint64
	min, max int
}

// newChunker returns a chunker averaging about target bytes per piece,
// rounded down to a power of two, with pieces kept within [minSz, maxSz].
func newChunker(target, minSz, maxSz int) *chunker {
	c := &chunker{min: minSz, max: maxSz}
	c.mask = 1<<(bits.Len(uint(target))-1) - 1
	d := xxhash.New()
	for i := range c.gear {
		d.Reset()
		d.WriteString("voxcore gear")
		d.Write([]byte{byte(i)})
		c.gear[i] = d.Sum64() | 1
	}
	return c
}

func (c *chunker) cuts(data []byte) []int {
	var ends []int
	var h uint64
	start := 0
	for pos, b := range data {
		h = h<<1 + c.gear[b]
		n := pos + 1 - start
		if n < c.min {
			continue
		}
		if h&c.mask == 0 || n >= c.max {
			ends = append(ends, pos+1)
			start, h = pos+1, 0
		}
	}
	if start < len(data) {
		ends = append(ends, len(data))
	}
	return ends
}
