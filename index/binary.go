package index

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
)

// ErrCorrupt is returned when decoding malformed index data.
var ErrCorrupt = errors.New("index: corrupt encoding")

// WriteTo serializes the index. Pairs are written in ascending key order so
// equal indexes produce identical bytes.
//
// Layout per mapping: count u32, then per pair: key u64, len u32, roaring bytes.
func (x *Index) WriteTo(w io.Writer) (int64, error) {
	var n int64
	var scratch [12]byte

	for k := range x.maps {
		m := x.maps[k]
		binary.LittleEndian.PutUint32(scratch[:4], uint32(len(m)))
		c, err := w.Write(scratch[:4])
		n += int64(c)
		if err != nil {
			return n, err
		}

		keys := make([]uint64, 0, len(m))
		for key := range m {
			keys = append(keys, key)
		}
		slices.Sort(keys)

		for _, key := range keys {
			data, err := m[key].ToBytes()
			if err != nil {
				return n, err
			}
			binary.LittleEndian.PutUint64(scratch[:8], key)
			binary.LittleEndian.PutUint32(scratch[8:12], uint32(len(data)))
			c, err := w.Write(scratch[:12])
			n += int64(c)
			if err != nil {
				return n, err
			}
			c, err = w.Write(data)
			n += int64(c)
			if err != nil {
				return n, err
			}
		}
	}
	return n, nil
}

// Read decodes an index written by WriteTo. The triple count is taken from
// the objects mapping; Read verifies that all three mappings describe the
// same set of triples.
func Read(r io.Reader) (*Index, error) {
	x := New()
	var scratch [12]byte
	total := [NumKinds]uint64{}

	for k := range x.maps {
		if _, err := io.ReadFull(r, scratch[:4]); err != nil {
			return nil, fmt.Errorf("%w: %s count: %w", ErrCorrupt, Kind(k), err)
		}
		count := binary.LittleEndian.Uint32(scratch[:4])

		var prev uint64
		for i := uint32(0); i < count; i++ {
			if _, err := io.ReadFull(r, scratch[:12]); err != nil {
				return nil, fmt.Errorf("%w: %s pair header: %w", ErrCorrupt, Kind(k), err)
			}
			key := binary.LittleEndian.Uint64(scratch[:8])
			size := binary.LittleEndian.Uint32(scratch[8:12])
			if i > 0 && key <= prev {
				return nil, fmt.Errorf("%w: %s keys out of order", ErrCorrupt, Kind(k))
			}
			prev = key

			data, err := readN(r, int(size))
			if err != nil {
				return nil, fmt.Errorf("%w: %s bitmap: %w", ErrCorrupt, Kind(k), err)
			}
			bm := roaring.New()
			if err := bm.UnmarshalBinary(data); err != nil {
				return nil, fmt.Errorf("%w: %s bitmap: %w", ErrCorrupt, Kind(k), err)
			}
			if bm.IsEmpty() {
				return nil, fmt.Errorf("%w: %s empty set", ErrCorrupt, Kind(k))
			}
			x.maps[k][key] = bm
			total[k] += bm.GetCardinality()
		}
	}

	if total[KindObjects] != total[KindSubjects] || total[KindObjects] != total[KindPredicates] {
		return nil, fmt.Errorf("%w: mappings disagree on triple count %v", ErrCorrupt, total)
	}
	x.count = int(total[KindObjects])

	// Every (s,p)->o must be mirrored by (p,o)->s and (s,o)->p.
	for key, bm := range x.maps[KindObjects] {
		s, p := uint32(key>>32), uint32(key)
		it := bm.Iterator()
		for it.HasNext() {
			o := it.Next()
			if !x.has(KindSubjects, PairKey(p, o), s) || !x.has(KindPredicates, PairKey(s, o), p) {
				return nil, fmt.Errorf("%w: mappings diverge at (%d,%d,%d)", ErrCorrupt, s, p, o)
			}
		}
	}
	return x, nil
}

func (x *Index) has(k Kind, key uint64, id uint32) bool {
	bm, ok := x.maps[k][key]
	return ok && bm.Contains(id)
}

// readN reads exactly n bytes, growing the buffer in bounded steps so a
// corrupt length cannot force a huge allocation up front.
func readN(r io.Reader, n int) ([]byte, error) {
	const step = 1 << 20
	buf := make([]byte, 0, min(n, step))
	for len(buf) < n {
		chunk := min(n-len(buf), step)
		start := len(buf)
		buf = append(buf, make([]byte, chunk)...)
		if _, err := io.ReadFull(r, buf[start:]); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// Equal reports whether two indexes hold the same triples.
func Equal(a, b *Index) bool {
	if a.count != b.count {
		return false
	}
	for k := range a.maps {
		if len(a.maps[k]) != len(b.maps[k]) {
			return false
		}
		for key, bm := range a.maps[k] {
			other, ok := b.maps[k][key]
			if !ok || !bm.Equals(other) {
				return false
			}
		}
	}
	return true
}
