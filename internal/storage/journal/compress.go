package journal

import (
	"encoding/binary"
	"fmt"

	"github.com/pierrec/lz4"
)

// Payload codecs, stored as the first byte of every payload.
const (
	codecRaw byte = 0
	codecLZ4 byte = 1
)


// encodePayload frames data, compressing it with an LZ4 block when that
// makes it smaller.
func encodePayload(data []byte, compress bool) ([]byte, error) {
	if compress && len(data) > 0 {
		buf := make([]byte, binary.MaxVarintLen64+lz4.CompressBlockBound(len(data)))
		n := binary.PutUvarint(buf, uint64(len(data)))
		size, err := lz4.CompressBlock(data, buf[n:], nil)
		if err != nil {
			return nil, fmt.Errorf("lz4 compression failed: %w", err)
		}
		// size is zero when the data is incompressible
		if size > 0 && n+size < len(data) {
			return append([]byte{codecLZ4}, buf[:n+size]...), nil
		}
	}
	return append([]byte{codecRaw}, data...), nil
}

func decodePayload(p []byte) ([]byte, error) {
	if len(p) == 0 {
		return nil, ErrCorrupt
	}
	switch p[0] {
	case codecRaw:
		return p[1:], nil
	case codecLZ4:
		size, n := binary.Uvarint(p[1:])
		if n <= 0 {
			return nil, ErrCorrupt
		}
		out := make([]byte, size)
		got, err := lz4.UncompressBlock(p[1+n:], out)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompression failed: %w", err)
		}
		if uint64(got) != size {
			return nil, ErrCorrupt
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: codec %d", ErrCorrupt, p[0])
	}
}
