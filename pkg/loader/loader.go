// Package loader reads a Universal Machine program from a stream of
// big-endian 32-bit words, either a file or standard input, into the
// slice of words that becomes segment 0.
//
// This is deliberately a thin wrapper: the program format has no
// header, no magic number, and no section table, so there is nothing
// here beyond byte-order conversion and a length check. Opcode
// validity is not this package's concern; the engine checks that at
// fetch/decode time.
package loader

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ErrTruncated indicates the input's length was not a multiple of 4
// bytes, so it cannot be evenly divided into 32-bit words.
var ErrTruncated = fmt.Errorf("loader: input length is not a multiple of 4 bytes")

// Load reads all of r and returns it as a slice of big-endian 32-bit
// words, in file order.
func Load(r io.Reader) ([]uint32, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("loader: reading input: %w", err)
	}
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("%w: got %d bytes", ErrTruncated, len(raw))
	}
	words := make([]uint32, len(raw)/4)
	for i := range words {
		words[i] = binary.BigEndian.Uint32(raw[i*4 : i*4+4])
	}
	return words, nil
}
