package compression

import (
	"fmt"

	"github.com/pierrec/lz4/v4"

	"github.com/cabinetfs/go-cab/internal/types"
)

// TypeLZ4Experimental is not part of the MS-CAB compression enum (spec.md
// §3 lists only None/MSZip/Quantum/LZX/Bad). It exists solely to give this
// package's registry a second real codec to exercise beyond the required
// identity one. No folder parsed from an actual cabinet carries this
// value, and the folder rewrite and extraction paths in
// internal/services hard-code CompressionNone as the only type they will
// read or write — see DESIGN.md for why this codec is registered but not
// reachable from the on-disk format.
const TypeLZ4Experimental types.CompressionType = 0x4C5A

type lz4Codec struct{}

func (lz4Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dst := make([]byte, lz4.CompressBlockBound(len(data)))
	var c lz4.Compressor
	n, err := c.CompressBlock(data, dst)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if n == 0 {
		// lz4 reports incompressible input by returning 0; store verbatim.
		out := make([]byte, len(data))
		copy(out, data)
		return out, nil
	}
	return dst[:n], nil
}

func (lz4Codec) Decompress(data []byte, uncompressedLen int) ([]byte, error) {
	if uncompressedLen == 0 {
		return nil, nil
	}
	dst := make([]byte, uncompressedLen)
	n, err := lz4.UncompressBlock(data, dst)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	return dst[:n], nil
}

func init() {
	Register(TypeLZ4Experimental, lz4Codec{})
}
