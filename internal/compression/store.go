package compression

import (
	"fmt"

	"github.com/cabinetfs/go-cab/internal/types"
)

// storeCodec is the identity codec: compressed bytes equal uncompressed
// bytes. It is the only compression type this library's folder rewrite
// and extraction paths will actually select (see internal/services), but
// it is registered through the same pluggable interface as every other
// codec so the registry has no special case for it.
type storeCodec struct{}

func (storeCodec) Compress(data []byte) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (storeCodec) Decompress(data []byte, uncompressedLen int) ([]byte, error) {
	if uncompressedLen != 0 && len(data) != uncompressedLen {
		return nil, fmt.Errorf("%w: store block declares %d bytes, got %d", types.ErrCorruptedData, uncompressedLen, len(data))
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func init() {
	Register(types.CompressionNone, storeCodec{})
}
