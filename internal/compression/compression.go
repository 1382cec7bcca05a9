// Package compression is the pluggable compression layer (C4). It models
// "compress" and "decompress" as a pair of stateless byte-buffer
// interfaces selected by the folder's compression-type value, replacing
// the open-coded switches a more naive port of the format would use.
package compression

import (
	"fmt"
	"sync"

	"github.com/cabinetfs/go-cab/internal/types"
)

// Compressor turns an uncompressed buffer into a compressed one.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor turns a compressed buffer back into its uncompressed form.
// uncompressedLen is the length declared by the data block's header and is
// used to size the output buffer; implementations are not required to
// trust it blindly.
type Decompressor interface {
	Decompress(data []byte, uncompressedLen int) ([]byte, error)
}

// Codec implements both directions for one compression type.
type Codec interface {
	Compressor
	Decompressor
}

var (
	registryMu sync.RWMutex
	registry   = map[types.CompressionType]Codec{}
)

// Register adds or replaces the codec for t. Intended to be called from
// package init functions.
func Register(t types.CompressionType, c Codec) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[t] = c
}

// Lookup returns the codec registered for t, or ErrUnsupportedCompression
// if none is registered.
func Lookup(t types.CompressionType) (Codec, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	c, ok := registry[t]
	if !ok {
		return nil, fmt.Errorf("%w: type %s", types.ErrUnsupportedCompression, t)
	}
	return c, nil
}
