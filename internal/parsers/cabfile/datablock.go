package cabfile

import (
	"fmt"
	"io"

	"github.com/cabinetfs/go-cab/internal/compression"
	"github.com/cabinetfs/go-cab/internal/types"
)

// ReadDataBlockHeader parses one CFDATA record at the reader's current
// position. It does not consume the compressed payload that follows —
// PayloadOffset on the returned header is set to payloadOffset as given;
// the caller computes it (header start plus DataBlockHeaderSize) so it
// can seek there later.
func ReadDataBlockHeader(r io.Reader, reservedSize uint8, payloadOffset int64) (*types.DataBlockHeader, error) {
	h := &types.DataBlockHeader{}

	var err error
	if h.Checksum, err = types.ReadUint32(r); err != nil {
		return nil, err
	}
	if h.CompressedLen, err = types.ReadUint16(r); err != nil {
		return nil, err
	}
	if h.UncompressedLen, err = types.ReadUint16(r); err != nil {
		return nil, err
	}
	if reservedSize > 0 {
		h.Reserved = make([]byte, reservedSize)
		if _, err := io.ReadFull(r, h.Reserved); err != nil {
			return nil, fmt.Errorf("%w: reading data block reserved area: %v", types.ErrTruncatedStream, err)
		}
	}
	h.PayloadOffset = payloadOffset

	return h, nil
}

// DataBlockHeaderSize returns the on-disk size of a CFDATA header given
// the per-block reserved-area size.
func DataBlockHeaderSize(reservedSize uint8) int64 {
	return 4 + 2 + 2 + int64(reservedSize)
}

// WriteDataBlockHeader emits h's header fields. The checksum is always
// written as zero: this codec never computes or verifies it (spec.md §9).
func WriteDataBlockHeader(w io.Writer, h *types.DataBlockHeader) error {
	if err := types.WriteUint32(w, 0); err != nil {
		return err
	}
	if err := types.WriteUint16(w, h.CompressedLen); err != nil {
		return err
	}
	if err := types.WriteUint16(w, h.UncompressedLen); err != nil {
		return err
	}
	if len(h.Reserved) > 0 {
		if _, err := w.Write(h.Reserved); err != nil {
			return err
		}
	}
	return nil
}

// ReadPayload reads h's compressed payload from ra at h.PayloadOffset.
func ReadPayload(ra io.ReaderAt, h *types.DataBlockHeader) ([]byte, error) {
	buf := make([]byte, h.CompressedLen)
	if _, err := ra.ReadAt(buf, h.PayloadOffset); err != nil {
		return nil, fmt.Errorf("%w: reading data block payload: %v", types.ErrTruncatedStream, err)
	}
	return buf, nil
}

// ReadUncompressed decompresses h's payload with codec and verifies the
// result's length against h.UncompressedLen. A block whose UncompressedLen
// is 0 (a spanning block) is rejected with ErrSpanningNotSupported before
// any decompression.
func ReadUncompressed(codec compression.Decompressor, payload []byte, h *types.DataBlockHeader) ([]byte, error) {
	if h.IsSpanning() {
		return nil, fmt.Errorf("%w: data block spans into next cabinet", types.ErrSpanningNotSupported)
	}
	out, err := codec.Decompress(payload, int(h.UncompressedLen))
	if err != nil {
		return nil, err
	}
	if len(out) != int(h.UncompressedLen) {
		return nil, fmt.Errorf("%w: declared %d bytes, decompressed %d", types.ErrCorruptedData, h.UncompressedLen, len(out))
	}
	return out, nil
}

// EncodeDataBlock compresses data with codec and returns a header (with
// CompressedLen/UncompressedLen set, checksum left zero, and a
// zero-filled reserved area of reservedSize bytes) and the compressed
// payload ready to write.
func EncodeDataBlock(codec compression.Compressor, data []byte, reservedSize uint8) (*types.DataBlockHeader, []byte, error) {
	if len(data) > types.MaxBlockUncompressedSize {
		return nil, nil, fmt.Errorf("data block of %d bytes exceeds max %d", len(data), types.MaxBlockUncompressedSize)
	}
	payload, err := codec.Compress(data)
	if err != nil {
		return nil, nil, err
	}
	if len(payload) > 0xFFFF || len(data) > 0xFFFF {
		return nil, nil, fmt.Errorf("data block payload of %d bytes overflows CFDATA length field", len(payload))
	}
	h := &types.DataBlockHeader{
		CompressedLen:   uint16(len(payload)),
		UncompressedLen: uint16(len(data)),
	}
	if reservedSize > 0 {
		h.Reserved = make([]byte, reservedSize)
	}
	return h, payload, nil
}
