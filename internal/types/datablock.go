package types

// MaxBlockUncompressedSize is the hard cap on a single data block's
// uncompressed payload, independent of the compression in use. It also
// doubles as the chunk size used throughout this library for extraction
// and rewrite staging buffers.
const MaxBlockUncompressedSize = 32768

// DataBlockHeader is the on-disk CFDATA record: a checksum (never computed
// or verified by this codec; always written as zero), the compressed and
// uncompressed lengths, and an optional reserved area sized by the
// cabinet header's DataReservedSize. The compressed payload immediately
// follows on disk but is not part of this struct.
type DataBlockHeader struct {
	Checksum          uint32
	CompressedLen     uint16
	UncompressedLen   uint16
	Reserved          []byte

	// PayloadOffset is the on-disk byte offset of the compressed payload
	// that follows this header. It is derived while parsing, not stored
	// on disk.
	PayloadOffset int64

	// UncompressedStart is this block's logical position within the
	// folder's uncompressed byte stream. Also derived, not stored.
	UncompressedStart int64
}

// IsSpanning reports whether this block's uncompressed content continues
// into the next cabinet in a set (UncompressedLen == 0). Reading such a
// block is not supported by this codec.
func (d *DataBlockHeader) IsSpanning() bool {
	return d.UncompressedLen == 0
}
