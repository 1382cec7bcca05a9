package cabfile

import (
	"fmt"
	"io"

	"github.com/cabinetfs/go-cab/internal/types"
)

// ReadFolderHeader parses one CFFOLDER record. reservedSize comes from the
// owning cabinet's header (DataReservedSize-equivalent for folders —
// spec.md §6's FolderReservedSize).
func ReadFolderHeader(r io.Reader, reservedSize uint8) (*types.FolderHeader, error) {
	h := &types.FolderHeader{}

	offset, err := types.ReadUint32(r)
	if err != nil {
		return nil, err
	}
	h.FirstDataBlockOffset = offset

	if h.DataBlockCount, err = types.ReadUint16(r); err != nil {
		return nil, err
	}

	compType, err := types.ReadUint16(r)
	if err != nil {
		return nil, err
	}
	h.CompressionType = types.CompressionType(compType)

	if reservedSize > 0 {
		h.Reserved = make([]byte, reservedSize)
		if _, err := io.ReadFull(r, h.Reserved); err != nil {
			return nil, fmt.Errorf("%w: reading folder reserved area: %v", types.ErrTruncatedStream, err)
		}
	}

	return h, nil
}

// WriteFolderHeader emits h in the layout ReadFolderHeader expects.
func WriteFolderHeader(w io.Writer, h *types.FolderHeader) error {
	if err := types.WriteUint32(w, h.FirstDataBlockOffset); err != nil {
		return err
	}
	if err := types.WriteUint16(w, h.DataBlockCount); err != nil {
		return err
	}
	if err := types.WriteUint16(w, uint16(h.CompressionType)); err != nil {
		return err
	}
	if len(h.Reserved) > 0 {
		if _, err := w.Write(h.Reserved); err != nil {
			return err
		}
	}
	return nil
}

// FolderHeaderSize returns the on-disk size of a single folder header
// given the per-folder reserved-area size, used by Cabinet.Save to
// compute FirstFileEntryOffset before any folder has actually been
// written.
func FolderHeaderSize(reservedSize uint8) int64 {
	return 4 + 2 + 2 + int64(reservedSize)
}
