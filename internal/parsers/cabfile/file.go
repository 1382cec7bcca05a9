package cabfile

import (
	"fmt"
	"io"

	"github.com/cabinetfs/go-cab/internal/types"
)

// ReadFileHeader parses one CFFILE record: the fixed 16-byte portion plus
// its NUL-terminated name. The name-is-UTF-8 attribute bit only affects
// how a reader should interpret the bytes; decoding always just reads
// bytes, since ASCII is a byte-identical subset of UTF-8.
func ReadFileHeader(r io.Reader) (*types.FileHeader, error) {
	h := &types.FileHeader{}

	var err error
	if h.UncompressedSize, err = types.ReadUint32(r); err != nil {
		return nil, err
	}
	if h.UncompressedOffset, err = types.ReadUint32(r); err != nil {
		return nil, err
	}
	if h.FolderIndex, err = types.ReadUint16(r); err != nil {
		return nil, err
	}
	if h.DosDate, err = types.ReadUint16(r); err != nil {
		return nil, err
	}
	if h.DosTime, err = types.ReadUint16(r); err != nil {
		return nil, err
	}
	if h.Attributes, err = types.ReadUint16(r); err != nil {
		return nil, err
	}
	if h.Name, err = types.ReadNulTerminatedString(r); err != nil {
		return nil, err
	}

	return h, nil
}

// WriteFileHeader emits h's fixed portion and name. The name-is-UTF-8
// attribute bit is (re)computed from h.Name's bytes and written in place
// of whatever bit was already set on h.Attributes, matching spec.md §4.5:
// "on emission, the name is encoded as ASCII if ... all code points <=
// 0x7F; otherwise as UTF-8 and the attribute bit is set."
func WriteFileHeader(w io.Writer, h *types.FileHeader) error {
	nameBytes := []byte(h.Name)
	if len(nameBytes)+1 >= 256 {
		return fmt.Errorf("%w: %q is %d bytes", types.ErrNameTooLong, h.Name, len(nameBytes))
	}

	attrs := h.Attributes &^ types.AttrNameUTF8
	if !types.IsASCIIBytes(nameBytes) {
		attrs |= types.AttrNameUTF8
	}

	if err := types.WriteUint32(w, h.UncompressedSize); err != nil {
		return err
	}
	if err := types.WriteUint32(w, h.UncompressedOffset); err != nil {
		return err
	}
	if err := types.WriteUint16(w, h.FolderIndex); err != nil {
		return err
	}
	if err := types.WriteUint16(w, h.DosDate); err != nil {
		return err
	}
	if err := types.WriteUint16(w, h.DosTime); err != nil {
		return err
	}
	if err := types.WriteUint16(w, attrs); err != nil {
		return err
	}
	return types.WriteNulTerminatedString(w, h.Name)
}
