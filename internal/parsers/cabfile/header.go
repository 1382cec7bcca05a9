// Package cabfile decodes and encodes the cabinet format's binary
// records: the cabinet header, folder headers, file headers, and
// data-block headers (C3, C5, C6, C7 in spec.md's component table,
// parsing-and-emission slice only — the stateful folder/cabinet
// orchestration lives in internal/services).
package cabfile

import (
	"fmt"
	"io"

	"github.com/cabinetfs/go-cab/internal/types"
)

// ReadCabinetHeader parses the 36-byte fixed header and any flag-gated
// optional sections from r. It does not read folder or file records.
//
// A next-cabinet flag is preserved on the returned header rather than
// rejected here — spec.md §4.7 assigns that rejection to Cabinet.Open,
// after the header (and its names, for preservation) has been parsed.
func ReadCabinetHeader(r io.Reader) (*types.CabinetHeader, error) {
	h := &types.CabinetHeader{}

	if _, err := io.ReadFull(r, h.Signature[:]); err != nil {
		return nil, fmt.Errorf("%w: reading signature: %v", types.ErrTruncatedStream, err)
	}
	if h.Signature != types.Signature {
		return nil, fmt.Errorf("%w: signature %q", types.ErrUnsupportedFormat, h.Signature)
	}

	if err := skipBytes(r, 4); err != nil { // reserved1
		return nil, err
	}
	size, err := types.ReadUint32(r)
	if err != nil {
		return nil, err
	}
	h.CabinetSize = size

	if err := skipBytes(r, 4); err != nil { // reserved2
		return nil, err
	}
	firstFileOffset, err := types.ReadUint32(r)
	if err != nil {
		return nil, err
	}
	h.FirstFileEntryOffset = firstFileOffset

	if err := skipBytes(r, 4); err != nil { // reserved3
		return nil, err
	}

	h.VersionMinor, err = types.ReadUint8(r)
	if err != nil {
		return nil, err
	}
	h.VersionMajor, err = types.ReadUint8(r)
	if err != nil {
		return nil, err
	}
	if h.VersionMajor != types.VersionMajor || h.VersionMinor != types.VersionMinor {
		return nil, fmt.Errorf("%w: version %d.%d", types.ErrUnsupportedFormat, h.VersionMajor, h.VersionMinor)
	}

	if h.FolderCount, err = types.ReadUint16(r); err != nil {
		return nil, err
	}
	if h.FileCount, err = types.ReadUint16(r); err != nil {
		return nil, err
	}
	if h.Flags, err = types.ReadUint16(r); err != nil {
		return nil, err
	}
	if h.SetID, err = types.ReadUint16(r); err != nil {
		return nil, err
	}
	if h.CabinetIndex, err = types.ReadUint16(r); err != nil {
		return nil, err
	}

	if h.HasReserve() {
		if h.CabinetReservedSize, err = types.ReadUint16(r); err != nil {
			return nil, err
		}
		if h.FolderReservedSize, err = types.ReadUint8(r); err != nil {
			return nil, err
		}
		if h.DataReservedSize, err = types.ReadUint8(r); err != nil {
			return nil, err
		}
		if h.CabinetReservedSize > types.MaxCabinetReservedSize {
			return nil, fmt.Errorf("%w: cabinet reserved size %d exceeds %d", types.ErrUnsupportedFormat, h.CabinetReservedSize, types.MaxCabinetReservedSize)
		}
		h.CabinetReserved = make([]byte, h.CabinetReservedSize)
		if _, err := io.ReadFull(r, h.CabinetReserved); err != nil {
			return nil, fmt.Errorf("%w: reading cabinet reserved area: %v", types.ErrTruncatedStream, err)
		}
	}

	if h.HasPrevious() {
		if h.PreviousCabinet, err = types.ReadNulTerminatedString(r); err != nil {
			return nil, err
		}
		if h.PreviousDisk, err = types.ReadNulTerminatedString(r); err != nil {
			return nil, err
		}
	}
	if h.HasNext() {
		if h.NextCabinet, err = types.ReadNulTerminatedString(r); err != nil {
			return nil, err
		}
		if h.NextDisk, err = types.ReadNulTerminatedString(r); err != nil {
			return nil, err
		}
	}

	return h, nil
}

// WriteCabinetHeader emits h's fixed and optional sections to w in the
// same order ReadCabinetHeader expects them.
func WriteCabinetHeader(w io.Writer, h *types.CabinetHeader) error {
	if _, err := w.Write(types.Signature[:]); err != nil {
		return err
	}
	if err := writeZero(w, 4); err != nil {
		return err
	}
	if err := types.WriteUint32(w, h.CabinetSize); err != nil {
		return err
	}
	if err := writeZero(w, 4); err != nil {
		return err
	}
	if err := types.WriteUint32(w, h.FirstFileEntryOffset); err != nil {
		return err
	}
	if err := writeZero(w, 4); err != nil {
		return err
	}
	if err := types.WriteUint8(w, types.VersionMinor); err != nil {
		return err
	}
	if err := types.WriteUint8(w, types.VersionMajor); err != nil {
		return err
	}
	if err := types.WriteUint16(w, h.FolderCount); err != nil {
		return err
	}
	if err := types.WriteUint16(w, h.FileCount); err != nil {
		return err
	}
	if err := types.WriteUint16(w, h.Flags); err != nil {
		return err
	}
	if err := types.WriteUint16(w, h.SetID); err != nil {
		return err
	}
	if err := types.WriteUint16(w, h.CabinetIndex); err != nil {
		return err
	}

	if h.HasReserve() {
		if h.CabinetReservedSize > types.MaxCabinetReservedSize {
			return fmt.Errorf("%w: cabinet reserved size %d exceeds %d", types.ErrUnsupportedFormat, h.CabinetReservedSize, types.MaxCabinetReservedSize)
		}
		if err := types.WriteUint16(w, h.CabinetReservedSize); err != nil {
			return err
		}
		if err := types.WriteUint8(w, h.FolderReservedSize); err != nil {
			return err
		}
		if err := types.WriteUint8(w, h.DataReservedSize); err != nil {
			return err
		}
		if _, err := w.Write(h.CabinetReserved); err != nil {
			return err
		}
	}

	if h.HasPrevious() {
		if err := writeCabinetName(w, h.PreviousCabinet); err != nil {
			return err
		}
		if err := writeCabinetName(w, h.PreviousDisk); err != nil {
			return err
		}
	}
	if h.HasNext() {
		if err := writeCabinetName(w, h.NextCabinet); err != nil {
			return err
		}
		if err := writeCabinetName(w, h.NextDisk); err != nil {
			return err
		}
	}

	return nil
}

func writeCabinetName(w io.Writer, name string) error {
	if len(name)+1 > types.MaxCabinetNameLength {
		return fmt.Errorf("%w: cabinet name %q", types.ErrNameTooLong, name)
	}
	return types.WriteNulTerminatedString(w, name)
}

func skipBytes(r io.Reader, n int) error {
	_, err := io.CopyN(io.Discard, r, int64(n))
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrTruncatedStream, err)
	}
	return nil
}

func writeZero(w io.Writer, n int) error {
	_, err := w.Write(make([]byte, n))
	return err
}
