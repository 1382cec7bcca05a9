package cabfile

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cabinetfs/go-cab/internal/types"
)

func TestCabinetHeaderRoundTrip(t *testing.T) {
	h := &types.CabinetHeader{
		VersionMajor:         types.VersionMajor,
		VersionMinor:         types.VersionMinor,
		CabinetSize:          1234,
		FirstFileEntryOffset: 99,
		FolderCount:          2,
		FileCount:            3,
		SetID:                7,
		CabinetIndex:         0,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCabinetHeader(&buf, h))

	got, err := ReadCabinetHeader(&buf)
	require.NoError(t, err)
	assert.Equal(t, h.CabinetSize, got.CabinetSize)
	assert.Equal(t, h.FirstFileEntryOffset, got.FirstFileEntryOffset)
	assert.Equal(t, h.FolderCount, got.FolderCount)
	assert.Equal(t, h.FileCount, got.FileCount)
	assert.Equal(t, h.SetID, got.SetID)
	assert.False(t, got.HasReserve())
	assert.False(t, got.HasPrevious())
	assert.False(t, got.HasNext())
}

func TestCabinetHeaderWithReserveAndChaining(t *testing.T) {
	h := &types.CabinetHeader{
		VersionMajor:        types.VersionMajor,
		VersionMinor:        types.VersionMinor,
		Flags:               types.FlagReservePresent | types.FlagPrevCabinet | types.FlagNextCabinet,
		CabinetReservedSize: 4,
		FolderReservedSize:  1,
		DataReservedSize:    2,
		CabinetReserved:     []byte{0xAA, 0xBB, 0xCC, 0xDD},
		PreviousCabinet:     "disk1.cab",
		PreviousDisk:        "Disk 1",
		NextCabinet:         "disk3.cab",
		NextDisk:            "Disk 3",
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCabinetHeader(&buf, h))

	got, err := ReadCabinetHeader(&buf)
	require.NoError(t, err)
	assert.True(t, got.HasReserve())
	assert.Equal(t, h.CabinetReserved, got.CabinetReserved)
	assert.True(t, got.HasPrevious())
	assert.Equal(t, "disk1.cab", got.PreviousCabinet)
	assert.Equal(t, "Disk 1", got.PreviousDisk)
	assert.True(t, got.HasNext())
	assert.Equal(t, "disk3.cab", got.NextCabinet)
	assert.Equal(t, "Disk 3", got.NextDisk)
}

func TestReadCabinetHeaderRejectsBadSignature(t *testing.T) {
	bad := bytes.Repeat([]byte{0x00}, 36)
	_, err := ReadCabinetHeader(bytes.NewReader(bad))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrUnsupportedFormat)
}

func TestReadCabinetHeaderRejectsWrongVersion(t *testing.T) {
	h := &types.CabinetHeader{VersionMajor: 2, VersionMinor: 0}
	var buf bytes.Buffer
	require.NoError(t, writeHeaderForVersionTest(&buf, h))
	_, err := ReadCabinetHeader(&buf)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrUnsupportedFormat)
}

// writeHeaderForVersionTest bypasses WriteCabinetHeader's hard-coded
// current version so the version-rejection path can be exercised.
func writeHeaderForVersionTest(buf *bytes.Buffer, h *types.CabinetHeader) error {
	buf.Write(types.Signature[:])
	buf.Write(make([]byte, 4))
	_ = types.WriteUint32(buf, h.CabinetSize)
	buf.Write(make([]byte, 4))
	_ = types.WriteUint32(buf, h.FirstFileEntryOffset)
	buf.Write(make([]byte, 4))
	_ = types.WriteUint8(buf, h.VersionMinor)
	_ = types.WriteUint8(buf, h.VersionMajor)
	_ = types.WriteUint16(buf, h.FolderCount)
	_ = types.WriteUint16(buf, h.FileCount)
	_ = types.WriteUint16(buf, h.Flags)
	_ = types.WriteUint16(buf, h.SetID)
	_ = types.WriteUint16(buf, h.CabinetIndex)
	return nil
}
