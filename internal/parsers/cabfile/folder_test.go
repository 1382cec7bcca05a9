package cabfile

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cabinetfs/go-cab/internal/types"
)

func TestFolderHeaderRoundTrip(t *testing.T) {
	h := &types.FolderHeader{
		FirstDataBlockOffset: 4096,
		DataBlockCount:       3,
		CompressionType:      types.CompressionNone,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteFolderHeader(&buf, h))
	assert.Equal(t, FolderHeaderSize(0), int64(buf.Len()))

	got, err := ReadFolderHeader(&buf, 0)
	require.NoError(t, err)
	assert.Equal(t, h.FirstDataBlockOffset, got.FirstDataBlockOffset)
	assert.Equal(t, h.DataBlockCount, got.DataBlockCount)
	assert.Equal(t, h.CompressionType, got.CompressionType)
}

func TestFolderHeaderWithReservedArea(t *testing.T) {
	h := &types.FolderHeader{
		FirstDataBlockOffset: 128,
		DataBlockCount:       1,
		CompressionType:      types.CompressionMSZip,
		Reserved:             []byte{0x01, 0x02, 0x03},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteFolderHeader(&buf, h))
	assert.Equal(t, FolderHeaderSize(3), int64(buf.Len()))

	got, err := ReadFolderHeader(&buf, 3)
	require.NoError(t, err)
	assert.Equal(t, h.Reserved, got.Reserved)
	assert.Equal(t, types.CompressionMSZip, got.CompressionType)
}
