package services

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cabinetfs/go-cab/internal/compression"
	"github.com/cabinetfs/go-cab/internal/parsers/cabfile"
	"github.com/cabinetfs/go-cab/internal/types"
)

func TestWriteFolderDataBlocksMixesExternalAndExistingSources(t *testing.T) {
	ra, folder := buildFolderBlocks(t, []byte("existing-bytes"))
	codec, err := compression.Lookup(types.CompressionNone)
	require.NoError(t, err)
	source := NewFolderReader(ra, folder, 0, codec)
	source.IndexFile("old.txt", 0, uint32(len("existing-bytes")))

	extDir := t.TempDir()
	extPath := filepath.Join(extDir, "new.txt")
	require.NoError(t, os.WriteFile(extPath, []byte("brand new content"), 0644))

	files := []*types.FileHeader{
		{Name: "new.txt", UncompressedSize: uint32(len("brand new content")), AbsolutePath: extPath},
		{Name: "old.txt", UncompressedSize: uint32(len("existing-bytes"))},
	}

	var out bytes.Buffer
	blockCount, bytesWritten, err := WriteFolderDataBlocks(context.Background(), &out, codec, 0, files, source, nil)
	require.NoError(t, err)
	assert.Equal(t, uint16(1), blockCount, "both files fit in one 32KiB block")
	assert.Greater(t, bytesWritten, int64(0))

	// Decode the single block back and confirm both files' bytes survived
	// concatenation in file order.
	hdr, err := cabfile.ReadDataBlockHeader(bytes.NewReader(out.Bytes()), 0, 0)
	require.NoError(t, err)
	payload := out.Bytes()[cabfile.DataBlockHeaderSize(0):]
	decoded, err := cabfile.ReadUncompressed(codec, payload[:hdr.CompressedLen], hdr)
	require.NoError(t, err)
	assert.Equal(t, "brand new contentexisting-bytes", string(decoded))
}

func TestWriteFolderDataBlocksFlushesOnBlockBoundary(t *testing.T) {
	codec, err := compression.Lookup(types.CompressionNone)
	require.NoError(t, err)

	extDir := t.TempDir()
	extPath := filepath.Join(extDir, "big.bin")
	big := bytes.Repeat([]byte{0x42}, int(types.MaxBlockUncompressedSize)+100)
	require.NoError(t, os.WriteFile(extPath, big, 0644))

	files := []*types.FileHeader{
		{Name: "big.bin", UncompressedSize: uint32(len(big)), AbsolutePath: extPath},
	}

	var out bytes.Buffer
	blockCount, _, err := WriteFolderDataBlocks(context.Background(), &out, codec, 0, files, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, uint16(2), blockCount, "data past one 32KiB block forces a second block")
}

func TestWriteFolderDataBlocksMissingExternalSource(t *testing.T) {
	codec, err := compression.Lookup(types.CompressionNone)
	require.NoError(t, err)

	files := []*types.FileHeader{
		{Name: "gone.txt", UncompressedSize: 10, AbsolutePath: "/no/such/path.txt"},
	}

	var out bytes.Buffer
	_, _, err = WriteFolderDataBlocks(context.Background(), &out, codec, 0, files, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrMissingSource)
}
