package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cabinetfs/go-cab/internal/compression"
	"github.com/cabinetfs/go-cab/internal/types"
)

func TestExtractFileFromDataBlocksWritesBytesAndAttributes(t *testing.T) {
	ra, folder := buildFolderBlocks(t, []byte("extracted content"))
	codec, err := compression.Lookup(types.CompressionNone)
	require.NoError(t, err)
	fr := NewFolderReader(ra, folder, 0, codec)
	fr.IndexFile("out.txt", 0, uint32(len("extracted content")))

	date, timeField := types.EncodeDosDateTime(time.Date(2020, time.March, 4, 10, 0, 0, 0, time.UTC))
	file := &types.FileHeader{
		Name:             "out.txt",
		UncompressedSize: uint32(len("extracted content")),
		DosDate:          date,
		DosTime:          timeField,
		Attributes:       types.AttrReadOnly,
	}

	dir := t.TempDir()
	dest := filepath.Join(dir, "out.txt")

	var lastDone int64
	err = ExtractFileFromDataBlocks(context.Background(), fr, file, dest, func(e types.ProgressEvent) {
		lastDone = e.BytesDone
	})
	require.NoError(t, err)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "extracted content", string(got))
	assert.Equal(t, int64(len("extracted content")), lastDone)

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0444), info.Mode().Perm())
}

func TestExtractFileFromDataBlocksRespectsCancellation(t *testing.T) {
	ra, folder := buildFolderBlocks(t, []byte("content that would be copied"))
	codec, _ := compression.Lookup(types.CompressionNone)
	fr := NewFolderReader(ra, folder, 0, codec)
	fr.IndexFile("big.txt", 0, 28)

	file := &types.FileHeader{Name: "big.txt", UncompressedSize: 28}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dest := filepath.Join(t.TempDir(), "big.txt")
	err := ExtractFileFromDataBlocks(ctx, fr, file, dest, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrCancelled)
}
