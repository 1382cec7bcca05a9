package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCabinetHeaderFlagPredicates(t *testing.T) {
	h := &CabinetHeader{Flags: FlagReservePresent | FlagNextCabinet}
	assert.True(t, h.HasReserve())
	assert.True(t, h.HasNext())
	assert.False(t, h.HasPrevious())
}

func TestIsSpanningFolderIndex(t *testing.T) {
	assert.True(t, IsSpanningFolderIndex(FolderIndexContinuedFromPrev))
	assert.True(t, IsSpanningFolderIndex(FolderIndexContinuedToNext))
	assert.True(t, IsSpanningFolderIndex(FolderIndexContinuedBoth))
	assert.False(t, IsSpanningFolderIndex(0))
	assert.False(t, IsSpanningFolderIndex(12))
}

func TestFileHeaderIsPending(t *testing.T) {
	f := &FileHeader{}
	assert.False(t, f.IsPending())
	f.AbsolutePath = "/tmp/x.txt"
	assert.True(t, f.IsPending())
}

func TestDataBlockHeaderIsSpanning(t *testing.T) {
	d := &DataBlockHeader{UncompressedLen: 0}
	assert.True(t, d.IsSpanning())
	d.UncompressedLen = 10
	assert.False(t, d.IsSpanning())
}
