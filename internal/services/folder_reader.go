// Package services implements the stateful pieces of the cabinet codec:
// the streaming uncompressed reader and folder rewrite pipeline (C6), and
// the cabinet-level orchestration that drives them (C7). It is grounded
// on internal/services/container_reader.go's shape in the teacher
// lineage — an *os.File-backed reader guarded by a mutex, with a small
// decode cache — adapted from "one block per container" to "one block
// per folder".
package services

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/cabinetfs/go-cab/internal/compression"
	"github.com/cabinetfs/go-cab/internal/parsers/cabfile"
	"github.com/cabinetfs/go-cab/internal/types"
)

// fileRange is a file's span within its owning folder's uncompressed byte
// stream.
type fileRange struct {
	offset int64
	length int64
}

// FolderReader is the streaming uncompressed reader and lazy data-block
// loader described in spec.md §4.6. Data-block headers are read on first
// need ("Lazy data-header read"), not at cabinet open time.
type FolderReader struct {
	ra           io.ReaderAt
	folder       *types.FolderHeader
	reservedSize uint8
	codec        compression.Codec

	mu          sync.Mutex
	loaded      bool
	blocks      []*types.DataBlockHeader
	cachedBlock *types.DataBlockHeader
	cachedData  []byte

	fileRanges map[string]fileRange
}

// NewFolderReader constructs a reader over folder's data blocks, read
// through ra (typically the cabinet's open *os.File). codec must match
// folder.CompressionType; the caller is responsible for rejecting
// unsupported compression types before constructing a FolderReader.
func NewFolderReader(ra io.ReaderAt, folder *types.FolderHeader, reservedSize uint8, codec compression.Codec) *FolderReader {
	return &FolderReader{
		ra:           ra,
		folder:       folder,
		reservedSize: reservedSize,
		codec:        codec,
		fileRanges:   make(map[string]fileRange),
	}
}

// IndexFile records relPath's span within the folder's uncompressed
// stream so OpenFile can later resolve it.
func (fr *FolderReader) IndexFile(relPath string, offset, length uint32) {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	fr.fileRanges[strings.ToLower(relPath)] = fileRange{offset: int64(offset), length: int64(length)}
}

// Rename updates the reader's internal path index so a file that has been
// renamed (Cabinet.MoveFile) in memory but not yet rewritten to disk can
// still be located by its new name when Save sources its bytes from this
// folder's existing data blocks.
func (fr *FolderReader) Rename(oldRelPath, newRelPath string) {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	oldKey := strings.ToLower(oldRelPath)
	rng, ok := fr.fileRanges[oldKey]
	if !ok {
		return
	}
	delete(fr.fileRanges, oldKey)
	fr.fileRanges[strings.ToLower(newRelPath)] = rng
}

// loadBlocks walks the folder's CFDATA headers starting at
// FirstDataBlockOffset, the folder's "either Unread or Loaded" state
// transition (spec.md §9).
func (fr *FolderReader) loadBlocks() error {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	if fr.loaded {
		return nil
	}

	sr := io.NewSectionReader(fr.ra, int64(fr.folder.FirstDataBlockOffset), math.MaxInt32)
	blocks := make([]*types.DataBlockHeader, 0, fr.folder.DataBlockCount)
	var cursor int64
	for i := 0; i < int(fr.folder.DataBlockCount); i++ {
		headerStart, err := sr.Seek(0, io.SeekCurrent)
		if err != nil {
			return fmt.Errorf("%w: folder data block %d: %v", types.ErrTruncatedStream, i, err)
		}
		hdr, err := cabfile.ReadDataBlockHeader(sr, fr.reservedSize, 0)
		if err != nil {
			return fmt.Errorf("%w: folder data block %d: %v", types.ErrTruncatedStream, i, err)
		}
		hdr.PayloadOffset = int64(fr.folder.FirstDataBlockOffset) + headerStart + cabfile.DataBlockHeaderSize(fr.reservedSize)
		hdr.UncompressedStart = cursor
		cursor += int64(hdr.UncompressedLen)
		blocks = append(blocks, hdr)

		if _, err := sr.Seek(int64(hdr.CompressedLen), io.SeekCurrent); err != nil {
			return fmt.Errorf("%w: skipping payload of data block %d: %v", types.ErrTruncatedStream, i, err)
		}
	}

	fr.blocks = blocks
	fr.loaded = true
	return nil
}

// findBlockLocked returns the block covering offset in the folder's
// uncompressed stream, and offset's position within that block. Must be
// called with fr.mu held.
func (fr *FolderReader) findBlockLocked(offset int64) (*types.DataBlockHeader, int64, bool) {
	idx := sort.Search(len(fr.blocks), func(i int) bool {
		return fr.blocks[i].UncompressedStart+int64(fr.blocks[i].UncompressedLen) > offset
	})
	if idx >= len(fr.blocks) {
		return nil, 0, false
	}
	b := fr.blocks[idx]
	if offset < b.UncompressedStart {
		return nil, 0, false
	}
	return b, offset - b.UncompressedStart, true
}

// readAt copies up to len(buf) bytes starting at the folder-relative
// uncompressed offset into buf, decompressing and caching one block at a
// time so a sequential read never decompresses the same block twice.
func (fr *FolderReader) readAt(offset int64, buf []byte) (int, error) {
	if err := fr.loadBlocks(); err != nil {
		return 0, err
	}

	fr.mu.Lock()
	defer fr.mu.Unlock()

	b, localOffset, ok := fr.findBlockLocked(offset)
	if !ok {
		return 0, io.EOF
	}

	if fr.cachedBlock != b {
		payload, err := cabfile.ReadPayload(fr.ra, b)
		if err != nil {
			return 0, err
		}
		data, err := cabfile.ReadUncompressed(fr.codec, payload, b)
		if err != nil {
			return 0, err
		}
		fr.cachedBlock = b
		fr.cachedData = data
	}

	available := int64(len(fr.cachedData)) - localOffset
	n := int64(len(buf))
	if n > available {
		n = available
	}
	if n <= 0 {
		return 0, io.EOF
	}
	copy(buf[:n], fr.cachedData[localOffset:localOffset+n])
	return int(n), nil
}

// FileStream reads one file's uncompressed bytes out of its owning
// folder's data blocks, advancing a cursor across successive Read calls
// (spec.md §4.6's "streaming uncompressed reader").
type FileStream struct {
	fr            *FolderReader
	start, length int64
	cursor        int64
}

// Read implements io.Reader. Exhausting the folder's data blocks before
// reaching the file's declared length is reported as ErrTruncatedData
// rather than a bare io.EOF.
func (fs *FileStream) Read(p []byte) (int, error) {
	if fs.cursor >= fs.length {
		return 0, io.EOF
	}
	remaining := fs.length - fs.cursor
	if int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err := fs.fr.readAt(fs.start+fs.cursor, p)
	fs.cursor += int64(n)
	if err == io.EOF {
		if fs.cursor < fs.length {
			return n, fmt.Errorf("%w: only %d of %d bytes available", types.ErrTruncatedData, fs.cursor, fs.length)
		}
		return n, io.EOF
	}
	return n, err
}

// OpenFile returns a FileStream positioned at the start of relPath's
// uncompressed bytes. The context is accepted so callers can thread
// cancellation through read loops built on top of this; OpenFile itself
// performs no I/O beyond the lazy block-header load triggered by the
// first Read.
func (fr *FolderReader) OpenFile(ctx context.Context, relPath string) (*FileStream, error) {
	fr.mu.Lock()
	rng, ok := fr.fileRanges[strings.ToLower(relPath)]
	fr.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("no such file in folder: %q", relPath)
	}
	return &FileStream{fr: fr, start: rng.offset, length: rng.length}, nil
}
