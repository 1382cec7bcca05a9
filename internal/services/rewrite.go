package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cabinetfs/go-cab/internal/compression"
	"github.com/cabinetfs/go-cab/internal/parsers/cabfile"
	"github.com/cabinetfs/go-cab/internal/types"
)

// WriteFolderDataBlocks streams one folder's files into a fresh sequence
// of CFDATA records written to w (spec.md §4.6's "folder rewrite"). Each
// file in files is read from one of two sources: a file carrying
// AbsolutePath (added via Cabinet.AddExternalFile since the cabinet was
// opened) is read straight off the host filesystem; everything else is
// read back out of source, the folder's own pre-Save data blocks. Bytes
// from both kinds of source are mixed into one 32768-byte staging
// buffer and flushed as a data block whenever it fills, so a file
// boundary never forces a short block.
//
// It returns the number of data blocks written and the total bytes
// written to w; the caller already knows the offset w was positioned at
// and uses these to patch the folder's FirstDataBlockOffset and
// DataBlockCount.
func WriteFolderDataBlocks(ctx context.Context, w io.Writer, codec compression.Codec, reservedSize uint8, files []*types.FileHeader, source *FolderReader, progress types.ProgressFunc) (blockCount uint16, bytesWritten int64, err error) {
	staging := make([]byte, types.MaxBlockUncompressedSize)
	fill := 0

	flush := func() error {
		if fill == 0 {
			return nil
		}
		if blockCount == types.MaxDataBlocksPerFolder {
			return types.ErrTooManyDataBlocks
		}
		hdr, payload, err := cabfile.EncodeDataBlock(codec, staging[:fill], reservedSize)
		if err != nil {
			return err
		}
		if err := cabfile.WriteDataBlockHeader(w, hdr); err != nil {
			return err
		}
		if _, err := w.Write(payload); err != nil {
			return err
		}
		bytesWritten += cabfile.DataBlockHeaderSize(reservedSize) + int64(len(payload))
		blockCount++
		fill = 0
		return nil
	}

	for _, file := range files {
		r, closer, err := openFileSource(ctx, file, source)
		if err != nil {
			return blockCount, bytesWritten, err
		}

		var fileDone int64
		for {
			select {
			case <-ctx.Done():
				if closer != nil {
					closer.Close()
				}
				return blockCount, bytesWritten, types.ErrCancelled
			default:
			}

			n, readErr := r.Read(staging[fill:])
			fill += n
			fileDone += int64(n)
			if n > 0 {
				progress.Report(file.Name, fileDone)
			}

			if fill == len(staging) {
				if err := flush(); err != nil {
					if closer != nil {
						closer.Close()
					}
					return blockCount, bytesWritten, err
				}
			}

			if readErr != nil {
				if closer != nil {
					closer.Close()
				}
				if errors.Is(readErr, io.EOF) {
					break
				}
				return blockCount, bytesWritten, readErr
			}
			if n == 0 {
				if closer != nil {
					closer.Close()
				}
				break
			}
		}
	}

	if err := flush(); err != nil {
		return blockCount, bytesWritten, err
	}

	return blockCount, bytesWritten, nil
}

// openFileSource returns a reader for file's uncompressed bytes: the
// host filesystem if file is pending (added externally and not yet
// folded into a data block), otherwise the file's existing span within
// source. The returned io.Closer is nil for the source-reader case,
// which owns no closable resource of its own.
func openFileSource(ctx context.Context, file *types.FileHeader, source *FolderReader) (io.Reader, io.Closer, error) {
	if file.IsPending() {
		f, err := os.Open(file.AbsolutePath)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s: %v", types.ErrMissingSource, file.AbsolutePath, err)
		}
		return f, f, nil
	}
	stream, err := source.OpenFile(ctx, file.Name)
	if err != nil {
		return nil, nil, err
	}
	return stream, nil, nil
}
