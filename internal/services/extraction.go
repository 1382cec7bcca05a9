package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cabinetfs/go-cab/internal/iox"
	"github.com/cabinetfs/go-cab/internal/types"
)

// ExtractFileFromDataBlocks writes file's uncompressed bytes to destPath,
// reading through fr in fixed-size chunks (spec.md §4.6). Attributes and
// the last-write time are applied to destPath from file's record after
// all bytes are written.
func ExtractFileFromDataBlocks(ctx context.Context, fr *FolderReader, file *types.FileHeader, destPath string, progress types.ProgressFunc) error {
	dest, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", destPath, err)
	}
	defer dest.Close()

	stream, err := fr.OpenFile(ctx, file.Name)
	if err != nil {
		return err
	}

	buf := make([]byte, types.MaxBlockUncompressedSize)
	var done int64
	for {
		select {
		case <-ctx.Done():
			return types.ErrCancelled
		default:
		}

		n, readErr := stream.Read(buf)
		if n > 0 {
			if _, werr := dest.Write(buf[:n]); werr != nil {
				return fmt.Errorf("writing %s: %w", destPath, werr)
			}
			done += int64(n)
			progress.Report(file.Name, done)
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			return readErr
		}
		if n == 0 {
			break
		}
	}

	modTime := types.DecodeDosDateTime(file.DosDate, file.DosTime).Local()
	return iox.ApplyAttributes(destPath, file.Attributes, modTime)
}
