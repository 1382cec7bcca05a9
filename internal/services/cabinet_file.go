package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cabinetfs/go-cab/internal/compression"
	"github.com/cabinetfs/go-cab/internal/interfaces"
	"github.com/cabinetfs/go-cab/internal/iox"
	"github.com/cabinetfs/go-cab/internal/managers"
	"github.com/cabinetfs/go-cab/internal/parsers/cabfile"
	"github.com/cabinetfs/go-cab/internal/types"
)

// CabinetFile is the concrete implementation of interfaces.Cabinet (C7):
// a parsed header, its folder and file records, and one FolderReader per
// folder for streaming bytes that still live in the on-disk cabinet.
// Mutations (AddExternalFile, DeleteFile, MoveFile) only touch the
// in-memory record slices; Save is the one operation that touches disk.
type CabinetFile struct {
	mu sync.Mutex

	path   string
	file   *os.File
	header *types.CabinetHeader

	folders []*types.FolderHeader
	files   []*types.FileHeader
	readers []*FolderReader // readers[i] is nil if folders[i]'s compression type is unsupported

	// tempDir overrides where Save creates its temporary file before
	// the atomic rename. Empty means beside the cabinet itself.
	tempDir string

	closed bool
}

// SetTempDir overrides where Save stages its temporary file before the
// atomic rename, instead of the directory the cabinet itself lives in.
func (cf *CabinetFile) SetTempDir(dir string) {
	cf.mu.Lock()
	defer cf.mu.Unlock()
	cf.tempDir = dir
}

// Open parses path's cabinet header, folder records, and file records,
// and builds a lazy FolderReader over each folder. Multi-cabinet sets
// are rejected here (spec.md §4.7): this library only opens a cabinet
// that is not part of a set spanning multiple files.
func Open(path string) (*CabinetFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	cf, err := load(f, path)
	if err != nil {
		f.Close()
		return nil, err
	}
	return cf, nil
}

// New creates an empty cabinet at path with no records and no backing
// file. Nothing is written to disk until Save is called.
func New(path string) *CabinetFile {
	return &CabinetFile{
		path:   path,
		header: &types.CabinetHeader{},
	}
}

func load(f *os.File, path string) (*CabinetFile, error) {
	header, err := cabfile.ReadCabinetHeader(f)
	if err != nil {
		return nil, err
	}
	if header.HasPrevious() || header.HasNext() {
		return nil, types.ErrMultiCabinetUnsupported
	}

	folders := make([]*types.FolderHeader, 0, header.FolderCount)
	for i := 0; i < int(header.FolderCount); i++ {
		fh, err := cabfile.ReadFolderHeader(f, header.FolderReservedSize)
		if err != nil {
			return nil, fmt.Errorf("folder %d: %w", i, err)
		}
		folders = append(folders, fh)
	}

	if _, err := f.Seek(int64(header.FirstFileEntryOffset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: seeking to file entries: %v", types.ErrTruncatedStream, err)
	}

	files := make([]*types.FileHeader, 0, header.FileCount)
	for i := 0; i < int(header.FileCount); i++ {
		fh, err := cabfile.ReadFileHeader(f)
		if err != nil {
			return nil, fmt.Errorf("file %d: %w", i, err)
		}
		files = append(files, fh)
	}

	readers := make([]*FolderReader, len(folders))
	for i, fh := range folders {
		// Only Store (CompressionNone) is read back from an actual
		// cabinet, regardless of what else the registry knows how to
		// decode (see internal/compression/lz4experimental.go) —
		// readers[i] stays nil for anything else, and ExtractToFile
		// reports ErrUnsupportedCompression if something tries to read
		// from it.
		if fh.CompressionType != types.CompressionNone {
			continue
		}
		codec, err := compression.Lookup(fh.CompressionType)
		if err != nil {
			continue
		}
		readers[i] = NewFolderReader(f, fh, header.DataReservedSize, codec)
	}
	for _, fh := range files {
		if types.IsSpanningFolderIndex(fh.FolderIndex) || int(fh.FolderIndex) >= len(readers) {
			continue
		}
		if r := readers[fh.FolderIndex]; r != nil {
			r.IndexFile(fh.Name, fh.UncompressedOffset, fh.UncompressedSize)
		}
	}

	return &CabinetFile{
		path:    path,
		file:    f,
		header:  header,
		folders: folders,
		files:   files,
		readers: readers,
	}, nil
}

// Path returns the cabinet's path on the host filesystem.
func (cf *CabinetFile) Path() string {
	return cf.path
}

// Files returns a copy of every file record currently staged in memory.
func (cf *CabinetFile) Files() []*types.FileHeader {
	cf.mu.Lock()
	defer cf.mu.Unlock()
	out := make([]*types.FileHeader, len(cf.files))
	copy(out, cf.files)
	return out
}

var _ interfaces.Cabinet = (*CabinetFile)(nil)

func (cf *CabinetFile) findFile(relPath string) int {
	key := strings.ToLower(relPath)
	for i, f := range cf.files {
		if strings.ToLower(f.Name) == key {
			return i
		}
	}
	return -1
}

// AddExternalFile stages sourcePath to replace (or create) relPath's
// entry on the next Save. The file's attributes and modification time
// are captured now, from the host filesystem, not re-read at Save time.
func (cf *CabinetFile) AddExternalFile(sourcePath, relPath string) error {
	cf.mu.Lock()
	defer cf.mu.Unlock()

	info, err := os.Stat(sourcePath)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrMissingSource, err)
	}
	if info.Size() > types.MaxFileUncompressedSize {
		return fmt.Errorf("%w: %s is %d bytes", types.ErrFileTooLarge, sourcePath, info.Size())
	}

	attrs, modTime := iox.HostAttributes(sourcePath, info)
	date, timeField := types.EncodeDosDateTime(modTime)

	fh := &types.FileHeader{
		UncompressedSize: uint32(info.Size()),
		DosDate:          date,
		DosTime:          timeField,
		Attributes:       attrs,
		Name:             relPath,
		AbsolutePath:     sourcePath,
	}

	if idx := cf.findFile(relPath); idx >= 0 {
		cf.files[idx] = fh
		return nil
	}

	if len(cf.files) >= types.MaxFiles {
		return types.ErrTooManyFiles
	}
	cf.files = append(cf.files, fh)
	return nil
}

// ExtractToFile writes relPath's uncompressed bytes to destPath. A file
// added via AddExternalFile but not yet saved is copied straight from
// its host source; everything else is streamed out of its owning
// folder's data blocks.
func (cf *CabinetFile) ExtractToFile(ctx context.Context, relPath, destPath string, progress types.ProgressFunc) (bool, error) {
	cf.mu.Lock()
	idx := cf.findFile(relPath)
	if idx < 0 {
		cf.mu.Unlock()
		return false, nil
	}
	file := cf.files[idx]
	var reader *FolderReader
	if !file.IsPending() {
		if types.IsSpanningFolderIndex(file.FolderIndex) {
			cf.mu.Unlock()
			return true, types.ErrSpanningNotSupported
		}
		if int(file.FolderIndex) >= len(cf.readers) || cf.readers[file.FolderIndex] == nil {
			cf.mu.Unlock()
			return true, types.ErrUnsupportedCompression
		}
		reader = cf.readers[file.FolderIndex]
	}
	cf.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return true, err
	}

	if file.IsPending() {
		return true, extractPendingFile(ctx, file, destPath, progress)
	}
	return true, ExtractFileFromDataBlocks(ctx, reader, file, destPath, progress)
}

// extractPendingFile copies a file that was added via AddExternalFile
// and never folded into a data block straight from its host source.
func extractPendingFile(ctx context.Context, file *types.FileHeader, destPath string, progress types.ProgressFunc) error {
	src, err := os.Open(file.AbsolutePath)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrMissingSource, err)
	}
	defer src.Close()

	dest, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", destPath, err)
	}
	defer dest.Close()

	buf := make([]byte, types.MaxBlockUncompressedSize)
	var done int64
	for {
		select {
		case <-ctx.Done():
			return types.ErrCancelled
		default:
		}
		n, readErr := src.Read(buf)
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

// DeleteFile removes every record matching relPath.
func (cf *CabinetFile) DeleteFile(relPath string) (bool, error) {
	cf.mu.Lock()
	defer cf.mu.Unlock()

	removed := false
	for idx := cf.findFile(relPath); idx >= 0; idx = cf.findFile(relPath) {
		cf.files = append(cf.files[:idx], cf.files[idx+1:]...)
		removed = true
	}
	return removed, nil
}

// MoveFile renames oldRelPath to newRelPath in place, replacing any
// existing record already at newRelPath.
func (cf *CabinetFile) MoveFile(oldRelPath, newRelPath string) (bool, error) {
	cf.mu.Lock()
	defer cf.mu.Unlock()

	idx := cf.findFile(oldRelPath)
	if idx < 0 {
		return false, nil
	}
	if other := cf.findFile(newRelPath); other >= 0 && other != idx {
		cf.files = append(cf.files[:other], cf.files[other+1:]...)
		if other < idx {
			idx--
		}
	}

	file := cf.files[idx]
	if !file.IsPending() && !types.IsSpanningFolderIndex(file.FolderIndex) && int(file.FolderIndex) < len(cf.readers) {
		if r := cf.readers[file.FolderIndex]; r != nil {
			r.Rename(file.Name, newRelPath)
		}
	}
	file.Name = newRelPath
	return true, nil
}

// Save rewrites the whole cabinet to a temporary file beside the
// original and atomically replaces it (spec.md §4.7). Only
// types.CompressionNone is accepted; every other value fails with
// ErrUnsupportedCompression before any byte is written.
func (cf *CabinetFile) Save(ctx context.Context, comp types.CompressionType, progress types.ProgressFunc) error {
	cf.mu.Lock()
	defer cf.mu.Unlock()

	if cf.closed {
		return fmt.Errorf("cabinet %s is closed", cf.path)
	}
	if comp != types.CompressionNone {
		return fmt.Errorf("%w: saving as %s", types.ErrUnsupportedCompression, comp)
	}
	codec, err := compression.Lookup(comp)
	if err != nil {
		return err
	}

	plan, err := cf.buildSavePlan()
	if err != nil {
		return err
	}

	dir := cf.tempDir
	if dir == "" {
		dir = filepath.Dir(cf.path)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(cf.path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpPath)
	}

	if err := writeCabinetPlan(ctx, tmp, plan, codec, cf.header.DataReservedSize, cf.readers, progress); err != nil {
		cleanup()
		return err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, cf.path); err != nil {
		os.Remove(tmpPath)
		return err
	}

	// Reopen from the freshly written file so subsequent operations see
	// the post-Save state (new folder boundaries, pending files now
	// resolved into real data-block ranges).
	if cf.file != nil {
		cf.file.Close()
	}
	reopened, err := os.Open(cf.path)
	if err != nil {
		return err
	}
	fresh, err := load(reopened, cf.path)
	if err != nil {
		reopened.Close()
		return err
	}
	cf.file = fresh.file
	cf.header = fresh.header
	cf.folders = fresh.folders
	cf.files = fresh.files
	cf.readers = fresh.readers
	return nil
}

// savePlan is the folder/file layout Save commits to disk, computed
// before any byte is written so the header's counts and offsets are
// known up front.
type savePlan struct {
	header      *types.CabinetHeader
	folders     []*types.FolderHeader
	files       []*types.FileHeader // FolderIndex already remapped to folderFiles' slice index
	folderFiles [][]*types.FileHeader

	// originalFolderIndex[i] is the pre-Save folder index that
	// folderFiles[i] (and folders[i]) were read from before any new
	// folder was appended or any empty folder dropped, so Save can find
	// the right FolderReader to pull non-pending files' bytes from.
	originalFolderIndex []int
}

// buildSavePlan drops folders that lost every file to DeleteFile/MoveFile,
// reassigns files to folders via the folder-selection policy for anything
// pending (added since Open), and remaps every surviving file's
// FolderIndex to its final, dense folder index.
func (cf *CabinetFile) buildSavePlan() (*savePlan, error) {
	summaries := make([]managers.FolderSummary, len(cf.folders))
	folderFiles := make([][]*types.FileHeader, len(cf.folders))
	for i := range cf.folders {
		summaries[i] = managers.FolderSummary{Index: i}
	}

	// Seed each existing folder's summary with its surviving non-pending
	// files before any pending file is assigned, so SelectFolderForFile
	// sees a folder's real fill instead of treating it as empty.
	for _, file := range cf.files {
		if file.IsPending() || types.IsSpanningFolderIndex(file.FolderIndex) {
			continue
		}
		if idx := int(file.FolderIndex); idx < len(summaries) {
			summaries[idx].UncompressedSize += file.UncompressedSize
			summaries[idx].FileCount++
		}
	}

	assigned := make([]*types.FileHeader, 0, len(cf.files))
	for _, file := range cf.files {
		if file.IsPending() {
			idx, ok := managers.SelectFolderForFile(summaries, file.UncompressedSize)
			if !ok {
				idx = len(cf.folders)
				newFolder := &types.FolderHeader{CompressionType: types.CompressionNone}
				if cf.header.FolderReservedSize > 0 {
					newFolder.Reserved = make([]byte, cf.header.FolderReservedSize)
				}
				cf.folders = append(cf.folders, newFolder)
				summaries = append(summaries, managers.FolderSummary{Index: idx})
				folderFiles = append(folderFiles, nil)
			}
			file.FolderIndex = uint16(idx)
			summaries[idx].UncompressedSize += file.UncompressedSize
			summaries[idx].FileCount++
			folderFiles[idx] = append(folderFiles[idx], file)
			assigned = append(assigned, file)
			continue
		}
		if types.IsSpanningFolderIndex(file.FolderIndex) {
			return nil, types.ErrSpanningNotSupported
		}
		idx := int(file.FolderIndex)
		if idx >= len(folderFiles) {
			return nil, fmt.Errorf("%w: file %q references folder %d", types.ErrCorruptedData, file.Name, idx)
		}
		if idx >= len(cf.readers) || cf.readers[idx] == nil {
			return nil, fmt.Errorf("%w: folder %d holding %q", types.ErrUnsupportedCompression, idx, file.Name)
		}
		folderFiles[idx] = append(folderFiles[idx], file)
		assigned = append(assigned, file)
	}

	// Drop folders that ended up empty (every file deleted or moved out)
	// and remap the remaining ones to dense indices in order.
	finalFolders := make([]*types.FolderHeader, 0, len(cf.folders))
	finalFolderFiles := make([][]*types.FileHeader, 0, len(cf.folders))
	originalFolderIndex := make([]int, 0, len(cf.folders))
	remap := make([]int, len(cf.folders))
	for i, files := range folderFiles {
		if len(files) == 0 {
			remap[i] = -1
			continue
		}
		remap[i] = len(finalFolders)
		finalFolders = append(finalFolders, cf.folders[i])
		finalFolderFiles = append(finalFolderFiles, files)
		originalFolderIndex = append(originalFolderIndex, i)
	}
	if len(finalFolders) > types.MaxFolders {
		return nil, fmt.Errorf("%w: %d folders", types.ErrTooManyFiles, len(finalFolders))
	}
	if len(assigned) > types.MaxFiles {
		return nil, types.ErrTooManyFiles
	}

	for _, files := range finalFolderFiles {
		var offset uint32
		for _, f := range files {
			f.FolderIndex = uint16(remap[f.FolderIndex])
			f.UncompressedOffset = offset
			offset += f.UncompressedSize
		}
	}

	header := &types.CabinetHeader{
		VersionMajor:        types.VersionMajor,
		VersionMinor:        types.VersionMinor,
		FolderCount:         uint16(len(finalFolders)),
		FileCount:           uint16(len(assigned)),
		SetID:               cf.header.SetID,
		CabinetIndex:        cf.header.CabinetIndex,
		CabinetReservedSize: cf.header.CabinetReservedSize,
		FolderReservedSize:  cf.header.FolderReservedSize,
		DataReservedSize:    cf.header.DataReservedSize,
		CabinetReserved:     cf.header.CabinetReserved,
	}
	if header.CabinetReservedSize > 0 || header.FolderReservedSize > 0 || header.DataReservedSize > 0 {
		header.Flags |= types.FlagReservePresent
	}

	return &savePlan{
		header:              header,
		folders:             finalFolders,
		files:               assigned,
		folderFiles:         finalFolderFiles,
		originalFolderIndex: originalFolderIndex,
	}, nil
}

// writeCabinetPlan streams plan to w in on-disk order: header, folder
// records (with placeholder data-block fields), file records, then each
// folder's data blocks in turn — patching that folder's placeholder once
// its block count and starting offset are known.
func writeCabinetPlan(ctx context.Context, w *os.File, plan *savePlan, codec compression.Codec, dataReservedSize uint8, oldReaders []*FolderReader, progress types.ProgressFunc) error {
	folderHeaderSize := cabfile.FolderHeaderSize(plan.header.FolderReservedSize)
	firstFileEntryOffset := int64(36)
	if plan.header.HasReserve() {
		firstFileEntryOffset += 4 + int64(plan.header.CabinetReservedSize)
	}
	firstFileEntryOffset += folderHeaderSize * int64(len(plan.folders))
	plan.header.FirstFileEntryOffset = uint32(firstFileEntryOffset)

	if err := cabfile.WriteCabinetHeader(w, plan.header); err != nil {
		return err
	}

	folderHeaderOffsets := make([]int64, len(plan.folders))
	pos, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	for i, fh := range plan.folders {
		folderHeaderOffsets[i] = pos
		if err := cabfile.WriteFolderHeader(w, fh); err != nil {
			return err
		}
		pos += folderHeaderSize
	}

	for _, file := range plan.files {
		if err := cabfile.WriteFileHeader(w, file); err != nil {
			return err
		}
	}

	pos, err = w.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}

	for i, files := range plan.folderFiles {
		select {
		case <-ctx.Done():
			return types.ErrCancelled
		default:
		}

		dataStart := pos
		var source *FolderReader
		if origIdx := plan.originalFolderIndex[i]; origIdx < len(oldReaders) {
			source = oldReaders[origIdx]
		}
		blockCount, bytesWritten, err := WriteFolderDataBlocks(ctx, w, codec, dataReservedSize, files, source, progress)
		if err != nil {
			return err
		}
		pos += bytesWritten

		plan.folders[i].FirstDataBlockOffset = uint32(dataStart)
		plan.folders[i].DataBlockCount = blockCount
		plan.folders[i].CompressionType = types.CompressionNone

		if _, err := w.Seek(folderHeaderOffsets[i], io.SeekStart); err != nil {
			return err
		}
		if err := cabfile.WriteFolderHeader(w, plan.folders[i]); err != nil {
			return err
		}
		if _, err := w.Seek(pos, io.SeekStart); err != nil {
			return err
		}
	}

	if pos > types.MaxCabinetSize {
		return types.ErrCabinetTooLarge
	}
	plan.header.CabinetSize = uint32(pos)

	if _, err := w.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if err := cabfile.WriteCabinetHeader(w, plan.header); err != nil {
		return err
	}
	if _, err := w.Seek(pos, io.SeekStart); err != nil {
		return err
	}
	return nil
}

// Close releases the cabinet's read handle.
func (cf *CabinetFile) Close() error {
	cf.mu.Lock()
	defer cf.mu.Unlock()
	if cf.closed {
		return nil
	}
	cf.closed = true
	if cf.file == nil {
		return nil
	}
	return cf.file.Close()
}
