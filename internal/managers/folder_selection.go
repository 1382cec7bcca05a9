// Package managers holds the small stateless policies the cabinet and
// folder services delegate to, grounded on the teacher lineage's
// managers packages (e.g. container_volume_manager.go): a plain
// constructor-free function operating over summaries the caller already
// has, so this package never needs to know about open file handles.
package managers

import "github.com/cabinetfs/go-cab/internal/types"

// FolderSummary is the minimal state the folder-selection policy needs
// about one folder: its current total uncompressed size and file count.
type FolderSummary struct {
	Index            int
	UncompressedSize uint32
	FileCount        int
}

// SelectFolderForFile implements the folder-selection policy from
// spec.md §4.6: walk folders in index order and pick the first whose
// post-addition uncompressed size and file count both stay within the
// documented limits. If none fits, the caller should append a new empty
// folder; ok is false in that case.
func SelectFolderForFile(folders []FolderSummary, addSize uint32) (index int, ok bool) {
	for _, f := range folders {
		if uint64(f.UncompressedSize)+uint64(addSize) > types.MaxFolderUncompressedSize {
			continue
		}
		if f.FileCount+1 > types.MaxFiles {
			continue
		}
		return f.Index, true
	}
	return 0, false
}
