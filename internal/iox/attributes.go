// Package iox is the narrow slice of host filesystem interop this library
// needs: translating cabinet attribute bits to and from host file
// metadata when a file is added to or extracted from a cabinet.
package iox

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cabinetfs/go-cab/internal/types"
)

// HostAttributes derives CFFILE attribute bits and a modification time
// from a host file. Archive is always set, matching spec.md §6
// ("archive 0x20 is always set on newly added files"). Hidden is derived
// from a leading dot in the base name, the closest Unix equivalent to a
// host "hidden" flag; System has no Unix equivalent and is left unset.
func HostAttributes(path string, info os.FileInfo) (attrs uint16, modTime time.Time) {
	if info.Mode().Perm()&0200 == 0 {
		attrs |= types.AttrReadOnly
	}
	if info.Mode().Perm()&0100 != 0 {
		attrs |= types.AttrExecute
	}
	if strings.HasPrefix(filepath.Base(path), ".") {
		attrs |= types.AttrHidden
	}
	attrs |= types.AttrArchive
	return attrs, info.ModTime()
}

// ApplyAttributes sets destPath's permissions and modification time from
// a CFFILE record's attributes and DOS timestamp. Hidden has no portable
// effect outside a rename (which would change the extracted name) and is
// intentionally not applied.
func ApplyAttributes(destPath string, attrs uint16, modTime time.Time) error {
	mode := os.FileMode(0644)
	if attrs&types.AttrReadOnly != 0 {
		mode = 0444
	}
	if attrs&types.AttrExecute != 0 {
		mode |= 0111
	}
	if err := os.Chmod(destPath, mode); err != nil {
		return err
	}
	return os.Chtimes(destPath, modTime, modTime)
}
