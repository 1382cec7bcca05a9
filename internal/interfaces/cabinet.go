// Package interfaces declares the contracts that the façade layer
// (pkg/manager) depends on instead of the concrete types in
// internal/services, the same separation the rest of this codebase's
// lineage uses between its services and their interfaces package.
package interfaces

import (
	"context"

	"github.com/cabinetfs/go-cab/internal/types"
)

// Cabinet is the operation surface of an opened cabinet file (C7 in
// spec.md's component table): mutation and extraction are local to
// memory until Save streams a full rewrite to disk.
type Cabinet interface {
	// AddExternalFile stages sourcePath to be written under relPath on
	// the next Save, replacing any existing entry at that path.
	AddExternalFile(sourcePath, relPath string) error

	// ExtractToFile writes relPath's uncompressed bytes to destPath.
	// Returns false, nil if relPath does not exist.
	ExtractToFile(ctx context.Context, relPath, destPath string, progress types.ProgressFunc) (bool, error)

	// DeleteFile removes every record matching relPath (case-insensitive).
	// Returns true iff at least one was removed.
	DeleteFile(relPath string) (bool, error)

	// MoveFile renames oldRelPath to newRelPath in place. Returns true
	// iff a matching record was found.
	MoveFile(oldRelPath, newRelPath string) (bool, error)

	// Save rewrites the whole cabinet to a temporary file beside the
	// original and atomically replaces it.
	Save(ctx context.Context, compression types.CompressionType, progress types.ProgressFunc) error

	// SetTempDir overrides where Save stages its temporary file; empty
	// means beside the cabinet's own path.
	SetTempDir(dir string)

	// Close releases the read handle and any in-flight temp file.
	Close() error

	// Path returns the cabinet's path on the host filesystem.
	Path() string

	// Files returns every file record currently staged in memory, in no
	// particular order.
	Files() []*types.FileHeader
}
