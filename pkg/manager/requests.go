// Package manager is the façade layer (C8): it groups a batch of
// operations by cabinet path, drives one internal/services.CabinetFile
// per path, and forwards per-chunk progress as events tagged with a
// per-batch id (no percentages or totals are computed), the same shape the teacher lineage's pkg/app request/response layer
// gives its command handlers.
package manager

import "github.com/cabinetfs/go-cab/internal/types"

// OperationKind selects which CabinetFile method a Request drives.
type OperationKind int

const (
	OpList OperationKind = iota
	OpExtract
	OpAdd
	OpRemove
	OpMove
	OpCreate
)

// Request is one unit of work against a cabinet. Which fields matter
// depends on Kind:
//   - OpExtract: RelPath, DestPath
//   - OpAdd, OpCreate: SourcePath, RelPath
//   - OpRemove: RelPath
//   - OpMove: RelPath (old name), NewRelPath
//   - OpList: none beyond CabinetPath
type Request struct {
	CabinetPath string
	Kind        OperationKind
	RelPath     string
	NewRelPath  string
	SourcePath  string
	DestPath    string

	// TempDir overrides where Save stages its temporary file for this
	// cabinet, if this group ends up saving. The first non-empty value
	// seen among a cabinet's requests wins.
	TempDir string

	// Compression is the method Save writes with, if this group ends up
	// saving. The first request in the group carries the caller's
	// resolved value; CompressionNone (the zero value) is also this
	// package's only supported method.
	Compression types.CompressionType
}

// Result is one Request's outcome. For OpExtract, OpRemove, and OpMove,
// Found reports whether the underlying CabinetFile method found a
// matching record; for OpAdd and OpCreate it is true when the file was
// staged, and OpList results always carry true.
type Result struct {
	Request Request
	Entry   *types.FileHeader // set for OpList results, one per file
	Found   bool
	Err     error
}
