package types

// MaxFileUncompressedSize is the hard cap (spec §3) on a single file's
// uncompressed size.
const MaxFileUncompressedSize = 0x7FFF8000

// MaxFileNameBytes is the cap on a file name's byte length, not counting
// the trailing NUL.
const MaxFileNameBytes = 255

// Attribute bits carried by a CFFILE record.
const (
	AttrReadOnly  uint16 = 0x01
	AttrHidden    uint16 = 0x02
	AttrSystem    uint16 = 0x04
	AttrArchive   uint16 = 0x20
	AttrExecute   uint16 = 0x40
	AttrNameUTF8  uint16 = 0x80
)

// FolderIndex sentinels meaning a file continues across a cabinet-set
// boundary. This codec parses and preserves them but never follows them
// (spec.md §9): a file carrying one of these can't be read for extraction
// or rewrite.
const (
	FolderIndexContinuedFromPrev = 0xFFFD
	FolderIndexContinuedToNext   = 0xFFFE
	FolderIndexContinuedBoth     = 0xFFFF
)

// IsSpanningFolderIndex reports whether idx is one of the cross-cabinet
// continuation sentinels rather than a real folder index.
func IsSpanningFolderIndex(idx uint16) bool {
	return idx == FolderIndexContinuedFromPrev || idx == FolderIndexContinuedToNext || idx == FolderIndexContinuedBoth
}

// FileHeader is the on-disk CFFILE record plus the bookkeeping fields this
// library needs to mutate a cabinet in memory before a Save.
type FileHeader struct {
	UncompressedSize   uint32
	UncompressedOffset uint32
	FolderIndex        uint16
	DosDate            uint16
	DosTime            uint16
	Attributes         uint16
	Name               string

	// AbsolutePath is set when this record was created by AddExternalFile
	// and has not yet been written into a cabinet by Save: its bytes come
	// from this host path rather than from any existing data block.
	AbsolutePath string
}

// IsPending reports whether the file's bytes must be sourced from
// AbsolutePath rather than from the owning cabinet's existing data blocks.
func (f *FileHeader) IsPending() bool {
	return f.AbsolutePath != ""
}
