package types

import "errors"

// Error kinds surfaced by the cabinet codec and its callers. Callers should
// compare against these with errors.Is; wrapping with fmt.Errorf("...: %w")
// preserves the comparison.
var (
	ErrUnsupportedFormat       = errors.New("cabfile: unsupported format")
	ErrMultiCabinetUnsupported = errors.New("cabfile: multi-cabinet sets are not supported")
	ErrUnsupportedCompression  = errors.New("cabfile: unsupported compression type")
	ErrTruncatedStream         = errors.New("cabfile: truncated stream")
	ErrCorruptedData           = errors.New("cabfile: corrupted data block")
	ErrNameTooLong             = errors.New("cabfile: name too long")
	ErrCabinetTooLarge         = errors.New("cabfile: cabinet exceeds maximum size")
	ErrFileTooLarge            = errors.New("cabfile: file exceeds maximum uncompressed size")
	ErrTooManyFiles            = errors.New("cabfile: too many files")
	ErrTooManyDataBlocks       = errors.New("cabfile: too many data blocks")
	ErrMissingSource           = errors.New("cabfile: external source file is missing")
	ErrCancelled               = errors.New("cabfile: operation cancelled")
	ErrTruncatedData           = errors.New("cabfile: truncated uncompressed data")
	ErrSpanningNotSupported    = errors.New("cabfile: spanning data blocks are not supported")
)
