package manager

import "github.com/google/uuid"

// BatchEvent is one progress notification surfaced to a Manager.Run
// caller: a per-chunk types.ProgressEvent tagged with which cabinet and
// which batch it belongs to, so a caller driving several cabinets
// concurrently (or several Run calls) can tell them apart.
type BatchEvent struct {
	BatchID      uuid.UUID
	CabinetPath  string
	RelativePath string
	BytesDone    int64
}

// ProgressFunc receives batch-level progress events. A nil ProgressFunc
// is valid and simply means nobody is listening.
type ProgressFunc func(BatchEvent)
