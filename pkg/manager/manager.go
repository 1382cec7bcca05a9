package manager

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/cabinetfs/go-cab/internal/interfaces"
	"github.com/cabinetfs/go-cab/internal/services"
	"github.com/cabinetfs/go-cab/internal/types"
)

// Manager drives a batch of Requests against their cabinets, opening
// each distinct CabinetPath once and reusing it across every Request
// that names it. Manager carries no state between Run calls.
type Manager struct{}

// New returns a ready-to-use Manager.
func New() *Manager {
	return &Manager{}
}

// Run executes requests in order, grouped by CabinetPath so each
// cabinet is opened (or created, for OpCreate) once, mutated by its
// requests in sequence, and saved once at the end if anything in the
// group mutated it. progress may be nil.
//
// OpList requests do not produce one Result each — they expand into one
// Result per file currently in the cabinet, each carrying that file's
// Entry.
func (m *Manager) Run(ctx context.Context, requests []Request, progress ProgressFunc) []Result {
	batchID := uuid.New()

	order := make([]string, 0, len(requests))
	groups := make(map[string][]Request)
	for _, req := range requests {
		if _, ok := groups[req.CabinetPath]; !ok {
			order = append(order, req.CabinetPath)
		}
		groups[req.CabinetPath] = append(groups[req.CabinetPath], req)
	}

	results := make([]Result, 0, len(requests))
	for _, path := range order {
		results = append(results, m.runCabinet(ctx, batchID, path, groups[path], progress)...)
	}
	return results
}

func (m *Manager) runCabinet(ctx context.Context, batchID uuid.UUID, path string, reqs []Request, progress ProgressFunc) []Result {
	report := types.ProgressFunc(func(e types.ProgressEvent) {
		if progress != nil {
			progress(BatchEvent{BatchID: batchID, CabinetPath: path, RelativePath: e.RelativePath, BytesDone: e.BytesDone})
		}
	})

	var cab interfaces.Cabinet
	var err error
	if len(reqs) > 0 && reqs[0].Kind == OpCreate {
		cab = services.New(path)
	} else {
		cab, err = services.Open(path)
	}
	if err != nil {
		return failAll(reqs, &CabFailure{CabinetPath: path, Err: err})
	}
	defer cab.Close()

	for _, req := range reqs {
		if req.TempDir != "" {
			cab.SetTempDir(req.TempDir)
			break
		}
	}
	compression := reqs[0].Compression

	results := make([]Result, 0, len(reqs))
	dirty := false
	for _, req := range reqs {
		switch req.Kind {
		case OpList:
			results = append(results, listEntries(cab, req)...)

		case OpExtract:
			found, extractErr := cab.ExtractToFile(ctx, req.RelPath, req.DestPath, report)
			results = append(results, Result{Request: req, Found: found, Err: wrapErr(path, extractErr)})

		case OpAdd, OpCreate:
			addErr := cab.AddExternalFile(req.SourcePath, req.RelPath)
			if addErr == nil {
				dirty = true
			}
			results = append(results, Result{Request: req, Found: addErr == nil, Err: wrapErr(path, addErr)})

		case OpRemove:
			found, delErr := cab.DeleteFile(req.RelPath)
			dirty = dirty || found
			results = append(results, Result{Request: req, Found: found, Err: wrapErr(path, delErr)})

		case OpMove:
			found, moveErr := cab.MoveFile(req.RelPath, req.NewRelPath)
			dirty = dirty || found
			results = append(results, Result{Request: req, Found: found, Err: wrapErr(path, moveErr)})

		default:
			results = append(results, Result{Request: req, Err: fmt.Errorf("manager: unknown operation kind %d", req.Kind)})
		}
	}

	if dirty {
		if saveErr := cab.Save(ctx, compression, report); saveErr != nil {
			results = append(results, Result{Request: Request{CabinetPath: path}, Err: wrapErr(path, saveErr)})
		}
	}

	return results
}

func wrapErr(path string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, types.ErrCancelled) {
		return err
	}
	return &CabFailure{CabinetPath: path, Err: err}
}

func failAll(reqs []Request, err error) []Result {
	results := make([]Result, len(reqs))
	for i, req := range reqs {
		results[i] = Result{Request: req, Err: err}
	}
	return results
}

func listEntries(cab interfaces.Cabinet, req Request) []Result {
	files := cab.Files()
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	results := make([]Result, len(files))
	for i, f := range files {
		results[i] = Result{Request: req, Entry: f, Found: true}
	}
	return results
}
