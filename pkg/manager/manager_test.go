package manager

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cabinetfs/go-cab/internal/types"
)

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestManagerRunCreateThenListThenExtract(t *testing.T) {
	dir := t.TempDir()
	cabPath := filepath.Join(dir, "batch.cab")
	src := writeFixture(t, dir, "note.txt", "a note")

	mgr := New()
	var events []BatchEvent
	results := mgr.Run(context.Background(), []Request{
		{CabinetPath: cabPath, Kind: OpCreate, SourcePath: src, RelPath: "note.txt"},
	}, func(e BatchEvent) { events = append(events, e) })

	for _, r := range results {
		require.NoError(t, r.Err)
	}
	require.NotEmpty(t, events)
	assert.Equal(t, events[0].BatchID, events[len(events)-1].BatchID, "every event in one Run shares a batch id")

	listResults := mgr.Run(context.Background(), []Request{{CabinetPath: cabPath, Kind: OpList}}, nil)
	require.Len(t, listResults, 1)
	require.NoError(t, listResults[0].Err)
	assert.Equal(t, "note.txt", listResults[0].Entry.Name)

	destDir := t.TempDir()
	extractResults := mgr.Run(context.Background(), []Request{
		{CabinetPath: cabPath, Kind: OpExtract, RelPath: "note.txt", DestPath: filepath.Join(destDir, "note.txt")},
	}, nil)
	require.Len(t, extractResults, 1)
	require.NoError(t, extractResults[0].Err)
	assert.True(t, extractResults[0].Found)

	got, err := os.ReadFile(filepath.Join(destDir, "note.txt"))
	require.NoError(t, err)
	assert.Equal(t, "a note", string(got))
}

func TestManagerRunGroupsMultipleRequestsPerCabinetIntoOneSave(t *testing.T) {
	dir := t.TempDir()
	cabPath := filepath.Join(dir, "multi.cab")
	src1 := writeFixture(t, dir, "one.txt", "one")
	src2 := writeFixture(t, dir, "two.txt", "two")

	mgr := New()
	results := mgr.Run(context.Background(), []Request{
		{CabinetPath: cabPath, Kind: OpCreate, SourcePath: src1, RelPath: "one.txt"},
		{CabinetPath: cabPath, Kind: OpAdd, SourcePath: src2, RelPath: "two.txt"},
	}, nil)

	for _, r := range results {
		require.NoError(t, r.Err)
	}

	listResults := mgr.Run(context.Background(), []Request{{CabinetPath: cabPath, Kind: OpList}}, nil)
	assert.Len(t, listResults, 2)
}

func TestManagerRunRemoveNotFoundReportsFoundFalse(t *testing.T) {
	dir := t.TempDir()
	cabPath := filepath.Join(dir, "empty.cab")
	src := writeFixture(t, dir, "a.txt", "a")

	mgr := New()
	results := mgr.Run(context.Background(), []Request{
		{CabinetPath: cabPath, Kind: OpCreate, SourcePath: src, RelPath: "a.txt"},
	}, nil)
	for _, r := range results {
		require.NoError(t, r.Err)
	}

	results = mgr.Run(context.Background(), []Request{
		{CabinetPath: cabPath, Kind: OpRemove, RelPath: "does-not-exist.txt"},
	}, nil)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.False(t, results[0].Found)
}

func TestManagerRunPropagatesCancellationUnwrapped(t *testing.T) {
	dir := t.TempDir()
	cabPath := filepath.Join(dir, "archive.cab")
	src := writeFixture(t, dir, "note.txt", "a note")

	mgr := New()
	results := mgr.Run(context.Background(), []Request{
		{CabinetPath: cabPath, Kind: OpCreate, SourcePath: src, RelPath: "note.txt"},
	}, nil)
	for _, r := range results {
		require.NoError(t, r.Err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	destDir := t.TempDir()
	results = mgr.Run(ctx, []Request{
		{CabinetPath: cabPath, Kind: OpExtract, RelPath: "note.txt", DestPath: filepath.Join(destDir, "note.txt")},
	}, nil)
	require.Len(t, results, 1)
	require.Error(t, results[0].Err)
	assert.ErrorIs(t, results[0].Err, types.ErrCancelled)
	var failure *CabFailure
	assert.False(t, errors.As(results[0].Err, &failure), "a cancelled operation must not be wrapped in CabFailure")
}

func TestManagerRunFailsAllRequestsWhenCabinetCannotOpen(t *testing.T) {
	mgr := New()
	results := mgr.Run(context.Background(), []Request{
		{CabinetPath: "/no/such/cabinet.cab", Kind: OpList},
	}, nil)
	require.Len(t, results, 1)
	require.Error(t, results[0].Err)
	var failure *CabFailure
	assert.ErrorAs(t, results[0].Err, &failure)
}
