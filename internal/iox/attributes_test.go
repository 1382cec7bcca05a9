package iox

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cabinetfs/go-cab/internal/types"
)

func TestHostAttributesMarksArchiveAndExecute(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0755))

	info, err := os.Stat(path)
	require.NoError(t, err)

	attrs, _ := HostAttributes(path, info)
	assert.NotZero(t, attrs&types.AttrArchive)
	assert.NotZero(t, attrs&types.AttrExecute)
	assert.Zero(t, attrs&types.AttrReadOnly)
}

func TestHostAttributesDetectsHiddenAndReadOnly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".secret")
	require.NoError(t, os.WriteFile(path, []byte("shh"), 0444))

	info, err := os.Stat(path)
	require.NoError(t, err)

	attrs, _ := HostAttributes(path, info)
	assert.NotZero(t, attrs&types.AttrHidden)
	assert.NotZero(t, attrs&types.AttrReadOnly)
}

func TestApplyAttributesSetsModeAndTime(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	want := time.Date(2015, time.July, 4, 12, 0, 0, 0, time.Local)
	require.NoError(t, ApplyAttributes(path, types.AttrReadOnly, want))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0444), info.Mode().Perm())
	assert.True(t, info.ModTime().Equal(want))
}
