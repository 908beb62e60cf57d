package gen

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHookPhaseValid(t *testing.T) {
	assert.True(t, HookPostStructs.valid())
	assert.True(t, HookPostModels.valid())
	assert.True(t, HookPostAny.valid())
	assert.False(t, HookPhase("pre_anything").valid())
}

func TestRunPhaseOrderAndWorkingDir(t *testing.T) {
	dir := t.TempDir()
	r := &hookRunner{dir: dir, log: zerolog.Nop()}

	failures := r.runPhase(context.Background(), HookPostStructs, []HookSpec{
		{Phase: HookPostStructs, Command: "echo one >> order.txt"},
		{Phase: HookPostModels, Command: "echo skipped >> order.txt"},
		{Phase: HookPostStructs, Command: "echo two >> order.txt"},
	})
	assert.Empty(t, failures)

	got, err := os.ReadFile(filepath.Join(dir, "order.txt"))
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", string(got))
}

func TestRunPhaseFailureAbortsPhase(t *testing.T) {
	dir := t.TempDir()
	r := &hookRunner{dir: dir, log: zerolog.Nop()}

	failures := r.runPhase(context.Background(), HookPostAny, []HookSpec{
		{Phase: HookPostAny, Command: "echo ran >> ran.txt"},
		{Phase: HookPostAny, Command: "echo boom >&2; exit 3"},
		{Phase: HookPostAny, Command: "echo never >> ran.txt"},
	})
	require.Len(t, failures, 1)
	f := failures[0]
	assert.Equal(t, HookPostAny, f.Phase)
	assert.Equal(t, 3, f.ExitCode)
	assert.Equal(t, "boom", f.Output)
	assert.Error(t, f.Err)

	got, err := os.ReadFile(filepath.Join(dir, "ran.txt"))
	require.NoError(t, err)
	assert.Equal(t, "ran\n", string(got))
}

func TestRunPhaseNoMatchingHooks(t *testing.T) {
	r := &hookRunner{dir: t.TempDir(), log: zerolog.Nop()}
	assert.Empty(t, r.runPhase(context.Background(), HookPostModels, []HookSpec{
		{Phase: HookPostStructs, Command: "exit 1"},
	}))
}
