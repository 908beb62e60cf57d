package gen

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// HookPhase identifies the point in a run after which a hook fires.
type HookPhase string

// Hook phases, in firing order.
const (
	// HookPostStructs fires after row structs and insertables are written.
	HookPostStructs HookPhase = "post_structs"
	// HookPostModels fires after model implementations are written.
	HookPostModels HookPhase = "post_models"
	// HookPostAny fires last, after manifests and cleanup.
	HookPostAny HookPhase = "post_any"
)

func (p HookPhase) valid() bool {
	switch p {
	case HookPostStructs, HookPostModels, HookPostAny:
		return true
	}
	return false
}

// HookSpec binds a shell command to a phase. Commands registered for the
// same phase run sequentially in registration order.
type HookSpec struct {
	Phase   HookPhase
	Command string
}

// HookFailure records one failed hook command. A failing command aborts the
// remaining commands of its phase; generation itself continues.
type HookFailure struct {
	Phase    HookPhase
	Command  string
	ExitCode int // -1 when the command could not be started
	Output   string
	Err      error
}

// hookRunner executes phase hooks through the shell, from a fixed working
// directory.
type hookRunner struct {
	dir string
	log zerolog.Logger
}

// runPhase runs every command bound to the phase, stopping at the first
// failure. Failures are reported, never returned as errors.
func (r *hookRunner) runPhase(ctx context.Context, phase HookPhase, hooks []HookSpec) []HookFailure {
	for _, h := range hooks {
		if h.Phase != phase {
			continue
		}
		r.log.Debug().Str("phase", string(phase)).Str("command", h.Command).Msg("running hook")
		cmd := exec.CommandContext(ctx, "sh", "-c", h.Command)
		cmd.Dir = r.dir
		var out bytes.Buffer
		cmd.Stdout = &out
		cmd.Stderr = &out
		if err := cmd.Run(); err != nil {
			exit := -1
			var ee *exec.ExitError
			if errors.As(err, &ee) {
				exit = ee.ExitCode()
			}
			r.log.Warn().
				Str("phase", string(phase)).
				Str("command", h.Command).
				Int("exit", exit).
				Msg("hook failed; skipping the rest of the phase")
			return []HookFailure{{
				Phase:    phase,
				Command:  h.Command,
				ExitCode: exit,
				Output:   strings.TrimSpace(out.String()),
				Err:      err,
			}}
		}
	}
	return nil
}
