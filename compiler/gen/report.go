package gen

// Report summarizes one generation run: what was planned, what was written
// or removed, and which hooks failed. A run that returns a nil error wrote
// everything it planned; hook failures are advisory and left to the
// caller's policy.
type Report struct {
	// TablesProcessed counts tables that produced artifacts.
	TablesProcessed int
	// TablesSkipped counts tables excluded by the ignore list or by a
	// single-table scope.
	TablesSkipped int
	// FilesPlanned lists every output path the run intended to write, in
	// write order. When a write step fails, the unwritten remainder is
	// FilesPlanned minus FilesWritten.
	FilesPlanned []string
	// FilesWritten lists the output paths written, in write order.
	FilesWritten []string
	// FilesDeleted lists stale artifact paths removed.
	FilesDeleted []string
	// HookFailures lists hook commands that failed, at most one per phase.
	HookFailures []HookFailure
}

// OK reports whether the run completed without hook failures.
func (r *Report) OK() bool {
	return len(r.HookFailures) == 0
}
