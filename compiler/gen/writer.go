package gen

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/tools/imports"
)

// artifactKind classifies one planned output file.
type artifactKind int

const (
	kindRowStruct artifactKind = iota
	kindInsertable
	kindModel
	kindManifest
)

// artifact is one planned output file with its rendered content. The full
// plan is built and checked before the first byte hits disk.
type artifact struct {
	kind    artifactKind
	table   string // empty for manifests
	path    string
	content []byte
}

// writer owns the filesystem side of a run: the conflict check, ordered
// writes, stale-file cleanup and manifest maintenance. Writes happen in plan
// order; on failure the report keeps what was written so far.
type writer struct {
	generatedRoot string
	customRoot    string
}

// checkConflicts validates the whole plan against the tree separation rule:
// every path must resolve inside the generated root, and the custom root
// must not be nested inside it. The custom tree's own manifest is the one
// sanctioned write outside the generated root.
func (w *writer) checkConflicts(arts []*artifact) error {
	genRoot, err := filepath.Abs(w.generatedRoot)
	if err != nil {
		return err
	}
	var customManifest string
	if w.customRoot != "" {
		customRoot, err := filepath.Abs(w.customRoot)
		if err != nil {
			return err
		}
		if within(genRoot, customRoot) {
			return NewWriteConflictError(w.customRoot, "custom tree is nested inside the generated tree")
		}
		customManifest = filepath.Join(customRoot, "manifest.go")
		for _, a := range arts {
			p, err := filepath.Abs(a.path)
			if err != nil {
				return err
			}
			if a.kind == kindManifest && p == customManifest {
				continue
			}
			if within(customRoot, p) {
				return NewWriteConflictError(a.path, "path is inside the custom tree")
			}
		}
	}
	for _, a := range arts {
		p, err := filepath.Abs(a.path)
		if err != nil {
			return err
		}
		if a.kind == kindManifest && p == customManifest {
			continue
		}
		if !within(genRoot, p) {
			return NewWriteConflictError(a.path, "path escapes the generated tree")
		}
	}
	return nil
}

// within reports whether path is root or inside root. Both must be absolute.
func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, ".."+string(filepath.Separator)) && rel != "..")
}

// write persists artifacts in plan order, creating directories as needed.
// It returns the paths written; on error the slice covers the writes that
// succeeded before it.
func (w *writer) write(arts []*artifact) ([]string, error) {
	var written []string
	for _, a := range arts {
		if err := os.MkdirAll(filepath.Dir(a.path), 0o755); err != nil {
			return written, fmt.Errorf("gen: create directory for %s: %w", a.path, err)
		}
		if err := os.WriteFile(a.path, a.content, 0o644); err != nil {
			return written, fmt.Errorf("gen: write %s: %w", a.path, err)
		}
		written = append(written, a.path)
	}
	return written, nil
}

// deleteStale removes generated artifact files whose table no longer exists
// in the catalog. Manifests are never stale. The scan covers the generated
// root and its insertable and models subdirectories only.
func (w *writer) deleteStale(tables map[string]bool) ([]string, error) {
	var deleted []string
	for _, dir := range []string{
		w.generatedRoot,
		filepath.Join(w.generatedRoot, "insertable"),
		filepath.Join(w.generatedRoot, "models"),
	} {
		entries, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return deleted, fmt.Errorf("gen: scan %s: %w", dir, err)
		}
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || !strings.HasSuffix(name, ".go") || name == "manifest.go" {
				continue
			}
			stem := strings.TrimSuffix(name, ".go")
			if tables[stem] {
				continue
			}
			p := filepath.Join(dir, name)
			if err := os.Remove(p); err != nil {
				return deleted, fmt.Errorf("gen: remove stale %s: %w", p, err)
			}
			deleted = append(deleted, p)
		}
	}
	return deleted, nil
}

var manifestEntryRe = regexp.MustCompile(`^\s*"([^"]+)",\s*$`)

// parseManifestEntries extracts the string entries of an existing manifest
// file. A missing file yields no entries.
func parseManifestEntries(path string) ([]string, error) {
	src, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("gen: read manifest %s: %w", path, err)
	}
	var entries []string
	for _, line := range strings.Split(string(src), "\n") {
		if m := manifestEntryRe.FindStringSubmatch(line); m != nil {
			entries = append(entries, m[1])
		}
	}
	return entries, nil
}

// generatedManifest renders the generated-tree manifest. Existing entries
// keep their order; tables seen for the first time are appended; entries
// whose table left the catalog are dropped. With keepAll set (single-table
// runs) no entry is dropped.
func generatedManifest(path, pkg, header string, tables []string, keepAll bool) ([]byte, error) {
	existing, err := parseManifestEntries(path)
	if err != nil {
		return nil, err
	}
	current := make(map[string]bool, len(tables))
	for _, t := range tables {
		current[t] = true
	}
	var entries []string
	seen := make(map[string]bool, len(existing))
	for _, e := range existing {
		if keepAll || current[e] {
			entries = append(entries, e)
			seen[e] = true
		}
	}
	for _, t := range tables {
		if !seen[t] {
			entries = append(entries, t)
		}
	}

	var b bytes.Buffer
	fmt.Fprintln(&b, "// Code generated by relgen. DO NOT EDIT.")
	if header != "" {
		fmt.Fprintf(&b, "// %s\n", header)
	}
	fmt.Fprintf(&b, "\npackage %s\n\n", pkg)
	fmt.Fprintln(&b, "// Tables lists every table with generated artifacts, in first-generated order.")
	fmt.Fprintln(&b, "var Tables = []string{")
	for _, e := range entries {
		fmt.Fprintf(&b, "\t%q,\n", e)
	}
	fmt.Fprintln(&b, "}")
	return imports.Process(path, b.Bytes(), nil)
}

// customManifest renders the custom-tree manifest. It is strictly additive:
// existing entries are never removed or reordered, and nothing else in the
// custom tree is touched. Returns nil content when no change is needed.
func customManifest(path, pkg string, files []string) ([]byte, error) {
	existing, err := parseManifestEntries(path)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(existing))
	for _, e := range existing {
		seen[e] = true
	}
	entries := existing
	added := false
	for _, f := range files {
		if !seen[f] {
			entries = append(entries, f)
			added = true
		}
	}
	if !added && len(existing) > 0 {
		return nil, nil
	}
	if _, err := os.Stat(path); err == nil && !added {
		return nil, nil
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "package %s\n\n", pkg)
	fmt.Fprintln(&b, "// Modules lists hand-written model files registered here.")
	fmt.Fprintln(&b, "// Entries are appended by the generator and never removed or reordered.")
	fmt.Fprintln(&b, "var Modules = []string{")
	for _, e := range entries {
		fmt.Fprintf(&b, "\t%q,\n", e)
	}
	fmt.Fprintln(&b, "}")
	return imports.Process(path, b.Bytes(), nil)
}

// customModuleFiles lists the Go files in the custom root that belong in
// its manifest: everything except the manifest itself and tests.
func customModuleFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("gen: scan custom tree %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") ||
			name == "manifest.go" || strings.HasSuffix(name, "_test.go") {
			continue
		}
		files = append(files, name)
	}
	return files, nil
}
