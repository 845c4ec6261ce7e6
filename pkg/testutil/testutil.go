// Package testutil provides helpers for building throwaway site trees
// in tests: a project root with content, output, and scratch
// directories plus arbitrary seeded files.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arthur-debert/pylon/pkg/paths"
)

// SiteEnv is a temporary project tree for one test
type SiteEnv struct {
	// Root is the absolute project root
	Root string

	// Paths is the layout authority over the tree, with the scratch
	// root inside the tree so tests can assert on leftover scratch dirs
	Paths *paths.Paths

	t *testing.T
}

// NewSiteEnv creates a project tree under t.TempDir with the standard
// layout (content/, public/, .scratch/) and the given seeded files.
// Keys are slash-separated paths relative to the root.
func NewSiteEnv(t *testing.T, files map[string]string) *SiteEnv {
	t.Helper()

	root := t.TempDir()
	for _, dir := range []string{"content", "public", ".scratch"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0755); err != nil {
			t.Fatalf("failed to create %s dir: %v", dir, err)
		}
	}

	env := &SiteEnv{Root: root, t: t}
	for rel, content := range files {
		env.WriteFile(rel, content)
	}

	p, err := paths.New(paths.Options{
		ProjectRoot: root,
		SrcDir:      "content",
		OutputDir:   "public",
		ScratchRoot: filepath.Join(root, ".scratch"),
	})
	if err != nil {
		t.Fatalf("failed to build paths: %v", err)
	}
	env.Paths = p

	return env
}

// Path returns the absolute path for a root-relative file
func (e *SiteEnv) Path(rel string) string {
	return filepath.Join(e.Root, filepath.FromSlash(rel))
}

// WriteFile creates a file (and its parents) under the root
func (e *SiteEnv) WriteFile(rel, content string) {
	e.t.Helper()

	abs := e.Path(rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		e.t.Fatalf("failed to create parent dirs for %s: %v", rel, err)
	}
	if err := os.WriteFile(abs, []byte(content), 0644); err != nil {
		e.t.Fatalf("failed to write %s: %v", rel, err)
	}
}

// ReadFile returns the contents of a root-relative file
func (e *SiteEnv) ReadFile(rel string) string {
	e.t.Helper()

	data, err := os.ReadFile(e.Path(rel))
	if err != nil {
		e.t.Fatalf("failed to read %s: %v", rel, err)
	}
	return string(data)
}

// Exists reports whether a root-relative path exists
func (e *SiteEnv) Exists(rel string) bool {
	_, err := os.Stat(e.Path(rel))
	return err == nil
}

// ScratchEntries lists the entries currently under the scratch root.
// An empty result after an executor run means cleanup worked.
func (e *SiteEnv) ScratchEntries() []string {
	e.t.Helper()

	entries, err := os.ReadDir(filepath.Join(e.Root, ".scratch"))
	if err != nil {
		e.t.Fatalf("failed to read scratch root: %v", err)
	}

	var names []string
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), "pylon-scratch-") {
			names = append(names, entry.Name())
		}
	}
	return names
}

// Document returns a DocumentRef for a root-relative source file
func (e *SiteEnv) Document(rel string) *paths.DocumentRef {
	return &paths.DocumentRef{Path: e.Path(rel)}
}
