package paths

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/pylon/pkg/errors"
)

// Paths holds the resolved project layout. Built once at startup and
// read-only afterwards.
type Paths struct {
	projectRoot string
	srcDir      string
	outputDir   string
	scratchRoot string
}

// Options configures the project layout. SrcDir and OutputDir may be
// relative, in which case they are joined to the project root.
// ScratchRoot defaults to the system temporary directory.
type Options struct {
	ProjectRoot string
	SrcDir      string
	OutputDir   string
	ScratchRoot string
}

// New validates the project root and builds the path authority
func New(opts Options) (*Paths, error) {
	root, err := filepath.Abs(opts.ProjectRoot)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrRootUnreadable,
			"cannot resolve project root %q", opts.ProjectRoot)
	}
	if _, err := os.Stat(root); err != nil {
		return nil, errors.Wrapf(err, errors.ErrRootUnreadable,
			"cannot read project root %q", root)
	}

	srcDir := opts.SrcDir
	if srcDir == "" {
		srcDir = "content"
	}
	if !filepath.IsAbs(srcDir) {
		srcDir = filepath.Join(root, srcDir)
	}

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = "public"
	}
	if !filepath.IsAbs(outputDir) {
		outputDir = filepath.Join(root, outputDir)
	}

	scratchRoot := opts.ScratchRoot
	if scratchRoot == "" {
		scratchRoot = os.TempDir()
	}

	return &Paths{
		projectRoot: root,
		srcDir:      srcDir,
		outputDir:   outputDir,
		scratchRoot: scratchRoot,
	}, nil
}

// ProjectRoot returns the absolute project root
func (p *Paths) ProjectRoot() string {
	return p.projectRoot
}

// SrcDir returns the absolute content source directory
func (p *Paths) SrcDir() string {
	return p.srcDir
}

// OutputDir returns the absolute site output directory
func (p *Paths) OutputDir() string {
	return p.outputDir
}

// ScratchRoot returns the directory scratch directories are created under
func (p *Paths) ScratchRoot() string {
	return p.scratchRoot
}

// TargetPath maps an asset URI to its absolute output location
func (p *Paths) TargetPath(uri string) string {
	return filepath.Join(p.outputDir, filepath.FromSlash(uri))
}
