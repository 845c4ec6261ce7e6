package paths

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/pylon/pkg/errors"
	"github.com/arthur-debert/pylon/pkg/logging"
	"github.com/arthur-debert/pylon/pkg/rules"
	"github.com/rs/zerolog"
)

// DocumentRef identifies the document that referenced an asset.
// Absent (nil) for references discovered in mounted, non-generated files.
type DocumentRef struct {
	// Path is the absolute path of the source document (markdown file)
	Path string
}

// Dir returns the document's parent directory
func (d *DocumentRef) Dir() string {
	return filepath.Dir(d.Path)
}

// ResolutionContext is the ephemeral state of one asset resolution.
// It is owned by exactly one resolution call; Cleanup removes the
// scratch directory when the resolution completes or fails.
type ResolutionContext struct {
	// URI is the requested asset URI (leading separator)
	URI string

	// Document is the referencing document, nil for mounted files
	Document *DocumentRef

	// TargetPath is the absolute output location for the asset
	TargetPath string

	// WorkingDir is the absolute directory shell operations run in
	WorkingDir string

	// SourcePath is the default absolute source for the asset
	SourcePath string

	// ScratchDir is this resolution's private temporary directory
	ScratchDir string

	// ScratchFile is the single scratch file shared by all shell
	// operations of the same rule invocation
	ScratchFile string
}

// Cleanup removes the scratch directory and everything in it
func (c *ResolutionContext) Cleanup() error {
	if c.ScratchDir == "" {
		return nil
	}
	return os.RemoveAll(c.ScratchDir)
}

// Resolver computes the filesystem locations a rule operates on
type Resolver struct {
	paths  *Paths
	logger zerolog.Logger
}

// NewResolver creates a resolver over the given project layout
func NewResolver(p *Paths) *Resolver {
	return &Resolver{
		paths:  p,
		logger: logging.GetLogger("paths.resolver"),
	}
}

// Paths returns the project layout the resolver operates on
func (r *Resolver) Paths() *Paths {
	return r.paths
}

// Resolve computes the absolute target, working directory, and source
// path for one asset request, and allocates the request's scratch
// directory.
//
// Working-directory resolution:
//
//	AbsoluteFromRoot(p)       -> projectRoot/p, unconditionally
//	RelativeToDocument(sub)   -> dir(document)/sub; requires a document
//	                             origin, the documented failure mode for
//	                             mounted files is NO_DOCUMENT_ORIGIN
func (r *Resolver) Resolve(rule *rules.Rule, uri string, doc *DocumentRef) (*ResolutionContext, error) {
	if !strings.HasPrefix(uri, "/") {
		return nil, errors.Newf(errors.ErrInvalidInput,
			"requested URI %q must begin with a path separator", uri)
	}

	target := r.paths.TargetPath(uri)

	var workingDir string
	switch rule.BaseDir.Kind() {
	case rules.AbsoluteFromRoot:
		workingDir = filepath.Join(r.paths.ProjectRoot(), rule.BaseDir.Subpath())
	case rules.RelativeToDocument:
		if doc == nil {
			return nil, errors.Newf(errors.ErrNoDocumentOrigin,
				"rule %q resolves relative to the referencing document, but asset %q has no document origin",
				rule.Name, uri).
				WithDetail("uri", uri).
				WithDetail("rule", rule.Name)
		}
		workingDir = filepath.Join(doc.Dir(), rule.BaseDir.Subpath())
	}

	// The final URI segment is the default source; glob-matched shell
	// rules may enumerate further matches themselves.
	source := filepath.Join(workingDir, path.Base(uri))

	scratchDir, err := os.MkdirTemp(r.paths.ScratchRoot(), "pylon-scratch-")
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrScratchCreate,
			"failed to create scratch directory for asset %q", uri)
	}
	scratchFile := filepath.Join(scratchDir, "scratch")
	if err := os.WriteFile(scratchFile, nil, 0644); err != nil {
		_ = os.RemoveAll(scratchDir)
		return nil, errors.Wrapf(err, errors.ErrScratchCreate,
			"failed to create scratch file for asset %q", uri)
	}

	r.logger.Debug().
		Str("uri", uri).
		Str("rule", rule.Name).
		Str("workingDir", workingDir).
		Str("source", source).
		Str("target", target).
		Msg("Resolved asset paths")

	return &ResolutionContext{
		URI:         uri,
		Document:    doc,
		TargetPath:  target,
		WorkingDir:  workingDir,
		SourcePath:  source,
		ScratchDir:  scratchDir,
		ScratchFile: scratchFile,
	}, nil
}
