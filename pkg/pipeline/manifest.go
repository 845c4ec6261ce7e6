package pipeline

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/pylon/pkg/errors"
	"github.com/arthur-debert/pylon/pkg/paths"
	"gopkg.in/yaml.v3"
)

// AssetManifest is the renderer's hand-off to the pipeline engine: the
// list of asset references it discovered while rendering documents.
type AssetManifest struct {
	Assets []AssetEntry `yaml:"assets"`
}

// AssetEntry is one discovered reference. Document is the referencing
// source file, relative to the project root; empty for references found
// in mounted, non-generated files.
type AssetEntry struct {
	URI      string `yaml:"uri"`
	Document string `yaml:"document,omitempty"`
}

// LoadManifest reads and validates an asset manifest file
func LoadManifest(path string) (*AssetManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad,
			"failed to read asset manifest %q", path)
	}

	var manifest AssetManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse,
			"failed to parse asset manifest %q", path)
	}

	for i, entry := range manifest.Assets {
		if !strings.HasPrefix(entry.URI, "/") {
			return nil, errors.Newf(errors.ErrConfigValid,
				"asset %d in manifest %q: URI %q must begin with a path separator",
				i+1, path, entry.URI)
		}
	}

	return &manifest, nil
}

// Requests converts manifest entries into runner requests, resolving
// document paths against the project root
func (m *AssetManifest) Requests(p *paths.Paths) []Request {
	requests := make([]Request, 0, len(m.Assets))
	for _, entry := range m.Assets {
		var doc *paths.DocumentRef
		if entry.Document != "" {
			docPath := entry.Document
			if !filepath.IsAbs(docPath) {
				docPath = filepath.Join(p.ProjectRoot(), filepath.FromSlash(docPath))
			}
			doc = &paths.DocumentRef{Path: docPath}
		}
		requests = append(requests, Request{URI: entry.URI, Document: doc})
	}
	return requests
}
