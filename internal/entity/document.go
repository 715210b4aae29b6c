package entity

import (
	"path/filepath"
	"strings"

	"github.com/jmartens-dev/bulletin-harvester/constants"
)

// SourceDocument identifies one input unit. Immutable once built.
type SourceDocument struct {
	Name   string // stable identifier, usually the base filename
	Path   string // absolute source path
	Format constants.FileFormat
}

// Stem returns the document name without its extension; it keys review
// and locked-file side artifacts.
func (d SourceDocument) Stem() string {
	return strings.TrimSuffix(d.Name, filepath.Ext(d.Name))
}

// NewSourceDocument builds a SourceDocument from a path, inferring format
// from the extension. Returns ok=false for unsupported extensions.
func NewSourceDocument(path string) (SourceDocument, bool) {
	format := constants.MapExtToFormat(filepath.Ext(path))
	if format == "" {
		return SourceDocument{}, false
	}
	return SourceDocument{
		Name:   filepath.Base(path),
		Path:   path,
		Format: format,
	}, true
}
