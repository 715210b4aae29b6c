package batch

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/jmartens-dev/bulletin-harvester/constants"
	"github.com/jmartens-dev/bulletin-harvester/internal/common"
	"github.com/jmartens-dev/bulletin-harvester/internal/entity"
)

// EnumerateDirectory walks root recursively and collects every supported
// document, skipping hidden files and directories. Walk order (lexical) fixes
// the record order of the whole batch.
func EnumerateDirectory(root string) ([]entity.SourceDocument, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("root path is required")
	}
	var docs []entity.SourceDocument
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if isHidden(d.Name()) && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !constants.AllowedExt(filepath.Ext(path)) {
			return nil
		}
		if doc, ok := entity.NewSourceDocument(path); ok {
			docs = append(docs, doc)
		}
		return nil
	})
	if err != nil {
		return nil, common.WrapError(err, "walk "+root)
	}
	return docs, nil
}

// FromPaths builds the input set from an explicit file list, preserving the
// caller's order. Unsupported extensions are rejected rather than skipped so
// a typo in an explicit list does not vanish silently.
func FromPaths(paths []string) ([]entity.SourceDocument, error) {
	docs := make([]entity.SourceDocument, 0, len(paths))
	for _, p := range paths {
		doc, ok := entity.NewSourceDocument(p)
		if !ok {
			return nil, fmt.Errorf("unsupported file type: %s", p)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// EnumerateReviewDir is the re-run entry point: the review holding area's
// text dumps re-enter the pipeline as plain-text sources.
func EnumerateReviewDir(reviewDir string) ([]entity.SourceDocument, error) {
	matches, err := filepath.Glob(filepath.Join(reviewDir, "*.txt"))
	if err != nil {
		return nil, fmt.Errorf("scan review dir: %w", err)
	}
	docs := make([]entity.SourceDocument, 0, len(matches))
	for _, p := range matches {
		docs = append(docs, entity.SourceDocument{
			Name:   filepath.Base(p),
			Path:   p,
			Format: constants.TXT,
		})
	}
	return docs, nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
