package poet

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemSource discovers .md documents under Root/Dir. Relative paths
// are reported against Root, so with Dir "prompts" a file comes back as
// "prompts/a/b.md". Hidden directories are skipped.
type FilesystemSource struct {
	Root string
	Dir  string
}

// NewFilesystemSource creates a source for the documents directory dir
// inside the project root
func NewFilesystemSource(root, dir string) *FilesystemSource {
	return &FilesystemSource{Root: root, Dir: dir}
}

// Path returns the directory that is walked
func (s *FilesystemSource) Path() string {
	return filepath.Join(s.Root, s.Dir)
}

// Documents implements DocumentSource
func (s *FilesystemSource) Documents(ctx context.Context) ([]SourceDocument, error) {
	var docs []SourceDocument
	err := filepath.WalkDir(s.Path(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if path != s.Path() && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != DocumentExtension {
			return nil
		}

		contents, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.Root, path)
		if err != nil {
			return err
		}
		docs = append(docs, SourceDocument{RelativePath: filepath.ToSlash(rel), Contents: contents})
		return nil
	})
	if err != nil {
		return nil, NewSourceError(ErrMsgSourceRead, s.Path(), err)
	}
	return docs, nil
}
