package poet

import (
	"context"
	"sync"
)

// SourceDocument is one candidate document. RelativePath is slash-separated
// and relative to the project root, e.g. "prompts/a/b.md".
type SourceDocument struct {
	RelativePath string
	Contents     []byte
}

// DocumentSource discovers candidate documents
type DocumentSource interface {
	Documents(ctx context.Context) ([]SourceDocument, error)
}

// MemorySource holds documents in memory. It is safe for concurrent use.
type MemorySource struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemorySource creates an empty in-memory source
func NewMemorySource() *MemorySource {
	return &MemorySource{docs: make(map[string][]byte)}
}

// Add stores or replaces a document
func (s *MemorySource) Add(relativePath, contents string) *MemorySource {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[relativePath] = []byte(contents)
	return s
}

// Remove deletes a document
func (s *MemorySource) Remove(relativePath string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.docs, relativePath)
}

// Documents implements DocumentSource. Documents are returned in path order.
func (s *MemorySource) Documents(ctx context.Context) ([]SourceDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]SourceDocument, 0, len(s.docs))
	for _, p := range sortedKeys(s.docs) {
		out = append(out, SourceDocument{RelativePath: p, Contents: append([]byte(nil), s.docs[p]...)})
	}
	return out, nil
}
