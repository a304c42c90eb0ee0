package poet

import (
	"sort"
	"strings"
)

// AssetResolver turns an asset path into a URL clients can fetch
type AssetResolver interface {
	ResolveAsset(path string) (string, error)
}

// DocumentLinker turns a prompt document name into a link
type DocumentLinker interface {
	LinkTo(name string) (string, error)
}

// BaseURLAssetResolver joins asset paths onto a base URL
type BaseURLAssetResolver struct {
	BaseURL string
}

// ResolveAsset implements AssetResolver
func (r BaseURLAssetResolver) ResolveAsset(path string) (string, error) {
	if r.BaseURL == "" {
		return path, nil
	}
	return strings.TrimRight(r.BaseURL, "/") + "/" + strings.TrimLeft(path, "/"), nil
}

// CollectionLinker links to the prompts of one built collection. Links to
// names outside the collection fail.
type CollectionLinker struct {
	baseURL string
	names   map[string]struct{}
}

// NewCollectionLinker creates a linker over the given prompt names
func NewCollectionLinker(baseURL string, names []string) *CollectionLinker {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return &CollectionLinker{baseURL: baseURL, names: set}
}

// LinkTo implements DocumentLinker
func (l *CollectionLinker) LinkTo(name string) (string, error) {
	name = strings.Trim(name, "/")
	if _, ok := l.names[name]; !ok {
		return "", NewLinkTargetError(name)
	}
	if l.baseURL == "" || strings.HasSuffix(l.baseURL, "/") {
		return l.baseURL + name, nil
	}
	return l.baseURL + "/" + name, nil
}

// Names returns the linkable prompt names in sorted order
func (l *CollectionLinker) Names() []string {
	names := make([]string, 0, len(l.names))
	for name := range l.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
