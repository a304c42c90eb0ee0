package poet

import "strings"

// Scope holds the named values and per-request services visible to one
// evaluation. A scope is request-local and not safe for concurrent writes.
type Scope struct {
	bindings map[string]Value
	assets   AssetResolver
	linker   DocumentLinker
}

// NewScope creates an empty scope
func NewScope() *Scope {
	return &Scope{bindings: make(map[string]Value)}
}

// Bind sets a named value
func (s *Scope) Bind(name string, v Value) *Scope {
	s.bindings[name] = v
	return s
}

// Lookup returns a named value
func (s *Scope) Lookup(name string) (Value, bool) {
	v, ok := s.bindings[name]
	return v, ok
}

// Context returns the context binding components receive
func (s *Scope) Context() (Value, error) {
	v, ok := s.bindings[ContextBinding]
	if !ok {
		return NilValue(), NewScopeError(ContextBinding)
	}
	return v, nil
}

// WithAssets attaches the asset resolver for this request
func (s *Scope) WithAssets(r AssetResolver) *Scope {
	s.assets = r
	return s
}

// WithLinker attaches the document linker for this request
func (s *Scope) WithLinker(l DocumentLinker) *Scope {
	s.linker = l
	return s
}

// Assets returns the asset resolver, which may be nil
func (s *Scope) Assets() AssetResolver { return s.assets }

// Linker returns the document linker, which may be nil
func (s *Scope) Linker() DocumentLinker { return s.linker }

// Get resolves a dotted identifier for the expression engine. The first
// segment must name a binding or the lookup fails with a scope error; the
// rest walks into it and reports found=false when a key is absent.
func (s *Scope) Get(path string) (any, bool, error) {
	name, rest, _ := strings.Cut(path, ".")
	root, ok := s.bindings[name]
	if !ok {
		return nil, false, NewScopeError(name)
	}
	v, ok := root.Lookup(rest)
	if !ok {
		return nil, false, nil
	}
	return v.ToAny(), true, nil
}
