package poet

import (
	"context"
	"sort"
	"sync"

	"github.com/Propfend/poet/internal"
	"go.uber.org/zap"
)

// Component renders a custom tag. Implementations must be safe for
// concurrent use; many requests may render the same component at once.
type Component interface {
	Render(ctx context.Context, call ComponentCall) (Value, error)
}

// ComponentFunc adapts a plain function to Component
type ComponentFunc func(ctx context.Context, call ComponentCall) (Value, error)

// Render implements Component
func (f ComponentFunc) Render(ctx context.Context, call ComponentCall) (Value, error) {
	return f(ctx, call)
}

// ComponentCall is everything a component receives for one tag
type ComponentCall struct {
	// Name is the tag name the component was resolved under
	Name string
	// Context is the scope's context binding
	Context Value
	// Props holds the tag attributes in attribute order. Valueless
	// attributes are true.
	Props *Map
	// Children is the rendered text between the opening and closing tag
	Children string
	Assets   AssetResolver
	Linker   DocumentLinker
}

// Prop returns a prop by name
func (c ComponentCall) Prop(name string) (Value, bool) {
	return c.Props.Get(name)
}

// RequireProp returns a prop or a component prop error naming it
func (c ComponentCall) RequireProp(name string) (Value, error) {
	v, ok := c.Props.Get(name)
	if !ok || v.IsNil() {
		return NilValue(), NewComponentPropError(c.Name, name)
	}
	return v, nil
}

// ComponentRegistry maps tag names to components. Registration replaces
// any existing component under the same name. It is safe for concurrent use.
type ComponentRegistry struct {
	components map[string]Component
	mu         sync.RWMutex
	logger     *zap.Logger
}

// NewComponentRegistry creates an empty registry
func NewComponentRegistry(logger *zap.Logger) *ComponentRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ComponentRegistry{
		components: make(map[string]Component),
		logger:     logger,
	}
}

// Register adds or replaces a component. Names must start with an
// upper-case letter; lower-case tags are always literal markup.
func (r *ComponentRegistry) Register(name string, component Component) error {
	if component == nil {
		return NewComponentRegistrationError(ErrMsgComponentNil, name)
	}
	if name == "" {
		return NewComponentRegistrationError(ErrMsgComponentNameEmpty, name)
	}
	if !internal.IsComponentName(name) {
		return NewComponentRegistrationError(ErrMsgComponentNameInvalid, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.components[name]; exists {
		r.logger.Debug(LogMsgComponentReplaced, zap.String(LogFieldComponent, name))
	} else {
		r.logger.Debug(LogMsgComponentRegistered, zap.String(LogFieldComponent, name))
	}
	r.components[name] = component
	return nil
}

// MustRegister adds a component and panics if registration fails
func (r *ComponentRegistry) MustRegister(name string, component Component) {
	if err := r.Register(name, component); err != nil {
		panic(err)
	}
}

// Resolve returns the component registered under name
func (r *ComponentRegistry) Resolve(name string) (Component, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	component, ok := r.components[name]
	if !ok {
		return nil, NewComponentResolutionError(name)
	}
	return component, nil
}

// Has checks if a component is registered
func (r *ComponentRegistry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.components[name]
	return ok
}

// List returns the registered names in sorted order
func (r *ComponentRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.components))
	for name := range r.components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered components
func (r *ComponentRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.components)
}
