package poet

import (
	"runtime"

	"go.uber.org/zap"
)

// Option configures a Builder
type Option func(*config)

type namedComponent struct {
	name      string
	component Component
}

type config struct {
	logger          *zap.Logger
	evaluator       Evaluator
	components      []namedComponent
	workers         int
	roleMarkers     []Role
	untaggedRole    Role
	strictArguments bool
	assets          AssetResolver
	linker          DocumentLinker
	linkBaseURL     string
	documentsRoot   string
}

func defaultConfig() *config {
	return &config{
		logger:        zap.NewNop(),
		workers:       runtime.GOMAXPROCS(0),
		roleMarkers:   []Role{RoleUser, RoleAssistant},
		assets:        BaseURLAssetResolver{},
		linkBaseURL:   DefaultLinkBaseURL,
		documentsRoot: DefaultDocumentsRoot,
	}
}

// WithLogger sets the logger.
// Default: no-op logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithEvaluator replaces the expression evaluator.
// Default: NewExpressionEvaluator()
func WithEvaluator(evaluator Evaluator) Option {
	return func(c *config) {
		if evaluator != nil {
			c.evaluator = evaluator
		}
	}
}

// WithComponent registers a component under a tag name. Later
// registrations of the same name win, including over the builtins.
func WithComponent(name string, component Component) Option {
	return func(c *config) {
		c.components = append(c.components, namedComponent{name: name, component: component})
	}
}

// WithComponents registers several components, in sorted name order
func WithComponents(components map[string]Component) Option {
	return func(c *config) {
		for _, name := range sortedKeys(components) {
			c.components = append(c.components, namedComponent{name: name, component: components[name]})
		}
	}
}

// WithWorkers bounds how many documents compile at once.
// Default: runtime.GOMAXPROCS(0)
func WithWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithRoleMarkers sets the roles recognized as **role**: markers. Matching
// is case-insensitive. MCPServer only sends user and assistant messages and
// fails requests whose response carries any other role.
// Default: user, assistant
func WithRoleMarkers(roles ...Role) Option {
	return func(c *config) {
		if len(roles) > 0 {
			c.roleMarkers = append([]Role(nil), roles...)
		}
	}
}

// WithUntaggedRole assigns content before the first marker to role instead
// of failing the request.
// Default: "" (untagged content is an error)
func WithUntaggedRole(role Role) Option {
	return func(c *config) {
		c.untaggedRole = role
	}
}

// WithStrictArguments rejects request arguments the document does not
// declare.
// Default: false
func WithStrictArguments(strict bool) Option {
	return func(c *config) {
		c.strictArguments = strict
	}
}

// WithAssetResolver sets the resolver passed to components.
// Default: BaseURLAssetResolver{} (paths are returned unchanged)
func WithAssetResolver(r AssetResolver) Option {
	return func(c *config) {
		if r != nil {
			c.assets = r
		}
	}
}

// WithDocumentLinker sets the linker passed to components.
// Default: a CollectionLinker over the built collection
func WithDocumentLinker(l DocumentLinker) Option {
	return func(c *config) {
		c.linker = l
	}
}

// WithLinkBaseURL sets the base of links made by the default linker.
// Default: "prompt://"
func WithLinkBaseURL(base string) Option {
	return func(c *config) {
		c.linkBaseURL = base
	}
}

// WithDocumentsRoot sets the directory document names are relative to.
// Default: "prompts"
func WithDocumentsRoot(root string) Option {
	return func(c *config) {
		c.documentsRoot = root
	}
}
