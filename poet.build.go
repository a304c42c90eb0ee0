package poet

import (
	"context"
	"path"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Builder compiles prompt documents into controllers. A Builder is safe
// for concurrent use; each Build call is independent.
type Builder struct {
	cfg         *config
	registry    *ComponentRegistry
	evaluator   Evaluator
	interpreter *Interpreter
	assembler   *MessageAssembler
	logger      *zap.Logger
}

// NewBuilder creates a Builder with the builtin components plus any
// components given through options
func NewBuilder(opts ...Option) (*Builder, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	for _, role := range cfg.roleMarkers {
		if strings.TrimSpace(string(role)) == "" {
			return nil, NewConfigError(ErrMsgInvalidRole)
		}
	}

	if cfg.evaluator == nil {
		cfg.evaluator = NewExpressionEvaluator()
	}

	registry := NewComponentRegistry(cfg.logger)
	registerBuiltinComponents(registry)
	for _, nc := range cfg.components {
		if err := registry.Register(nc.name, nc.component); err != nil {
			return nil, err
		}
	}

	interpreter := NewInterpreter(registry, cfg.evaluator, cfg.logger)
	return &Builder{
		cfg:         cfg,
		registry:    registry,
		evaluator:   cfg.evaluator,
		interpreter: interpreter,
		assembler:   newMessageAssembler(interpreter, cfg),
		logger:      cfg.logger,
	}, nil
}

// MustNewBuilder is like NewBuilder but panics on error
func MustNewBuilder(opts ...Option) *Builder {
	b, err := NewBuilder(opts...)
	if err != nil {
		panic(err)
	}
	return b
}

// Registry returns the component registry shared by every controller
func (b *Builder) Registry() *ComponentRegistry { return b.registry }

// Compile compiles one document into a controller. The controller links
// through the configured DocumentLinker, if any.
func (b *Builder) Compile(name, source string) (*DocumentController, error) {
	doc, err := ParseDocument(source, b.evaluator, b.logger)
	if err != nil {
		return nil, err
	}
	return b.newController(name, doc)
}

func (b *Builder) newController(name string, doc *ParsedDocument) (*DocumentController, error) {
	fm, err := doc.FrontMatter.Value()
	if err != nil {
		return nil, NewParseMetadataError(ErrMsgFrontMatterInvalid, err)
	}
	return &DocumentController{
		name:        name,
		document:    doc,
		frontMatter: fm,
		assembler:   b.assembler,
		strict:      b.cfg.strictArguments,
		assets:      b.cfg.assets,
		linker:      b.cfg.linker,
		logger:      b.logger,
	}, nil
}

// Build reads every document from source and compiles them.
func (b *Builder) Build(ctx context.Context, source DocumentSource) (*ControllerCollection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	docs, err := source.Documents(ctx)
	if err != nil {
		return nil, err
	}
	return b.BuildDocuments(ctx, docs)
}

// BuildDocuments compiles documents in parallel on a bounded worker pool.
// Every document compiles independently; failures are collected and
// reported together after all workers finish. Documents with render
// disabled are skipped.
func (b *Builder) BuildDocuments(ctx context.Context, docs []SourceDocument) (*ControllerCollection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	b.logger.Debug(LogMsgBuildStart,
		zap.Int(LogFieldCount, len(docs)),
		zap.Int(LogFieldWorkers, b.cfg.workers),
	)

	errs := NewDocumentErrorCollection()
	var mu sync.Mutex
	controllers := make(map[string]*DocumentController, len(docs))

	g := new(errgroup.Group)
	g.SetLimit(b.cfg.workers)

	for _, doc := range docs {
		if path.Ext(doc.RelativePath) != DocumentExtension {
			b.logger.Debug(LogMsgDocumentSkipped,
				zap.String(LogFieldPath, doc.RelativePath),
				zap.String(LogFieldReason, SkipReasonNotDocument),
			)
			continue
		}

		name, err := DocumentName(b.cfg.documentsRoot, doc.RelativePath)
		if err != nil {
			errs.Register(doc.RelativePath, err)
			continue
		}

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs.Register(name, err)
				return nil
			}

			controller, skipped, err := b.compileSource(name, doc)
			switch {
			case err != nil:
				b.logger.Warn(LogMsgDocumentFailed, zap.String(LogFieldDocument, name), zap.Error(err))
				errs.Register(name, err)
			case skipped:
				b.logger.Debug(LogMsgDocumentSkipped,
					zap.String(LogFieldDocument, name),
					zap.String(LogFieldReason, SkipReasonRenderDisabled),
				)
			default:
				mu.Lock()
				if _, dup := controllers[name]; dup {
					errs.Register(name, NewSourceError(ErrMsgDuplicateDocument, doc.RelativePath, nil))
				} else {
					controllers[name] = controller
				}
				mu.Unlock()
				b.logger.Debug(LogMsgDocumentCompiled, zap.String(LogFieldDocument, name))
			}
			return nil
		})
	}
	_ = g.Wait()

	if !errs.IsEmpty() {
		b.logger.Info(LogMsgBuildEnd,
			zap.Int(LogFieldCount, len(controllers)),
			zap.Int(LogFieldErrors, errs.Len()),
			zap.Duration(LogFieldDuration, time.Since(start)),
		)
		return nil, NewAggregateBuildError(errs.Snapshot())
	}

	collection := newControllerCollection(controllers)
	if b.cfg.linker == nil {
		linker := NewCollectionLinker(b.cfg.linkBaseURL, collection.Names())
		for _, c := range controllers {
			c.linker = linker
		}
	}

	b.logger.Info(LogMsgBuildEnd,
		zap.Int(LogFieldCount, collection.Len()),
		zap.Int(LogFieldErrors, 0),
		zap.Duration(LogFieldDuration, time.Since(start)),
	)
	return collection, nil
}

// compileSource compiles one source document. skipped is true when its
// front matter disables rendering.
func (b *Builder) compileSource(name string, doc SourceDocument) (*DocumentController, bool, error) {
	parsed, err := ParseDocument(string(doc.Contents), b.evaluator, b.logger)
	if err != nil {
		return nil, false, err
	}
	if !parsed.FrontMatter.ShouldRender() {
		return nil, true, nil
	}
	controller, err := b.newController(name, parsed)
	return controller, false, err
}

// DocumentName derives a prompt name from a slash-separated path: the path
// relative to root without the .md extension. Paths outside root fail.
func DocumentName(root, relativePath string) (string, error) {
	clean := path.Clean(strings.TrimPrefix(relativePath, "./"))
	root = path.Clean(root)

	rel := clean
	if root != "." && root != "" {
		prefix := root + "/"
		if !strings.HasPrefix(clean, prefix) {
			return "", NewDocumentNameError(root, relativePath)
		}
		rel = strings.TrimPrefix(clean, prefix)
	}
	if rel == "" || rel == "." || strings.HasPrefix(rel, "../") {
		return "", NewDocumentNameError(root, relativePath)
	}
	return strings.TrimSuffix(rel, path.Ext(rel)), nil
}

// DocumentErrorCollection records per-document failures of one build. The
// first error registered for a document is kept. It is safe for
// concurrent use.
type DocumentErrorCollection struct {
	mu     sync.Mutex
	errors map[string]error
}

// NewDocumentErrorCollection creates an empty collection
func NewDocumentErrorCollection() *DocumentErrorCollection {
	return &DocumentErrorCollection{errors: make(map[string]error)}
}

// Register records an error for a document. It returns false when the
// document already has one.
func (c *DocumentErrorCollection) Register(name string, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.errors[name]; exists {
		return false
	}
	c.errors[name] = err
	return true
}

// Len returns the number of failing documents
func (c *DocumentErrorCollection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.errors)
}

// IsEmpty reports whether no document failed
func (c *DocumentErrorCollection) IsEmpty() bool {
	return c.Len() == 0
}

// Snapshot returns a copy of the recorded errors
func (c *DocumentErrorCollection) Snapshot() map[string]error {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]error, len(c.errors))
	for name, err := range c.errors {
		out[name] = err
	}
	return out
}

// ControllerCollection is the immutable result of a successful build
type ControllerCollection struct {
	controllers map[string]*DocumentController
	names       []string
}

func newControllerCollection(controllers map[string]*DocumentController) *ControllerCollection {
	return &ControllerCollection{controllers: controllers, names: sortedKeys(controllers)}
}

// Get returns the controller for a prompt name
func (c *ControllerCollection) Get(name string) (*DocumentController, bool) {
	controller, ok := c.controllers[name]
	return controller, ok
}

// Names returns the prompt names in sorted order
func (c *ControllerCollection) Names() []string {
	return append([]string(nil), c.names...)
}

// Len returns the number of prompts
func (c *ControllerCollection) Len() int {
	return len(c.names)
}

// Describe returns every prompt descriptor in name order
func (c *ControllerCollection) Describe() []PromptDescriptor {
	out := make([]PromptDescriptor, len(c.names))
	for i, name := range c.names {
		out[i] = c.controllers[name].Describe()
	}
	return out
}

// Respond answers a request for the named prompt
func (c *ControllerCollection) Respond(ctx context.Context, name string, arguments map[string]string) (*PromptResponse, error) {
	controller, ok := c.controllers[name]
	if !ok {
		return nil, NewPromptNotFoundError(name)
	}
	return controller.Respond(ctx, arguments)
}
