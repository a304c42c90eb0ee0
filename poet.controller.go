package poet

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/itsatony/go-cuserr"
	"go.uber.org/zap"
)

// PromptController answers requests for one prompt
type PromptController interface {
	Name() string
	Describe() PromptDescriptor
	Respond(ctx context.Context, arguments map[string]string) (*PromptResponse, error)
}

// PromptDescriptor describes a prompt without evaluating it
type PromptDescriptor struct {
	Name        string               `json:"name"`
	Title       string               `json:"title"`
	Description string               `json:"description,omitempty"`
	Arguments   []ArgumentDescriptor `json:"arguments"`
}

// ArgumentDescriptor describes one declared argument
type ArgumentDescriptor struct {
	Name        string `json:"name"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
	Date        string `json:"date,omitempty"`
}

// PromptResponse is the result of a prompt request
type PromptResponse struct {
	Description string          `json:"description"`
	Messages    []PromptMessage `json:"messages"`
}

// DocumentController serves one compiled document. It is immutable after
// the build and safe for concurrent requests.
type DocumentController struct {
	name        string
	document    *ParsedDocument
	frontMatter Value
	assembler   *MessageAssembler
	strict      bool
	assets      AssetResolver
	linker      DocumentLinker
	logger      *zap.Logger
}

// Name returns the document name
func (c *DocumentController) Name() string { return c.name }

// Document returns the compiled document
func (c *DocumentController) Document() *ParsedDocument { return c.document }

// Describe lists the prompt metadata with arguments sorted by name
func (c *DocumentController) Describe() PromptDescriptor {
	fm := c.document.FrontMatter
	args := make([]ArgumentDescriptor, 0, len(fm.Arguments))
	for name, arg := range fm.Arguments {
		args = append(args, ArgumentDescriptor{
			Name:        name,
			Title:       arg.Title,
			Description: arg.Description,
			Required:    arg.Required,
			Date:        string(arg.Date),
		})
	}
	sort.Slice(args, func(i, j int) bool { return args[i].Name < args[j].Name })

	return PromptDescriptor{
		Name:        c.name,
		Title:       fm.Title,
		Description: fm.Description,
		Arguments:   args,
	}
}

// Respond binds the arguments, evaluates the document in a fresh scope and
// returns its messages. On failure no messages are returned.
func (c *DocumentController) Respond(ctx context.Context, arguments map[string]string) (*PromptResponse, error) {
	start := time.Now()
	c.logger.Debug(LogMsgRequestStart, zap.String(LogFieldDocument, c.name))

	bound, err := BindArguments(c.document.FrontMatter.Arguments, arguments, c.strict)
	if err != nil {
		return nil, c.fail(err)
	}

	contextValue := MapValue(NewMap().
		Set(ContextKeyArguments, bound).
		Set(ContextKeyFrontMatter, c.frontMatter).
		Set(ContextKeyName, StringValue(c.name)))
	scope := NewScope().
		Bind(ContextBinding, contextValue).
		WithAssets(c.assets).
		WithLinker(c.linker)

	messages, err := c.assembler.Assemble(ctx, c.document.Blocks, scope)
	if err != nil {
		return nil, c.fail(err)
	}

	c.logger.Debug(LogMsgRequestEnd,
		zap.String(LogFieldDocument, c.name),
		zap.Int(LogFieldMessages, len(messages)),
		zap.Duration(LogFieldDuration, time.Since(start)),
	)
	return &PromptResponse{Description: c.document.FrontMatter.Description, Messages: messages}, nil
}

// fail tags a request error with the document name
func (c *DocumentController) fail(err error) error {
	var customErr *cuserr.CustomError
	if errors.As(err, &customErr) {
		customErr.WithMetadata(MetaKeyDocument, c.name)
	}
	c.logger.Debug(LogMsgRequestFailed, zap.String(LogFieldDocument, c.name), zap.Error(err))
	return err
}
