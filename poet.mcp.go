package poet

import (
	"context"
	"io"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// MCPServer exposes a controller collection as MCP prompts. The collection
// can be replaced while serving; requests always see a complete collection.
type MCPServer struct {
	server     *server.MCPServer
	collection atomic.Pointer[ControllerCollection]
	mu         sync.Mutex
	registered map[string]struct{}
	logger     *zap.Logger
}

// NewMCPServer creates a server advertising every prompt of collection
func NewMCPServer(name, version string, collection *ControllerCollection, logger *zap.Logger) *MCPServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &MCPServer{
		server: server.NewMCPServer(
			name,
			version,
			server.WithPromptCapabilities(true),
			server.WithRecovery(),
		),
		registered: make(map[string]struct{}),
		logger:     logger,
	}
	s.Update(collection)
	return s
}

// Server returns the underlying MCP server
func (s *MCPServer) Server() *server.MCPServer { return s.server }

// Collection returns the collection currently served
func (s *MCPServer) Collection() *ControllerCollection { return s.collection.Load() }

// Update swaps in a new collection, registering new prompts and removing
// prompts that no longer exist
func (s *MCPServer) Update(collection *ControllerCollection) {
	if collection == nil {
		collection = newControllerCollection(nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.collection.Store(collection)

	current := make(map[string]struct{}, collection.Len())
	for _, descriptor := range collection.Describe() {
		current[descriptor.Name] = struct{}{}
		s.server.AddPrompt(promptDefinition(descriptor), s.handleGetPrompt)
		if _, ok := s.registered[descriptor.Name]; !ok {
			s.logger.Debug(LogMsgPromptRegistered, zap.String(LogFieldPromptName, descriptor.Name))
		}
	}

	var removed []string
	for name := range s.registered {
		if _, ok := current[name]; !ok {
			removed = append(removed, name)
		}
	}
	if len(removed) > 0 {
		sort.Strings(removed)
		s.server.DeletePrompts(removed...)
		for _, name := range removed {
			s.logger.Debug(LogMsgPromptRemoved, zap.String(LogFieldPromptName, name))
		}
	}

	s.registered = current
	s.logger.Info(LogMsgCollectionSwapped, zap.Int(LogFieldCount, collection.Len()))
}

// Prompts returns the registered prompt names in sorted order
func (s *MCPServer) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return sortedKeys(s.registered)
}

// ServeStdio serves newline-delimited JSON-RPC from in to out until in
// is exhausted or ctx is done
func (s *MCPServer) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s.server).Listen(ctx, in, out)
}

// promptDefinition projects a descriptor onto an MCP prompt. MCP prompts
// have no title field, so the prompt title and per-argument titles and
// dates travel in _meta.
func promptDefinition(d PromptDescriptor) mcp.Prompt {
	description := d.Description
	if description == "" {
		description = d.Title
	}
	opts := []mcp.PromptOption{mcp.WithPromptDescription(description)}
	arguments := make(map[string]any)
	for _, arg := range d.Arguments {
		argOpts := []mcp.ArgumentOption{mcp.ArgumentDescription(arg.Description)}
		if arg.Required {
			argOpts = append(argOpts, mcp.RequiredArgument())
		}
		opts = append(opts, mcp.WithArgument(arg.Name, argOpts...))

		meta := make(map[string]any)
		if arg.Title != "" {
			meta[MCPMetaTitle] = arg.Title
		}
		if arg.Date != "" {
			meta[MCPMetaDate] = arg.Date
		}
		if len(meta) > 0 {
			arguments[arg.Name] = meta
		}
	}

	prompt := mcp.NewPrompt(d.Name, opts...)
	fields := map[string]any{MCPMetaTitle: d.Title}
	if len(arguments) > 0 {
		fields[MCPMetaArguments] = arguments
	}
	prompt.Meta = &mcp.Meta{AdditionalFields: fields}
	return prompt
}

// mcpRole maps a message role onto the roles MCP defines
func mcpRole(role Role) (mcp.Role, error) {
	switch role {
	case RoleUser:
		return mcp.RoleUser, nil
	case RoleAssistant:
		return mcp.RoleAssistant, nil
	default:
		return "", NewUnsupportedRoleError(role)
	}
}

func (s *MCPServer) handleGetPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	requestID := uuid.NewString()
	name := req.Params.Name
	s.logger.Debug(LogMsgRequestStart,
		zap.String(LogFieldRequestID, requestID),
		zap.String(LogFieldPromptName, name),
	)

	resp, err := s.collection.Load().Respond(ctx, name, req.Params.Arguments)
	if err != nil {
		s.logger.Warn(LogMsgRequestFailed,
			zap.String(LogFieldRequestID, requestID),
			zap.String(LogFieldPromptName, name),
			zap.Error(err),
		)
		return nil, err
	}

	messages := make([]mcp.PromptMessage, len(resp.Messages))
	for i, m := range resp.Messages {
		role, err := mcpRole(m.Role)
		if err != nil {
			s.logger.Warn(LogMsgRequestFailed,
				zap.String(LogFieldRequestID, requestID),
				zap.String(LogFieldPromptName, name),
				zap.Error(err),
			)
			return nil, err
		}
		messages[i] = mcp.NewPromptMessage(role, mcp.NewTextContent(m.Content))
	}

	s.logger.Debug(LogMsgRequestEnd,
		zap.String(LogFieldRequestID, requestID),
		zap.String(LogFieldPromptName, name),
		zap.Int(LogFieldMessages, len(messages)),
	)
	return mcp.NewGetPromptResult(resp.Description, messages), nil
}
