package poet

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Role is the speaker of a message
type Role string

// Default roles
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// PromptMessage is one role-tagged message of a prompt response
type PromptMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// roleMarkerPattern matches a **token**: marker at the start of a block
var roleMarkerPattern = regexp.MustCompile(`^\s*\*\*([^*\n]+)\*\*\s*:[ \t]*`)

// MessageAssembler partitions the rendered blocks of a document into
// role-tagged messages. It is stateless and safe for concurrent use.
type MessageAssembler struct {
	interpreter *Interpreter
	markers     map[string]Role
	untagged    Role
	logger      *zap.Logger
}

// NewMessageAssembler creates an assembler. It honors WithRoleMarkers,
// WithUntaggedRole and WithLogger; other options are ignored.
func NewMessageAssembler(interpreter *Interpreter, opts ...Option) *MessageAssembler {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return newMessageAssembler(interpreter, cfg)
}

func newMessageAssembler(interpreter *Interpreter, cfg *config) *MessageAssembler {
	markers := make(map[string]Role, len(cfg.roleMarkers))
	for _, role := range cfg.roleMarkers {
		markers[strings.ToLower(string(role))] = role
	}
	return &MessageAssembler{
		interpreter: interpreter,
		markers:     markers,
		untagged:    cfg.untaggedRole,
		logger:      cfg.logger,
	}
}

// Assemble renders blocks in order. A role marker flushes the pending chunk
// under the previous role and switches roles; empty chunks are dropped.
// Content before the first marker is an error unless an untagged role is
// configured.
func (a *MessageAssembler) Assemble(ctx context.Context, blocks []Block, scope *Scope) ([]PromptMessage, error) {
	var messages []PromptMessage
	var pending []string
	var role Role
	hasRole := false

	flush := func() {
		if len(pending) == 0 {
			return
		}
		messages = append(messages, PromptMessage{Role: role, Content: strings.Join(pending, BlockSeparator)})
		pending = nil
	}

	for _, block := range blocks {
		content := block.Content
		if block.Kind == BlockParagraph {
			if marker, rest, ok := a.splitMarker(content); ok {
				flush()
				role = marker
				hasRole = true
				content = rest
			}
		}

		text, err := a.interpreter.Render(ctx, content, scope)
		if err != nil {
			return nil, err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		if !hasRole {
			if a.untagged == "" {
				return nil, NewNoCurrentRoleError(block.Line)
			}
			role = a.untagged
			hasRole = true
		}
		pending = append(pending, text)
	}
	flush()

	return messages, nil
}

// splitMarker detects a role marker in the leading text of a block and
// returns the block without it. The input tree is never modified.
func (a *MessageAssembler) splitMarker(group *TagElement) (Role, *TagElement, bool) {
	if group == nil || len(group.Children) == 0 {
		return "", nil, false
	}
	first, ok := group.Children[0].(*TextNode)
	if !ok {
		return "", nil, false
	}

	match := roleMarkerPattern.FindStringSubmatch(first.Text)
	if match == nil {
		return "", nil, false
	}
	role, ok := a.markers[strings.ToLower(strings.TrimSpace(match[1]))]
	if !ok {
		return "", nil, false
	}

	children := make([]TagNode, 0, len(group.Children))
	if rest := first.Text[len(match[0]):]; rest != "" {
		children = append(children, &TextNode{Text: rest})
	}
	children = append(children, group.Children[1:]...)
	return role, NewGroup(children...), true
}
