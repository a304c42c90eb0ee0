package poet

import "time"

// Scope binding and context map keys
const (
	ContextBinding = "context"

	ContextKeyArguments   = "arguments"
	ContextKeyFrontMatter = "front_matter"
	ContextKeyName        = "name"
	ContextKeyTitle       = "title"
	ContextKeyDescription = "description"
	ContextKeyProps       = "props"
	ContextKeyDate        = "date"
	ContextKeyLayout      = "layout"

	// ArgumentInputKey holds the raw request value of a bound argument
	ArgumentInputKey = "input"
)

// Builtin component names and their props
const (
	ComponentNameArgument = "Argument"
	ComponentNameAsset    = "Asset"
	ComponentNameLink     = "Link"

	PropName    = "name"
	PropDefault = "default"
	PropSrc     = "src"
	PropTo      = "to"
)

// Document discovery
const (
	DocumentExtension    = ".md"
	DefaultDocumentsRoot = "prompts"
	DefaultLinkBaseURL   = "prompt://"
)

// Message assembly
const (
	// BlockSeparator joins consecutive blocks of one message
	BlockSeparator = "\n\n"

	// SequenceSeparator separates items in the scalar form of a sequence
	SequenceSeparator = ", "
	// MapEntrySeparator separates a key from its value in the scalar form of a map
	MapEntrySeparator = ": "
)

// MCP prompt listing _meta keys
const (
	MCPMetaTitle     = "title"
	MCPMetaArguments = "arguments"
	MCPMetaDate      = "date"
)

// Watcher defaults
const (
	DefaultWatchDebounce = 250 * time.Millisecond
)

// Postgres source defaults
const (
	PostgresTablePrefix            = "poet_"
	PostgresDocumentsTable         = "documents"
	PostgresDefaultMaxOpenConns    = 10
	PostgresDefaultMaxIdleConns    = 2
	PostgresDefaultConnMaxLifetime = 5 * time.Minute
	PostgresDefaultQueryTimeout    = 30 * time.Second
	PostgresDriverName             = "postgres"
)

// Log messages
const (
	LogMsgComponentRegistered = "component registered"
	LogMsgComponentReplaced   = "component replaced"
	LogMsgDocumentCompiled    = "document compiled"
	LogMsgDocumentFailed      = "document failed to compile"
	LogMsgDocumentSkipped     = "document skipped"
	LogMsgBuildStart          = "build started"
	LogMsgBuildEnd            = "build finished"
	LogMsgRequestStart        = "prompt request started"
	LogMsgRequestEnd          = "prompt request finished"
	LogMsgRequestFailed       = "prompt request failed"
	LogMsgPromptRegistered    = "prompt registered"
	LogMsgPromptRemoved       = "prompt removed"
	LogMsgCollectionSwapped   = "prompt collection updated"
	LogMsgWatchStart          = "watching documents"
	LogMsgWatchEvent          = "document change detected"
	LogMsgWatchError          = "watcher error"
	LogMsgReloadFailed        = "rebuild failed, keeping previous prompts"
	LogMsgReloaded            = "prompts rebuilt"
	LogMsgPostgresConnected   = "postgres document source connected"
	LogMsgPostgresMigrated    = "postgres document schema ready"
)

// Log field names
const (
	LogFieldDocument   = "document"
	LogFieldComponent  = "component"
	LogFieldCount      = "count"
	LogFieldErrors     = "error_count"
	LogFieldWorkers    = "workers"
	LogFieldDuration   = "duration"
	LogFieldMessages   = "message_count"
	LogFieldRequestID  = "request_id"
	LogFieldPath       = "path"
	LogFieldEvent      = "event"
	LogFieldReason     = "reason"
	LogFieldPromptName = "prompt"
)

// Skip reasons
const (
	SkipReasonRenderDisabled = "render disabled"
	SkipReasonNotDocument    = "not a markdown document"
)
