package main

// Command names
const (
	CmdNameServe    = "serve"
	CmdNameList     = "list"
	CmdNameGet      = "get"
	CmdNameValidate = "validate"
	CmdNameVersion  = "version"
)

// Flag names
const (
	FlagConfig          = "config"
	FlagRoot            = "root"
	FlagPromptsDir      = "prompts-dir"
	FlagAssetBaseURL    = "asset-base-url"
	FlagLinkBaseURL     = "link-base-url"
	FlagPostgresDSN     = "postgres-dsn"
	FlagWorkers         = "workers"
	FlagStrictArguments = "strict-arguments"
	FlagUntaggedRole    = "untagged-role"
	FlagLogJSON         = "log-json"
	FlagVerbose         = "verbose"
	FlagWatch           = "watch"
	FlagJSON            = "json"
	FlagArg             = "arg"
)

// Flag names - short form
const (
	FlagVerboseShort = "v"
	FlagArgShort     = "a"
)

// Configuration keys, also the POET_* environment variable suffixes
const (
	ConfigKeyRoot            = "root"
	ConfigKeyPromptsDir      = "prompts_dir"
	ConfigKeyAssetBaseURL    = "asset_base_url"
	ConfigKeyLinkBaseURL     = "link_base_url"
	ConfigKeyPostgresDSN     = "postgres_dsn"
	ConfigKeyWorkers         = "workers"
	ConfigKeyStrictArguments = "strict_arguments"
	ConfigKeyUntaggedRole    = "untagged_role"
	ConfigKeyLogJSON         = "log_json"
	ConfigKeyVerbose         = "verbose"
)

// Configuration sources
const (
	ConfigEnvPrefix   = "POET"
	ConfigFileName    = "poet"
	ConfigFileType    = "toml"
	ConfigDefaultRoot = "."
)

// Exit codes
const (
	ExitCodeSuccess         = 0
	ExitCodeError           = 1
	ExitCodeUsageError      = 2
	ExitCodeValidationError = 3
	ExitCodeInputError      = 4
)

// Error messages - ALL must be constants
const (
	ErrMsgCommandFailed     = "command failed"
	ErrMsgConfigRead        = "failed to read configuration"
	ErrMsgConfigDecode      = "invalid configuration"
	ErrMsgSourceOpen        = "failed to open document source"
	ErrMsgBuildFailed       = "prompt build failed"
	ErrMsgBuilderInvalid    = "invalid builder options"
	ErrMsgRequestFailed     = "prompt request failed"
	ErrMsgInvalidArgument   = "invalid --arg, expected key=value"
	ErrMsgWatchUnsupported  = "--watch requires a filesystem document source"
	ErrMsgWatchFailed       = "failed to watch documents"
	ErrMsgServeFailed       = "MCP server stopped"
	ErrMsgJSONMarshalFailed = "failed to marshal JSON"
)

// CLILong is the root command's long help
const CLILong = `poet compiles a directory of markdown prompt documents and serves them
as MCP prompts. Settings come from flags, POET_* environment variables and
an optional poet.toml in the project root.`

// Help text
const (
	CLIName             = "poet"
	CLIShort            = "Serve markdown prompt documents over MCP"
	HelpServeShort      = "Serve prompts over MCP on stdin/stdout"
	HelpListShort       = "List the prompts a build produces"
	HelpGetShort        = "Render one prompt with arguments"
	HelpGetUse          = "get <name>"
	HelpValidateShort   = "Build every document and report failures"
	HelpVersionShort    = "Show version information"
	HelpFlagConfig      = "config file (default: <root>/poet.toml)"
	HelpFlagRoot        = "project root directory"
	HelpFlagPromptsDir  = "documents directory inside the root"
	HelpFlagAssetBase   = "base URL for Asset components"
	HelpFlagLinkBase    = "base URL for Link components"
	HelpFlagPostgresDSN = "read documents from PostgreSQL instead of the filesystem"
	HelpFlagWorkers     = "compile workers (0 = GOMAXPROCS)"
	HelpFlagStrict      = "reject undeclared request arguments"
	HelpFlagUntagged    = "role for content before the first role marker"
	HelpFlagLogJSON     = "log JSON to stderr"
	HelpFlagVerbose     = "debug logging"
	HelpFlagWatch       = "rebuild prompts when documents change"
	HelpFlagJSON        = "print JSON"
	HelpFlagArg         = "prompt argument as key=value (repeatable)"
)

// Output formats
const (
	FmtErrorCause       = "%s: %v"
	FmtListEntry        = "%s\t%s\n"
	FmtListArgument     = "    %s%s\t%s\n"
	FmtRequiredMarker   = "*"
	FmtMessageHeader    = "%s:\n"
	FmtMessageBody      = "%s\n\n"
	FmtValidateFailure  = "%s %s\n    %v\n"
	FmtValidateSuccess  = "%s %d prompt(s)\n"
	FmtValidateSummary  = "%d of %d document(s) failed\n"
	StatusOK            = "OK"
	StatusFail          = "FAIL"
	VersionTextTemplate = "poet version %s\nCommit: %s\nBranch: %s\nBuilt: %s\nGo: %s\n"
	VersionUnknown      = "unknown"
	VersionsFileName    = "versions.yaml"
	JSONIndent          = "  "
	ArgumentSeparator   = "="
)
