package main

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/Propfend/poet"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// cliConfig is the merged result of flags, POET_* variables and poet.toml
type cliConfig struct {
	Root            string `mapstructure:"root"`
	PromptsDir      string `mapstructure:"prompts_dir"`
	AssetBaseURL    string `mapstructure:"asset_base_url"`
	LinkBaseURL     string `mapstructure:"link_base_url"`
	PostgresDSN     string `mapstructure:"postgres_dsn"`
	Workers         int    `mapstructure:"workers"`
	StrictArguments bool   `mapstructure:"strict_arguments"`
	UntaggedRole    string `mapstructure:"untagged_role"`
	LogJSON         bool   `mapstructure:"log_json"`
	Verbose         bool   `mapstructure:"verbose"`
}

// persistentFlags registers the flags every command shares and binds them
// to v under their configuration keys
func persistentFlags(cmd *cobra.Command, v *viper.Viper, configPath *string) {
	flags := cmd.PersistentFlags()
	flags.StringVar(configPath, FlagConfig, "", HelpFlagConfig)
	flags.String(FlagRoot, ConfigDefaultRoot, HelpFlagRoot)
	flags.String(FlagPromptsDir, poet.DefaultDocumentsRoot, HelpFlagPromptsDir)
	flags.String(FlagAssetBaseURL, "", HelpFlagAssetBase)
	flags.String(FlagLinkBaseURL, poet.DefaultLinkBaseURL, HelpFlagLinkBase)
	flags.String(FlagPostgresDSN, "", HelpFlagPostgresDSN)
	flags.Int(FlagWorkers, 0, HelpFlagWorkers)
	flags.Bool(FlagStrictArguments, false, HelpFlagStrict)
	flags.String(FlagUntaggedRole, "", HelpFlagUntagged)
	flags.Bool(FlagLogJSON, false, HelpFlagLogJSON)
	flags.BoolP(FlagVerbose, FlagVerboseShort, false, HelpFlagVerbose)

	bindings := map[string]string{
		ConfigKeyRoot:            FlagRoot,
		ConfigKeyPromptsDir:      FlagPromptsDir,
		ConfigKeyAssetBaseURL:    FlagAssetBaseURL,
		ConfigKeyLinkBaseURL:     FlagLinkBaseURL,
		ConfigKeyPostgresDSN:     FlagPostgresDSN,
		ConfigKeyWorkers:         FlagWorkers,
		ConfigKeyStrictArguments: FlagStrictArguments,
		ConfigKeyUntaggedRole:    FlagUntaggedRole,
		ConfigKeyLogJSON:         FlagLogJSON,
		ConfigKeyVerbose:         FlagVerbose,
	}
	for key, flag := range bindings {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}

	v.SetEnvPrefix(ConfigEnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
}

// loadConfig reads the optional config file and decodes the merged
// settings. An explicit --config file must exist; the default one may not.
func loadConfig(v *viper.Viper, configPath string) (*cliConfig, error) {
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(ConfigFileName)
		v.SetConfigType(ConfigFileType)
		v.AddConfigPath(v.GetString(ConfigKeyRoot))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, usageError(ErrMsgConfigRead, err)
		}
	}

	var cfg cliConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, usageError(ErrMsgConfigDecode, err)
	}
	return &cfg, nil
}

// DocumentsPath returns the documents directory on disk
func (c *cliConfig) DocumentsPath() string {
	return filepath.Join(c.Root, c.PromptsDir)
}

// newLogger writes to w; the level is Warn unless verbose
func newLogger(cfg *cliConfig, w io.Writer) *zap.Logger {
	level := zapcore.WarnLevel
	if cfg.Verbose {
		level = zapcore.DebugLevel
	}

	var encoder zapcore.Encoder
	if cfg.LogJSON {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}
	return zap.New(zapcore.NewCore(encoder, zapcore.AddSync(w), level))
}

func newBuilder(cfg *cliConfig, logger *zap.Logger) (*poet.Builder, error) {
	opts := []poet.Option{
		poet.WithLogger(logger),
		poet.WithDocumentsRoot(cfg.PromptsDir),
		poet.WithStrictArguments(cfg.StrictArguments),
		poet.WithLinkBaseURL(cfg.LinkBaseURL),
	}
	if cfg.Workers > 0 {
		opts = append(opts, poet.WithWorkers(cfg.Workers))
	}
	if cfg.UntaggedRole != "" {
		opts = append(opts, poet.WithUntaggedRole(poet.Role(cfg.UntaggedRole)))
	}
	if cfg.AssetBaseURL != "" {
		opts = append(opts, poet.WithAssetResolver(poet.BaseURLAssetResolver{BaseURL: cfg.AssetBaseURL}))
	}

	builder, err := poet.NewBuilder(opts...)
	if err != nil {
		return nil, usageError(ErrMsgBuilderInvalid, err)
	}
	return builder, nil
}

// openSource returns the configured document source and a release func
func openSource(ctx context.Context, cfg *cliConfig, logger *zap.Logger) (poet.DocumentSource, func(), error) {
	if cfg.PostgresDSN == "" {
		return poet.NewFilesystemSource(cfg.Root, cfg.PromptsDir), func() {}, nil
	}

	pgConfig := poet.DefaultPostgresConfig()
	pgConfig.ConnectionString = cfg.PostgresDSN
	pgConfig.AutoMigrate = true
	pgConfig.Logger = logger

	source, err := poet.NewPostgresSource(ctx, pgConfig)
	if err != nil {
		return nil, nil, commandError(ExitCodeInputError, ErrMsgSourceOpen, err)
	}
	return source, func() { _ = source.Close() }, nil
}

// session bundles what every command needs after configuration
type session struct {
	cfg     *cliConfig
	logger  *zap.Logger
	builder *poet.Builder
	source  poet.DocumentSource
	release func()
}

func (a *app) openSession(ctx context.Context) (*session, error) {
	cfg, err := loadConfig(a.viper, a.configPath)
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg, a.stderr)

	builder, err := newBuilder(cfg, logger)
	if err != nil {
		return nil, err
	}
	source, release, err := openSource(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, logger: logger, builder: builder, source: source, release: release}, nil
}

func (s *session) Close() {
	s.release()
	_ = s.logger.Sync()
}

// documents reads every candidate document from the source
func (s *session) documents(ctx context.Context) ([]poet.SourceDocument, error) {
	docs, err := s.source.Documents(ctx)
	if err != nil {
		return nil, commandError(ExitCodeInputError, ErrMsgSourceOpen, err)
	}
	return docs, nil
}

// build compiles the source; any document failure fails the command
func (s *session) build(ctx context.Context) (*poet.ControllerCollection, error) {
	docs, err := s.documents(ctx)
	if err != nil {
		return nil, err
	}
	collection, err := s.builder.BuildDocuments(ctx, docs)
	if err != nil {
		return nil, commandError(ExitCodeValidationError, ErrMsgBuildFailed, err)
	}
	return collection, nil
}
