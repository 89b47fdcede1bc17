package bootstrap

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/figsearch/pkg/config"
	"github.com/papercomputeco/figsearch/pkg/credentials"
	"github.com/papercomputeco/figsearch/pkg/logger"
)

// LoadConfig layers the registry flags in keys over the environment, the
// config.toml of the resolved .figsearch/ directory and the defaults, then
// fills in the encoders' API keys.
func LoadConfig(cmd *cobra.Command, keys ...string) (*config.Config, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")

	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	config.BindRegisteredFlags(v, cmd, config.Flags, keys)
	cfg := config.FromViper(v)

	creds, err := credentials.NewStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading credentials: %w", err)
	}
	for _, enc := range []*config.EmbeddingConfig{&cfg.TextEmbedding, &cfg.ImageEmbedding} {
		if enc.APIKey, err = creds.Lookup(enc.Provider); err != nil {
			return nil, fmt.Errorf("loading credentials: %w", err)
		}
	}

	return cfg, nil
}

// NewLogger builds the CLI logger on stderr. Output is colored when stderr
// is a terminal.
func NewLogger(cmd *cobra.Command) *slog.Logger {
	debug, _ := cmd.Flags().GetBool("debug")
	return logger.New(
		logger.WithDebug(debug),
		logger.WithPretty(term.IsTerminal(int(os.Stderr.Fd()))),
		logger.WithWriter(os.Stderr),
	)
}

// AddLogFlags registers --log-format and --log-file for long running commands.
func AddLogFlags(cmd *cobra.Command) {
	cmd.Flags().String("log-format", "auto", "Console log format (auto, text, pretty, json)")
	cmd.Flags().String("log-file", "", "Also append JSON logs to this file")
}

// NewServiceLogger builds the logger for serve and watch. The console half
// follows --log-format; with --log-file every record is also appended as
// JSON to that file. The returned closer releases the file.
func NewServiceLogger(cmd *cobra.Command) (*slog.Logger, io.Closer, error) {
	debug, _ := cmd.Flags().GetBool("debug")
	formatName, _ := cmd.Flags().GetString("log-format")
	path, _ := cmd.Flags().GetString("log-file")

	format := logger.FormatText
	if formatName == "" || formatName == "auto" {
		if term.IsTerminal(int(os.Stderr.Fd())) {
			format = logger.FormatPretty
		}
	} else {
		var err error
		if format, err = logger.ParseFormat(formatName); err != nil {
			return nil, nil, err
		}
	}

	console := logger.New(
		logger.WithDebug(debug),
		logger.WithFormat(format),
		logger.WithWriter(cmd.ErrOrStderr()),
	)
	if path == "" {
		return console, nopCloser{}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	file := logger.New(
		logger.WithDebug(debug),
		logger.WithFormat(logger.FormatJSON),
		logger.WithWriter(f),
	)

	return logger.Multi(console, file), f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// EncoderFlagKeys are the registry flags selecting both encoders.
var EncoderFlagKeys = []string{
	config.FlagTextProvider,
	config.FlagTextTarget,
	config.FlagTextModel,
	config.FlagTextDims,
	config.FlagImageProv,
	config.FlagImageTarget,
	config.FlagImageModel,
	config.FlagImageDims,
}

// AddEncoderFlags registers EncoderFlagKeys on cmd with f as the targets.
func AddEncoderFlags(cmd *cobra.Command, f *config.Config) {
	config.AddStringFlag(cmd, config.Flags, config.FlagTextProvider, &f.TextEmbedding.Provider)
	config.AddStringFlag(cmd, config.Flags, config.FlagTextTarget, &f.TextEmbedding.Target)
	config.AddStringFlag(cmd, config.Flags, config.FlagTextModel, &f.TextEmbedding.Model)
	config.AddUintFlag(cmd, config.Flags, config.FlagTextDims, &f.TextEmbedding.Dimensions)
	config.AddStringFlag(cmd, config.Flags, config.FlagImageProv, &f.ImageEmbedding.Provider)
	config.AddStringFlag(cmd, config.Flags, config.FlagImageTarget, &f.ImageEmbedding.Target)
	config.AddStringFlag(cmd, config.Flags, config.FlagImageModel, &f.ImageEmbedding.Model)
	config.AddUintFlag(cmd, config.Flags, config.FlagImageDims, &f.ImageEmbedding.Dimensions)
}

// SearchFlagKeys are the registry flags holding the fusion parameters.
var SearchFlagKeys = []string{
	config.FlagTopK,
	config.FlagKEach,
	config.FlagAlpha,
	config.FlagBetaTitle,
	config.FlagBetaSur,
}

// AddSearchFlags registers SearchFlagKeys on cmd with f as the targets.
func AddSearchFlags(cmd *cobra.Command, f *config.Config) {
	config.AddIntFlag(cmd, config.Flags, config.FlagTopK, &f.Search.TopK)
	config.AddIntFlag(cmd, config.Flags, config.FlagKEach, &f.Search.KEach)
	config.AddFloatFlag(cmd, config.Flags, config.FlagAlpha, &f.Search.Alpha)
	config.AddFloatFlag(cmd, config.Flags, config.FlagBetaTitle, &f.Search.BetaTitle)
	config.AddFloatFlag(cmd, config.Flags, config.FlagBetaSur, &f.Search.BetaSur)
}
