package app

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"horse.fit/mtroute/internal/cli"
	"horse.fit/mtroute/internal/config"
	"horse.fit/mtroute/internal/logging"
	"horse.fit/mtroute/internal/translation"
)

const (
	outputFormatTable = "table"
	outputFormatJSON  = "json"
)

// runtimeDeps is the process-wide state shared by commands that translate.
type runtimeDeps struct {
	cfg          *config.Config
	logger       zerolog.Logger
	loader       *translation.LocalLoader
	orchestrator *translation.Orchestrator
}

// envStatus is the outcome of .env loading, reported once a logger exists.
type envStatus struct {
	source cli.EnvSource
	err    error
}

func (s envStatus) log(logger zerolog.Logger) {
	if s.err != nil {
		logger.Warn().Err(s.err).Msg("environment file not loaded")
		return
	}
	logger.Debug().
		Str("env_file", s.source.Path).
		Str("origin", string(s.source.Origin)).
		Msg("environment file loaded")
}

func loadConfig(envLoader *cli.EnvLoader) (*config.Config, envStatus, error) {
	var status envStatus
	if envLoader != nil {
		status.source, status.err = envLoader.Load()
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, status, fmt.Errorf("load config: %w", err)
	}
	return cfg, status, nil
}

func loadRuntime(envLoader *cli.EnvLoader) (*runtimeDeps, error) {
	cfg, env, err := loadConfig(envLoader)
	if err != nil {
		return nil, err
	}

	logger, err := logging.NewWithFile(cfg.Environment, cfg.LogLevel, cfg.LogFileOptions())
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}
	env.log(logger)

	registry, err := cfg.Registry()
	if err != nil {
		return nil, fmt.Errorf("build route table: %w", err)
	}

	loader := translation.NewLocalLoader(cfg.LoaderOptions())
	cache := translation.NewBackendCache(loader, registry, logger)
	orchestrator := translation.NewOrchestrator(registry, cache, logger, cfg.OrchestratorOptions())

	return &runtimeDeps{
		cfg:          cfg,
		logger:       logger,
		loader:       loader,
		orchestrator: orchestrator,
	}, nil
}

func parseOutputFormat(raw, defaultFormat string) (string, error) {
	format := strings.TrimSpace(strings.ToLower(raw))
	if format == "" {
		format = strings.TrimSpace(strings.ToLower(defaultFormat))
	}
	switch format {
	case outputFormatTable, outputFormatJSON:
		return format, nil
	default:
		return "", fmt.Errorf("--format must be table or json")
	}
}

func printJSON(value any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(value)
}

func writeTable(headers []string, rows [][]string) error {
	writer := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	if _, err := fmt.Fprintln(writer, strings.Join(headers, "\t")); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(writer, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return writer.Flush()
}

// commandText joins positional arguments into the text to process.
func commandText(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
