package app

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"horse.fit/mtroute/internal/cli"
	"horse.fit/mtroute/internal/translation"
)

func runRoutes(args []string) int {
	fs := flag.NewFlagSet("routes", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	format := fs.String("output", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "routes does not accept positional arguments")
		return 2
	}

	outputFormat, err := parseOutputFormat(*format, outputFormatTable)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid format: %v\n", err)
		return 2
	}

	cfg, env, err := loadConfig(envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if env.err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", env.err)
	}
	registry, err := cfg.Registry()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build route table: %v\n", err)
		return 1
	}

	if outputFormat == outputFormatJSON {
		if err := printJSON(map[string]any{
			"routes":    registry.Routes(),
			"languages": translation.LanguageOptions(registry),
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	}

	rows := make([][]string, 0, len(registry.Routes()))
	for _, route := range registry.Routes() {
		rows = append(rows, []string{route.Label, route.Model})
	}
	if err := writeTable([]string{"route", "model"}, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render routes table: %v\n", err)
		return 1
	}
	return 0
}

func languageStrings(orchestrator *translation.Orchestrator) []string {
	codes := orchestrator.Routes().Languages()
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		out = append(out, code.String())
	}
	return out
}
