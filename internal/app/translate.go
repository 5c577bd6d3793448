package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"horse.fit/mtroute/internal/cli"
	"horse.fit/mtroute/internal/translation"
)

func runTranslate(args []string) int {
	fs := flag.NewFlagSet("translate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 2*time.Minute, "Command timeout")
	target := fs.String("target", "", "Target language (for example: el, en, zh)")
	source := fs.String("source", "auto", "Source language, or auto to detect it")
	maxNewTokens := fs.Int("max-new-tokens", 0, "Generation bound per hop (0 uses DEFAULT_MAX_NEW_TOKENS)")
	debug := fs.Bool("debug", false, "Include the debug trace in the output")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	text := commandText(fs.Args())
	if text == "" {
		fmt.Fprintln(os.Stderr, "translate requires the text to translate")
		printTranslateUsage()
		return 2
	}
	if *target == "" {
		fmt.Fprintln(os.Stderr, "--target is required")
		printTranslateUsage()
		return 2
	}

	deps, err := loadRuntime(envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	result, err := deps.orchestrator.Execute(ctx, translation.Request{
		Text:         text,
		Source:       *source,
		Target:       *target,
		MaxNewTokens: *maxNewTokens,
		Debug:        *debug,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Translate failed: %v\n", err)
		return translateExitCode(err)
	}

	if err := printJSON(result); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
		return 1
	}
	return 0
}

// translateExitCode reports caller mistakes as usage errors.
func translateExitCode(err error) int {
	if errors.Is(err, translation.ErrValidation) || errors.Is(err, translation.ErrUnsupportedRoute) {
		return 2
	}
	return 1
}

func printTranslateUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  mtroute translate --target <lang> [--source auto] [--max-new-tokens N] [--debug] [--env .env] [--timeout 2m] <text>")
}
