package app

import (
	"fmt"
	"os"
	"strings"
)

// Run executes the CLI command and returns a process exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "help", "--help", "-h":
		printUsage()
		return 0
	case "serve":
		return runServe(args[1:])
	case "translate":
		return runTranslate(args[1:])
	case "detect":
		return runDetect(args[1:])
	case "routes":
		return runRoutes(args[1:])
	case "hash-token":
		return runHashToken(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "mtroute CLI")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  mtroute <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  serve      Start the translation HTTP server")
	fmt.Fprintln(os.Stderr, "  translate  Translate one text and print the result JSON")
	fmt.Fprintln(os.Stderr, "  detect     Print the detected language of a text")
	fmt.Fprintln(os.Stderr, "  routes     List the known translation routes")
	fmt.Fprintln(os.Stderr, "  hash-token Print a bcrypt hash for DEBUG_MODEL_TOKEN_HASH")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Use \"mtroute <command> -h\" for command-specific flags.")
}
