package app

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"horse.fit/mtroute/internal/auth"
)

func runHashToken(args []string) int {
	fs := flag.NewFlagSet("hash-token", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	fromStdin := fs.Bool("stdin", false, "Read the token from stdin instead of the arguments")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	token := commandText(fs.Args())
	if *fromStdin {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintf(os.Stderr, "Failed to read token: %v\n", err)
			return 1
		}
		token = strings.TrimSpace(line)
	}
	if token == "" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  mtroute hash-token [--stdin] <token>")
		return 2
	}

	hash, err := auth.HashToken(token)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to hash token: %v\n", err)
		return 1
	}
	fmt.Println(hash)
	return 0
}
