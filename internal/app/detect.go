package app

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"horse.fit/mtroute/internal/langdetect"
)

func runDetect(args []string) int {
	fs := flag.NewFlagSet("detect", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	text := commandText(fs.Args())
	if text == "" {
		fmt.Fprintln(os.Stderr, "detect requires the text to classify")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  mtroute detect <text>")
		return 2
	}

	fmt.Println(langdetect.Detect(text))
	return 0
}
