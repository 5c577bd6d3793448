package main

import (
	"os"

	"horse.fit/mtroute/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
