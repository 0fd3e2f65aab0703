package main

import (
	"os"

	"habitmap/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
