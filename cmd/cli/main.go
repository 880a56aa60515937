package main

import (
	"os"

	"github.com/roomly-dev/roomly/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
