package main

import (
	"os"

	"github.com/copyleftdev/annealer/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
