package main

import (
	"os"

	"github.com/astroforge/astro/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
