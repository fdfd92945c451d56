// Package main provides the pgsteward command-line entry point.
package main

import (
	"os"

	"github.com/stewardhq/pgsteward/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
