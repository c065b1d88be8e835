// Package main provides the catalognav command.
package main

import (
	"os"

	"github.com/leapstack-labs/catalognav/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
