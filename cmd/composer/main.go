package main

import (
	"os"

	"github.com/xet-labs/xet-composer/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
