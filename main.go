package main

import (
	"os"

	"github.com/substratehq/substrate/cli"
)

func main() {
	if err := cli.RootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
