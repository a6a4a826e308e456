package main

import (
	"os"

	"github.com/relief-network/reliefd/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
