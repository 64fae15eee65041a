package main

import (
	"os"

	"github.com/zeta-labs/riemann/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
