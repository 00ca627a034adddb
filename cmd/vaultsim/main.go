package main

import (
	"os"

	"github.com/openyield/vaultsim/cmd/vaultsim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
