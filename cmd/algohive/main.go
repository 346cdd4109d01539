package main

import (
	"os"

	"github.com/tsiemasilo-dev/algohive/cmd/algohive/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
