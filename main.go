package main

import (
	"os"

	"github.com/prepforge/prepforge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
