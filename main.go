package main

import (
	"os"

	"github.com/gakuroku/gakuroku/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
