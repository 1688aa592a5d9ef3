package main

import (
	"os"

	"github.com/cwbudde/ecma/cmd/ecma/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
