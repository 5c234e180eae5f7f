package main

import (
	"os"

	"github.com/corey/symdex/cmd/symdex/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
