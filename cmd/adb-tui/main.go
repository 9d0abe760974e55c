package main

import (
	"os"

	"github.com/Melal1/adb-tui/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
