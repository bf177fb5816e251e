package main

import (
	"os"

	"github.com/mamadbah2/salestracker/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
