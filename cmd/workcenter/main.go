package main

import (
	"os"

	"github.com/stickspnw/sticks-work-center/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
