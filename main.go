package main

import (
	"os"

	"github.com/twosidesofai/job-hunter/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
