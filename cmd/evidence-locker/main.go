package main

import (
	"os"

	"github.com/rcliao/evidence-locker/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
