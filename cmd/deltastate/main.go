package main

import (
	"fmt"
	"os"

	"github.com/roach88/deltastate/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "deltastate:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
