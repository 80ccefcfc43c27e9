package main

import (
	"context"
	"os"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/lehigh-university-libraries/bookrec/cmd"
)

const version = "0.1.0"

func main() {
	root := cmd.NewRootCmd()

	// fang adds completions, manpages and --version; the signals cancel cmd.Context()
	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	); err != nil {
		os.Exit(1)
	}
}
