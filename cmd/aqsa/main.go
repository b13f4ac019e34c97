package main

import (
	"context"
	"os"

	"alaqsa/internal/transports/cli"
	"alaqsa/pkg/logger"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := context.Background()
	root := cli.New(buildVersion())
	if err := root.ExecuteContext(ctx); err != nil {
		lg := logger.New("error", os.Stderr)
		lg.WithError(err).Error("command failed")
		os.Exit(1)
	}
}

func buildVersion() string {
	v := version
	if commit != "" {
		v += " (" + commit + ")"
	}
	if date != "" {
		v += " " + date
	}
	return v
}
