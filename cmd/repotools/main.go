// Command repotools inspects remote repositories through agent-callable tools.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/ryantking/repotools/internal/cli"
	"github.com/ryantking/repotools/internal/exitcode"
	"github.com/ryantking/repotools/internal/output"
)

func main() {
	// .env is optional; variables already set in the environment win.
	_ = godotenv.Load() //nolint:errcheck // missing .env is fine

	if err := cli.Execute(); err != nil {
		output.Error(err)
		os.Exit(exitcode.FromError(err))
	}
}
