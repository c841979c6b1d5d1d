// Command mixlab builds, audits and queries reaction tables.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/mixlab/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "mixlab:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
