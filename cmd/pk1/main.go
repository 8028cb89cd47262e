// Command pk1 manages learner profiles and their audit ledgers.
package main

import (
	"fmt"
	"os"

	"github.com/imacdo2212/EdTech/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
