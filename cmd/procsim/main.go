// Command procsim boots process management domains from a configuration file
// and drives scheduler dispatch cycles against them.
package main

import (
	"fmt"
	"os"

	"github.com/viant/procman/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "procsim: %v\n", err)
		os.Exit(1)
	}
}
