// Command librarian serves and maintains the digital library catalog.
package main

import (
	"os"

	"github.com/custodia-labs/librarian/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
