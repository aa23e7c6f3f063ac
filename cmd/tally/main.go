// Command tally tracks todos by category.
package main

import (
	"os"

	"github.com/Makepad-fr/tally/internal/cli"
)

func main() {
	os.Exit(cli.Main())
}
