// Command planillactl manages the user directory of the planillas service from the terminal.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(openUserService).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
