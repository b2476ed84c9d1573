// Command leadengine runs scoring and forecasting batches from the shell.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

func main() {
	if err := Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
		os.Exit(1)
	}
}
