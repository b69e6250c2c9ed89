// Command vsactl computes average shear-wave velocities from the command line.
package main

import (
	"context"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
