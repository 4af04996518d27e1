//go:build !tinygo && !baremetal

// Package main provides lbmctl, a host tool that drives an LR1110 on a
// WM1110 wired to a Linux SPI header.
package main

import (
	"fmt"
	"os"
)

func main() {
	app := App()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
