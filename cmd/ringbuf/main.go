// Package main is the entry point for the ringbuf CLI.
//
// Usage:
//
//	ringbuf [flags] <command> [args]
//
// Commands:
//
//	pipe     - Stream stdin to stdout through a bounded ring
//	demo     - Run a producer and a consumer task on the cooperative executor
//	repl     - Push, pop, poll and close a ring interactively
//	stats    - Show the state of a ring after a fill
//	config   - Show or initialize the configuration file
//	version  - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/haivivi/ringbuf/cmd/ringbuf/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
