// Package cli provides the output helpers shared by the ringbuf commands.
//
// This package includes:
//   - Output formatting (YAML, JSON, raw, and a styled stats panel)
//   - Human readable sizes and rates
//   - Print helpers for terminal messages
//
// Example usage:
//
//	_, c := ringbuf.New[string](8)
//	cli.Output(c.Stats(), cli.OutputOptions{Format: cli.FormatPanel})
package cli
