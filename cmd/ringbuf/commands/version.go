package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haivivi/ringbuf/cmd/ringbuf/internal/build"
	"github.com/haivivi/ringbuf/pkg/cli"
)

var versionFormat string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		info := build.Current()
		if versionFormat != "" {
			format, err := cli.ParseFormat(versionFormat)
			if err != nil {
				return err
			}
			return cli.Output(info, cli.OutputOptions{Format: format, Writer: out})
		}

		fmt.Fprintln(out, info)
		if IsVerbose() {
			fmt.Fprintf(out, "  go:     %s\n", info.Go)
			if cfg, err := GetConfig(); err == nil {
				fmt.Fprintf(out, "  config: %s\n", cfg.Path)
			} else {
				fmt.Fprintf(out, "  config: (unavailable: %v)\n", err)
			}
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().StringVarP(&versionFormat, "format", "o", "", "output format (yaml, json)")
	rootCmd.AddCommand(versionCmd)
}
