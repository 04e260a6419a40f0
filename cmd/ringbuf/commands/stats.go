package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/haivivi/ringbuf/pkg/cli"
	"github.com/haivivi/ringbuf/pkg/ringbuf"
)

var (
	statsCapacity int
	statsFill     int
	statsClose    bool
	statsFormat   string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the state of a ring after a fill",
	Long: `Create a ring, push --fill elements into it and print its state.

Examples:
  ringbuf stats --capacity 8 --fill 5 --format panel
  ringbuf stats --capacity 8 --fill 8 --close --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		capacity, err := capacityFlag(cmd, statsCapacity)
		if err != nil {
			return err
		}
		format := statsFormat
		if format == "" {
			cfg, err := GetConfig()
			if err != nil {
				return err
			}
			format = cfg.Format
		}
		f, err := cli.ParseFormat(format)
		if err != nil {
			return err
		}
		return runStats(cmd.OutOrStdout(), capacity, statsFill, statsClose, f)
	},
}

func init() {
	statsCmd.Flags().IntVarP(&statsCapacity, "capacity", "c", 0, "ring capacity (default from config)")
	statsCmd.Flags().IntVar(&statsFill, "fill", 0, "number of elements to push")
	statsCmd.Flags().BoolVar(&statsClose, "close", false, "close the ring after filling it")
	statsCmd.Flags().StringVarP(&statsFormat, "format", "o", "", "output format: yaml, json, panel (default from config)")
	rootCmd.AddCommand(statsCmd)
}

func runStats(out io.Writer, capacity, fill int, closeRing bool, format cli.OutputFormat) error {
	if fill < 0 {
		return fmt.Errorf("fill must not be negative, got %d", fill)
	}
	p, c := ringbuf.NewBytes(capacity)
	pushed, err := p.PushSlice(make([]byte, fill))
	if err != nil {
		return err
	}
	if pushed < fill {
		cli.PrintVerbose(IsVerbose(), "ring full after %d of %d elements", pushed, fill)
	}
	if closeRing {
		p.Close()
	}
	return cli.Output(c.Stats(), cli.OutputOptions{
		Format: format,
		Title:  fmt.Sprintf("ring (capacity %d)", capacity),
		Writer: out,
	})
}
