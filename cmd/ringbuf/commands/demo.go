package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/haivivi/ringbuf/pkg/cli"
	"github.com/haivivi/ringbuf/pkg/executor"
	"github.com/haivivi/ringbuf/pkg/framing"
	"github.com/haivivi/ringbuf/pkg/ringbuf"
)

// demoDefaultCapacity is small enough that the two default lines do not fit
// at once, so both tasks have to suspend. The config capacity does not apply.
const demoDefaultCapacity = 13

var (
	demoCapacity int
	demoLines    []string
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a producer and a consumer task on the cooperative executor",
	Long: `Send lines from one task to another through a small byte ring.

Both tasks run on a single goroutine. Whenever the ring is full the sending
task suspends until the receiving task has drained some bytes, and the other
way round. Use -v to see every suspension.

Examples:
  ringbuf demo
  ringbuf demo --capacity 4 --line "a longer line than the ring" -v`,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := runDemo(cmd.OutOrStdout(), demoCapacity, demoLines, slog.Default())
		if err != nil {
			return err
		}
		title := fmt.Sprintf("ring after demo (%d suspensions)", res.Suspensions)
		return cli.Output(res.Stats, cli.OutputOptions{
			Format: cli.FormatPanel,
			Title:  title,
			Writer: cmd.OutOrStdout(),
		})
	},
}

func init() {
	demoCmd.Flags().IntVarP(&demoCapacity, "capacity", "c", demoDefaultCapacity, "ring capacity in bytes")
	demoCmd.Flags().StringArrayVar(&demoLines, "line", []string{"Hello World", "Second line"}, "line to send (repeatable)")
	rootCmd.AddCommand(demoCmd)
}

type demoResult struct {
	Received    []string
	Suspensions int
	Stats       ringbuf.Stats
}

// runDemo sends lines from one executor task to another and prints every
// received line to out.
func runDemo(out io.Writer, capacity int, lines []string, log *slog.Logger) (demoResult, error) {
	if err := checkCapacity(capacity); err != nil {
		return demoResult{}, err
	}
	p, c := ringbuf.NewBytes(capacity)
	fw := framing.NewWriter[string](p, framing.LinesCodec{})
	fr := framing.NewReader[string](c, framing.LinesCodec{})
	ex := executor.New(executor.WithLogger(log))

	var (
		res     demoResult
		taskErr error
		sent    int
	)
	ex.Spawn("send", executor.TaskFunc(func(w ringbuf.Waker) bool {
		for {
			st, err := fw.PollReady(w)
			if err != nil {
				taskErr = err
				return true
			}
			if st == ringbuf.Pending {
				res.Suspensions++
				log.Debug("demo: sender suspended", "sent", sent)
				return false
			}
			if sent == len(lines) {
				st, err := fw.PollClose(w)
				if err != nil {
					taskErr = err
					return true
				}
				return st == ringbuf.Ready
			}
			if err := fw.StartSend(lines[sent]); err != nil {
				taskErr = err
				return true
			}
			sent++
		}
	}))
	ex.Spawn("receive", executor.TaskFunc(func(w ringbuf.Waker) bool {
		for {
			m, st, err := fr.PollNext(w)
			if err != nil {
				taskErr = err
				return true
			}
			switch st {
			case ringbuf.Pending:
				res.Suspensions++
				log.Debug("demo: receiver suspended", "received", len(res.Received))
				return false
			case ringbuf.Done:
				return true
			}
			res.Received = append(res.Received, m)
			fmt.Fprintf(out, "received: %s\n", m)
		}
	}))

	err := ex.RunUntilStalled()
	if taskErr != nil {
		return res, taskErr
	}
	if err != nil {
		return res, err
	}
	res.Stats = c.Stats()
	return res, nil
}
