package commands

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/haivivi/ringbuf/pkg/cli"
	"github.com/haivivi/ringbuf/pkg/ringbuf"
)

var replCapacity int

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Push, pop, poll and close a ring interactively",
	Long: `Drive a ring of strings by hand and watch the wake protocol.

poll and send register a waker that prints a line when it fires, so you can
see which operation wakes which side.

Example session:
  ringbuf> poll
  pending (reader waker registered)
  ringbuf> push hello
  [wake] reader
  ringbuf> pop
  hello`,
	RunE: func(cmd *cobra.Command, args []string) error {
		capacity, err := capacityFlag(cmd, replCapacity)
		if err != nil {
			return err
		}
		return runREPL(newSession(capacity, cmd.OutOrStdout()))
	},
}

func init() {
	replCmd.Flags().IntVarP(&replCapacity, "capacity", "c", 0, "ring capacity in elements (default from config)")
	rootCmd.AddCommand(replCmd)
}

// errQuit ends the REPL loop.
var errQuit = errors.New("quit")

type replCommand struct {
	handler func(args []string) error
	help    string
}

// session is a ring of strings driven by text commands.
type session struct {
	p   *ringbuf.Producer[string]
	c   *ringbuf.Consumer[string]
	out io.Writer

	commands map[string]replCommand
}

func newSession(capacity int, out io.Writer) *session {
	p, c := ringbuf.New[string](capacity)
	s := &session{p: p, c: c, out: out, commands: make(map[string]replCommand)}

	s.addCommand("push", s.push, "push <value>... - add values without blocking")
	s.addCommand("pop", s.pop, "pop [n] - remove up to n values without blocking")
	s.addCommand("poll", s.poll, "poll - poll the reader, registering a printing waker")
	s.addCommand("send", s.send, "send <value> - poll the writer, registering a printing waker")
	s.addCommand("close", s.close, "close - close the writing side")
	s.addCommand("stats", s.stats, "stats - show the ring state")
	s.addCommand("help", s.help, "help - show this message")
	s.addCommand("exit", func([]string) error { return errQuit }, "exit - leave the REPL")
	return s
}

func (s *session) addCommand(name string, handler func([]string) error, help string) {
	s.commands[name] = replCommand{handler: handler, help: help}
}

// Exec runs one input line. It returns errQuit when the session should end.
func (s *session) Exec(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, ok := s.commands[fields[0]]
	if !ok {
		fmt.Fprintf(s.out, "Invalid command: %s\n", fields[0])
		return s.help(nil)
	}
	return cmd.handler(fields[1:])
}

func (s *session) waker(side string) ringbuf.Waker {
	return ringbuf.WakerFunc(func() {
		fmt.Fprintf(s.out, "[wake] %s\n", side)
	})
}

func (s *session) push(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: push <value>...")
	}
	n, err := s.p.PushSlice(args)
	if err != nil {
		return err
	}
	if n < len(args) {
		fmt.Fprintf(s.out, "pushed %d of %d (ring full)\n", n, len(args))
		return nil
	}
	fmt.Fprintf(s.out, "pushed %d\n", n)
	return nil
}

func (s *session) pop(args []string) error {
	n := 1
	if len(args) > 0 {
		if _, err := fmt.Sscan(args[0], &n); err != nil || n < 1 {
			return fmt.Errorf("invalid count %q", args[0])
		}
	}
	buf := make([]string, n)
	got := s.c.PopSlice(buf)
	if got == 0 {
		if s.c.IsClosed() {
			fmt.Fprintln(s.out, "(closed and drained)")
		} else {
			fmt.Fprintln(s.out, "(empty)")
		}
		return nil
	}
	for _, v := range buf[:got] {
		fmt.Fprintln(s.out, v)
	}
	return nil
}

func (s *session) poll([]string) error {
	v, st := s.c.PollNext(s.waker("reader"))
	switch st {
	case ringbuf.Ready:
		fmt.Fprintln(s.out, v)
	case ringbuf.Pending:
		fmt.Fprintln(s.out, "pending (reader waker registered)")
	case ringbuf.Done:
		fmt.Fprintln(s.out, "done")
	}
	return nil
}

func (s *session) send(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: send <value>")
	}
	st, err := s.p.PollSend(s.waker("writer"), args[0])
	if err != nil {
		return err
	}
	if st == ringbuf.Pending {
		fmt.Fprintln(s.out, "pending (writer waker registered)")
		return nil
	}
	fmt.Fprintln(s.out, "sent")
	return nil
}

func (s *session) close([]string) error {
	if err := s.p.Close(); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "closed")
	return nil
}

func (s *session) stats([]string) error {
	return cli.Output(s.c.Stats(), cli.OutputOptions{Format: cli.FormatYAML, Writer: s.out})
}

func (s *session) help([]string) error {
	names := make([]string, 0, len(s.commands))
	for name := range s.commands {
		names = append(names, name)
	}
	slices.Sort(names)

	var sb strings.Builder
	sb.WriteString("Commands\n")
	for _, name := range names {
		fmt.Fprintf(&sb, "\t%s\n", s.commands[name].help)
	}
	_, err := io.WriteString(s.out, sb.String())
	return err
}

func (s *session) completer() *readline.PrefixCompleter {
	items := make([]readline.PrefixCompleterInterface, 0, len(s.commands))
	for name := range s.commands {
		items = append(items, readline.PcItem(name))
	}
	return readline.NewPrefixCompleter(items...)
}

func runREPL(s *session) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "ringbuf> ",
		AutoComplete:    s.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("start readline: %w", err)
	}
	defer rl.Close()
	s.out = rl.Stdout()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := s.Exec(line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			fmt.Fprintf(s.out, "Error: %v\n", err)
		}
	}
}
