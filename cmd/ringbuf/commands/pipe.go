package commands

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/itchyny/gojq"
	"github.com/spf13/cobra"

	"github.com/haivivi/ringbuf/cmd/ringbuf/internal/config"
	"github.com/haivivi/ringbuf/pkg/cli"
	"github.com/haivivi/ringbuf/pkg/framing"
	"github.com/haivivi/ringbuf/pkg/ringbuf"
)

var (
	pipeCapacity int
	pipeCodec    string
	pipeJQ       string
)

var pipeCmd = &cobra.Command{
	Use:   "pipe",
	Short: "Stream stdin to stdout through a bounded ring",
	Long: `Copy stdin to stdout through a fixed-capacity byte ring.

A reader goroutine feeds the ring and blocks while it is full; the writer
side drains it frame by frame. With --jq every line is parsed as JSON, run
through the query, and each result is printed as one JSON line.

With --codec msgpack each JSON input line is carried through the ring as a
length-prefixed msgpack frame and printed back as JSON.

Examples:
  seq 1 100000 | ringbuf pipe --capacity 16 | tail -1
  cat events.jsonl | ringbuf pipe --jq 'select(.level == "error") | .msg'
  cat events.jsonl | ringbuf pipe --codec msgpack -v`,
	RunE: func(cmd *cobra.Command, args []string) error {
		capacity, err := capacityFlag(cmd, pipeCapacity)
		if err != nil {
			return err
		}
		codec := pipeCodec
		if codec == "" {
			cfg, err := GetConfig()
			if err != nil {
				return err
			}
			codec = cfg.Codec
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		res, err := runPipe(ctx, os.Stdin, cmd.OutOrStdout(), pipeOptions{
			Capacity: capacity,
			Codec:    codec,
			JQ:       pipeJQ,
		})
		if err != nil {
			return err
		}
		cli.PrintVerbose(IsVerbose(), "%d bytes in, %d frames out, %s",
			res.BytesIn, res.Frames, cli.FormatRate(res.BytesIn, res.Elapsed))
		return nil
	},
}

func init() {
	pipeCmd.Flags().IntVarP(&pipeCapacity, "capacity", "c", 0, "ring capacity in bytes (default from config)")
	pipeCmd.Flags().StringVar(&pipeCodec, "codec", "", "framing codec: lines or msgpack (default from config)")
	pipeCmd.Flags().StringVar(&pipeJQ, "jq", "", "jq expression applied to each JSON frame")
	rootCmd.AddCommand(pipeCmd)
}

type pipeOptions struct {
	Capacity int
	Codec    string
	JQ       string
}

type pipeResult struct {
	BytesIn int64
	Frames  int
	Elapsed time.Duration
}

// runPipe moves in to out through a ring of opts.Capacity bytes.
func runPipe(ctx context.Context, in io.Reader, out io.Writer, opts pipeOptions) (pipeResult, error) {
	if err := checkCapacity(opts.Capacity); err != nil {
		return pipeResult{}, err
	}
	var filter *jqFilter
	if opts.JQ != "" {
		f, err := newJQFilter(opts.JQ)
		if err != nil {
			return pipeResult{}, err
		}
		filter = f
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p, c := ringbuf.NewBytes(opts.Capacity)
	bw := bufio.NewWriter(out)
	start := time.Now()

	type produced struct {
		n   int64
		err error
	}
	prodc := make(chan produced, 1)

	var (
		frames int
		err    error
	)
	switch opts.Codec {
	case config.CodecLines, "":
		go func() {
			n, err := copyIn(ctx, p, in)
			prodc <- produced{n, err}
		}()
		fr := framing.NewReader[string](c, framing.LinesCodec{})
		frames, err = drain(ctx, fr, bw, filter, func(line string) (any, bool, error) {
			if filter == nil {
				return rawLine(line), true, nil
			}
			if strings.TrimSpace(line) == "" {
				return nil, false, nil
			}
			var v any
			if err := json.Unmarshal([]byte(line), &v); err != nil {
				return nil, false, fmt.Errorf("invalid JSON line %q: %w", line, err)
			}
			return v, true, nil
		})
	case config.CodecMsgpack:
		go func() {
			n, err := encodeIn(ctx, p, in)
			prodc <- produced{n, err}
		}()
		fr := framing.NewReader[any](c, framing.MsgpackCodec[any]{})
		frames, err = drain(ctx, fr, bw, filter, func(v any) (any, bool, error) {
			return normalize(v), true, nil
		})
	default:
		return pipeResult{}, fmt.Errorf("unknown codec %q", opts.Codec)
	}
	if err != nil {
		// Keep what was already produced. The producer may be blocked on
		// in; do not wait for it.
		bw.Flush()
		return pipeResult{}, err
	}
	prod := <-prodc
	if err := bw.Flush(); err != nil {
		return pipeResult{}, err
	}
	if prod.err != nil {
		return pipeResult{}, prod.err
	}

	res := pipeResult{BytesIn: prod.n, Frames: frames, Elapsed: time.Since(start)}
	slog.Debug("pipe: done", "capacity", opts.Capacity, "codec", opts.Codec,
		"bytes", res.BytesIn, "frames", res.Frames, "elapsed", res.Elapsed)
	return res, nil
}

// copyIn copies raw bytes from in to the ring and closes it. A final line
// without a newline is terminated so the reader sees it as a whole frame.
func copyIn(ctx context.Context, p *ringbuf.Producer[byte], in io.Reader) (int64, error) {
	defer p.Close()
	buf := make([]byte, 32<<10)
	var (
		total int64
		last  byte = '\n'
	)
	for {
		n, err := in.Read(buf)
		if n > 0 {
			if _, werr := p.WriteContext(ctx, buf[:n]); werr != nil {
				return total, werr
			}
			total += int64(n)
			last = buf[n-1]
		}
		if errors.Is(err, io.EOF) {
			if last != '\n' {
				if _, werr := p.WriteContext(ctx, []byte{'\n'}); werr != nil {
					return total, werr
				}
			}
			return total, nil
		}
		if err != nil {
			return total, fmt.Errorf("read input: %w", err)
		}
	}
}

// encodeIn parses JSON lines from in and sends them as msgpack frames.
func encodeIn(ctx context.Context, p *ringbuf.Producer[byte], in io.Reader) (int64, error) {
	fw := framing.NewWriter[any](p, framing.MsgpackCodec[any]{})
	defer fw.Close()

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 64<<10), framing.DefaultMaxFrameSize)
	var total int64
	for sc.Scan() {
		line := sc.Bytes()
		total += int64(len(line)) + 1
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var v any
		if err := json.Unmarshal(line, &v); err != nil {
			return total, fmt.Errorf("invalid JSON line %q: %w", line, err)
		}
		if err := fw.Send(ctx, v); err != nil {
			return total, err
		}
	}
	if err := sc.Err(); err != nil {
		return total, fmt.Errorf("read input: %w", err)
	}
	return total, nil
}

// drain writes every frame of fr to w, through filter when set. Frames for
// which value reports false are skipped and not counted.
func drain[M any](ctx context.Context, fr *framing.Reader[M], w io.Writer, filter *jqFilter, value func(M) (any, bool, error)) (int, error) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	frames := 0
	for m, err := range fr.All(ctx) {
		if err != nil {
			return frames, err
		}
		v, ok, err := value(m)
		if err != nil {
			return frames, err
		}
		if !ok {
			continue
		}
		frames++
		if filter == nil {
			if s, ok := v.(rawLine); ok {
				if _, err := io.WriteString(w, string(s)+"\n"); err != nil {
					return frames, err
				}
				continue
			}
			if err := enc.Encode(v); err != nil {
				return frames, err
			}
			continue
		}
		if err := filter.apply(v, enc.Encode); err != nil {
			return frames, err
		}
	}
	return frames, ctx.Err()
}

// rawLine is a line passed through without JSON encoding.
type rawLine string

type jqFilter struct {
	code *gojq.Code
}

func newJQFilter(expr string) (*jqFilter, error) {
	q, err := gojq.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}
	code, err := gojq.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("compile jq expression: %w", err)
	}
	return &jqFilter{code: code}, nil
}

// apply runs the query on v and passes every result to emit.
func (f *jqFilter) apply(v any, emit func(any) error) error {
	iter := f.code.Run(v)
	for {
		out, ok := iter.Next()
		if !ok {
			return nil
		}
		if err, ok := out.(error); ok {
			var herr *gojq.HaltError
			if errors.As(err, &herr) && herr.Value() == nil {
				return nil
			}
			return fmt.Errorf("jq: %w", err)
		}
		if err := emit(out); err != nil {
			return err
		}
	}
}

// normalize converts msgpack-decoded numbers to the int and float64 values
// gojq operates on.
func normalize(v any) any {
	switch x := v.(type) {
	case int8:
		return int(x)
	case int16:
		return int(x)
	case int32:
		return int(x)
	case int64:
		return int(x)
	case uint8:
		return int(x)
	case uint16:
		return int(x)
	case uint32:
		return int(x)
	case uint64:
		return float64(x)
	case float32:
		return float64(x)
	case map[string]any:
		for k, e := range x {
			x[k] = normalize(e)
		}
		return x
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[fmt.Sprint(k)] = normalize(e)
		}
		return m
	case []any:
		for i, e := range x {
			x[i] = normalize(e)
		}
		return x
	default:
		return v
	}
}
