package commands

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/haivivi/ringbuf/pkg/cli"
	"github.com/haivivi/ringbuf/pkg/ringbuf"
)

func TestDemo(t *testing.T) {
	var out bytes.Buffer
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	res, err := runDemo(&out, 13, []string{"Hello World", "Second line"}, log)
	if err != nil {
		t.Fatalf("runDemo error: %v", err)
	}
	if len(res.Received) != 2 || res.Received[0] != "Hello World" || res.Received[1] != "Second line" {
		t.Fatalf("received %q", res.Received)
	}
	if res.Suspensions == 0 {
		t.Fatal("expected at least one suspension with a 13 byte ring")
	}
	if !res.Stats.Closed || res.Stats.Len != 0 {
		t.Fatalf("final stats = %+v", res.Stats)
	}
	if out.String() != "received: Hello World\nreceived: Second line\n" {
		t.Fatalf("output = %q", out.String())
	}
}

func TestDemo_InvalidCapacity(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	if _, err := runDemo(io.Discard, 0, []string{"x"}, log); err == nil {
		t.Fatal("runDemo with capacity 0 succeeded")
	}
}

func TestStats_JSON(t *testing.T) {
	var out bytes.Buffer
	if err := runStats(&out, 4, 6, true, cli.FormatJSON); err != nil {
		t.Fatalf("runStats error: %v", err)
	}
	var s ringbuf.Stats
	if err := json.Unmarshal(out.Bytes(), &s); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if s.Capacity != 4 || s.Len != 4 || s.Remaining != 0 || !s.Closed {
		t.Fatalf("stats = %+v", s)
	}
}

func TestStats_NegativeFill(t *testing.T) {
	if err := runStats(io.Discard, 4, -1, false, cli.FormatYAML); err == nil {
		t.Fatal("runStats with negative fill succeeded")
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	defer rootCmd.SetArgs(nil)
	defer rootCmd.SetOut(nil)

	if err := Execute(); err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if !bytes.Contains(out.Bytes(), []byte("ringbuf ")) {
		t.Fatalf("version output = %q", out.String())
	}
}

func TestVersionCommand_JSON(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version", "--format", "json"})
	defer rootCmd.SetArgs(nil)
	defer rootCmd.SetOut(nil)
	defer func() { versionFormat = "" }()

	if err := Execute(); err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	var info map[string]any
	if err := json.Unmarshal(out.Bytes(), &info); err != nil {
		t.Fatalf("version output is not JSON: %v\n%s", err, out.String())
	}
	if info["version"] == "" || info["platform"] == "" {
		t.Fatalf("version info = %v", info)
	}
}
