package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/haivivi/ringbuf/pkg/ringbuf"
)

func TestOutput_JSON(t *testing.T) {
	var buf bytes.Buffer

	stats := ringbuf.Stats{Capacity: 4, Len: 1, Remaining: 3}
	if err := Output(stats, OutputOptions{Format: FormatJSON, Writer: &buf}); err != nil {
		t.Fatalf("Output error: %v", err)
	}

	var result map[string]any
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("Invalid JSON output: %v", err)
	}
	if result["capacity"] != float64(4) {
		t.Errorf("capacity = %v, want 4", result["capacity"])
	}
	if result["reader_waiting"] != false {
		t.Errorf("reader_waiting = %v, want false", result["reader_waiting"])
	}
}

func TestOutput_YAML(t *testing.T) {
	var buf bytes.Buffer

	stats := ringbuf.Stats{Capacity: 2, Len: 2, Closed: true}
	if err := Output(stats, OutputOptions{Format: FormatYAML, Writer: &buf}); err != nil {
		t.Fatalf("Output error: %v", err)
	}

	output := buf.String()
	for _, want := range []string{"capacity: 2", "len: 2", "closed: true"} {
		if !strings.Contains(output, want) {
			t.Errorf("Output should contain %q, got: %s", want, output)
		}
	}
}

func TestOutput_Panel(t *testing.T) {
	var buf bytes.Buffer

	stats := ringbuf.Stats{Capacity: 8, Len: 4, Remaining: 4, ReaderWaiting: true}
	if err := Output(stats, OutputOptions{Format: FormatPanel, Title: "demo", Writer: &buf}); err != nil {
		t.Fatalf("Output error: %v", err)
	}
	output := buf.String()
	for _, want := range []string{"demo", "4 / 8", "occupancy", "reader wait"} {
		if !strings.Contains(output, want) {
			t.Errorf("panel should contain %q, got:\n%s", want, output)
		}
	}
}

func TestOutput_Raw(t *testing.T) {
	var buf bytes.Buffer
	if err := Output("hello", OutputOptions{Format: FormatRaw, Writer: &buf}); err != nil {
		t.Fatalf("Output error: %v", err)
	}
	if buf.String() != "hello" {
		t.Errorf("raw output = %q", buf.String())
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", FormatYAML, false},
		{"json", FormatJSON, false},
		{"panel", FormatPanel, false},
		{"table", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
