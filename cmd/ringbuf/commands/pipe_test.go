package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/haivivi/ringbuf/cmd/ringbuf/internal/config"
)

func TestPipe_Lines(t *testing.T) {
	var out bytes.Buffer
	res, err := runPipe(context.Background(), strings.NewReader("a\nbb\nccc"), &out, pipeOptions{
		Capacity: 3,
		Codec:    config.CodecLines,
	})
	if err != nil {
		t.Fatalf("runPipe error: %v", err)
	}
	if out.String() != "a\nbb\nccc\n" {
		t.Fatalf("output = %q", out.String())
	}
	if res.Frames != 3 || res.BytesIn != 9 {
		t.Fatalf("result = %+v, want 3 frames and 9 bytes", res)
	}
}

func TestPipe_LargeInputSmallRing(t *testing.T) {
	var in strings.Builder
	for i := range 5000 {
		in.WriteString(strings.Repeat("x", i%40))
		in.WriteByte('\n')
	}
	var out bytes.Buffer
	res, err := runPipe(context.Background(), strings.NewReader(in.String()), &out, pipeOptions{Capacity: 7})
	if err != nil {
		t.Fatalf("runPipe error: %v", err)
	}
	if out.String() != in.String() {
		t.Fatal("output differs from input")
	}
	if res.Frames != 5000 {
		t.Fatalf("Frames = %d, want 5000", res.Frames)
	}
}

func TestPipe_JQ(t *testing.T) {
	in := `{"id":1,"ok":true,"msg":"<a&b>"}` + "\n" + `{"id":2,"ok":false}` + "\n"
	var out bytes.Buffer
	_, err := runPipe(context.Background(), strings.NewReader(in), &out, pipeOptions{
		Capacity: 8,
		Codec:    config.CodecLines,
		JQ:       "select(.ok) | .id, .msg",
	})
	if err != nil {
		t.Fatalf("runPipe error: %v", err)
	}
	if out.String() != "1\n\"<a&b>\"\n" {
		t.Fatalf("output = %q", out.String())
	}
}

func TestPipe_JQSkipsBlankLines(t *testing.T) {
	in := `{"a":1}` + "\n\n  \n" + `{"a":2}` + "\n"
	for _, codec := range []string{config.CodecLines, config.CodecMsgpack} {
		t.Run(codec, func(t *testing.T) {
			var out bytes.Buffer
			res, err := runPipe(context.Background(), strings.NewReader(in), &out, pipeOptions{
				Capacity: 4,
				Codec:    codec,
				JQ:       ".a",
			})
			if err != nil {
				t.Fatalf("runPipe error: %v", err)
			}
			if out.String() != "1\n2\n" {
				t.Fatalf("output = %q", out.String())
			}
			if res.Frames != 2 {
				t.Fatalf("Frames = %d, want 2", res.Frames)
			}
		})
	}
}

func TestPipe_ErrorKeepsEarlierOutput(t *testing.T) {
	in := `{"a":1}` + "\n" + `{"a":2}` + "\nnot json\n" + `{"a":3}` + "\n"
	var out bytes.Buffer
	_, err := runPipe(context.Background(), strings.NewReader(in), &out, pipeOptions{
		Capacity: 8,
		Codec:    config.CodecLines,
		JQ:       ".a",
	})
	if err == nil {
		t.Fatal("runPipe succeeded, want error")
	}
	if out.String() != "1\n2\n" {
		t.Fatalf("output = %q, want results before the bad line", out.String())
	}
}

func TestPipe_Msgpack(t *testing.T) {
	in := `{"a":1}` + "\n\n" + `{"b":[1,2]}` + "\n"
	var out bytes.Buffer
	res, err := runPipe(context.Background(), strings.NewReader(in), &out, pipeOptions{
		Capacity: 5,
		Codec:    config.CodecMsgpack,
	})
	if err != nil {
		t.Fatalf("runPipe error: %v", err)
	}
	if out.String() != "{\"a\":1}\n{\"b\":[1,2]}\n" {
		t.Fatalf("output = %q", out.String())
	}
	if res.Frames != 2 {
		t.Fatalf("Frames = %d, want 2", res.Frames)
	}
}

func TestPipe_MsgpackJQ(t *testing.T) {
	in := `{"a":1}` + "\n" + `{"b":[1,2]}` + "\n"
	var out bytes.Buffer
	_, err := runPipe(context.Background(), strings.NewReader(in), &out, pipeOptions{
		Capacity: 4,
		Codec:    config.CodecMsgpack,
		JQ:       ".b | length",
	})
	if err != nil {
		t.Fatalf("runPipe error: %v", err)
	}
	if out.String() != "0\n2\n" {
		t.Fatalf("output = %q", out.String())
	}
}

func TestPipe_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		opts pipeOptions
	}{
		{"bad capacity", "", pipeOptions{Capacity: 0}},
		{"bad codec", "", pipeOptions{Capacity: 4, Codec: "xml"}},
		{"bad jq", "", pipeOptions{Capacity: 4, JQ: ".["}},
		{"bad json line", "not json\n", pipeOptions{Capacity: 4, JQ: "."}},
		{"bad msgpack input", "{\n", pipeOptions{Capacity: 4, Codec: config.CodecMsgpack}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			if _, err := runPipe(context.Background(), strings.NewReader(tt.in), &out, tt.opts); err == nil {
				t.Fatal("runPipe succeeded, want error")
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	v := normalize(map[string]any{
		"i8":  int8(-3),
		"u16": uint16(7),
		"f32": float32(1.5),
		"arr": []any{int64(1), map[any]any{"k": uint8(2)}},
	})
	m := v.(map[string]any)
	if m["i8"] != -3 || m["u16"] != 7 || m["f32"] != 1.5 {
		t.Fatalf("normalize = %#v", m)
	}
	arr := m["arr"].([]any)
	if arr[0] != 1 || arr[1].(map[string]any)["k"] != 2 {
		t.Fatalf("normalize arr = %#v", arr)
	}
}
