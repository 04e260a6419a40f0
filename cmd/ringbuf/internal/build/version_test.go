package build

import (
	"strings"
	"testing"
)

func TestCurrent(t *testing.T) {
	info := Current()
	if info.Version == "" || info.Go == "" || !strings.Contains(info.Platform, "/") {
		t.Fatalf("Current() = %+v", info)
	}
	if s := info.String(); !strings.HasPrefix(s, "ringbuf ") || !strings.Contains(s, info.Platform) {
		t.Fatalf("String() = %q", s)
	}
}

func TestCurrent_LdflagsWin(t *testing.T) {
	old := Version
	Version = "v9.9.9"
	defer func() { Version = old }()

	if got := Current().Version; got != "v9.9.9" {
		t.Fatalf("Version = %q, want the stamped value", got)
	}
}
