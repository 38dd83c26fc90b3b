package shared

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestLogger(t *testing.T) {
	t.Run("writes to provided writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		logger.Info("hello", "key", "value")

		if !strings.Contains(buf.String(), "hello") {
			t.Errorf("expected log output to contain message, got %q", buf.String())
		}
		if !strings.Contains(buf.String(), "key=value") {
			t.Errorf("expected log output to contain key=value, got %q", buf.String())
		}
	})

	t.Run("child logger carries fields", func(t *testing.T) {
		var buf bytes.Buffer
		child := WithLogger(NewLogger(&buf), "component", "server")
		child.Info("started")

		if !strings.Contains(buf.String(), "component=server") {
			t.Errorf("expected child fields in output, got %q", buf.String())
		}
	})

	t.Run("level filters output", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		SetLogLevel(logger, log.WarnLevel)
		logger.Info("hidden")

		if buf.Len() != 0 {
			t.Errorf("expected info to be filtered at warn level, got %q", buf.String())
		}
	})
}

func TestParseLogLevel(t *testing.T) {
	tc := []struct {
		in   string
		want log.Level
	}{
		{"debug", log.DebugLevel},
		{"INFO", log.InfoLevel},
		{" warn ", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"", log.InfoLevel},
		{"chatty", log.InfoLevel},
	}

	for _, tt := range tc {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLogLevel(tt.in); got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if len(a) != 36 {
		t.Errorf("expected 36 character uuid, got %q", a)
	}
	if a == b {
		t.Error("expected distinct ids")
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("abcdef", 3); got != "abc..." {
		t.Errorf("expected abc..., got %q", got)
	}
	if got := Truncate("abc", 10); got != "abc" {
		t.Errorf("expected abc, got %q", got)
	}
	if got := Truncate("abc", 0); got != "abc" {
		t.Errorf("expected untouched string for n=0, got %q", got)
	}
}

func TestBrowser(t *testing.T) {
	t.Run("empty url", func(t *testing.T) {
		if err := OpenBrowser(""); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("unsupported platform", func(t *testing.T) {
		orig := getRuntime
		getRuntime = func() string { return "plan9" }
		defer func() { getRuntime = orig }()

		err := OpenBrowser("http://example.com")
		if err == nil || !strings.Contains(err.Error(), "unsupported platform") {
			t.Errorf("expected unsupported platform error, got %v", err)
		}
	})

	t.Run("platform commands", func(t *testing.T) {
		for goos, bin := range map[string]string{"darwin": "open", "linux": "xdg-open", "windows": "rundll32"} {
			cmd, err := browserCommand(goos, "http://example.com")
			if err != nil {
				t.Fatalf("%s: unexpected error %v", goos, err)
			}
			if !strings.HasSuffix(cmd.Path, bin) && cmd.Args[0] != bin {
				t.Errorf("%s: expected %s, got %v", goos, bin, cmd.Args)
			}
		}
	})
}

func TestNormalizeTrackKey(t *testing.T) {
	tests := []struct {
		title, artist, want string
	}{
		{"Song One", "Artist One", "song one|artist one"},
		{"  Song   One ", "ARTIST\tOne", "song one|artist one"},
		{"", "", "|"},
	}

	for _, tt := range tests {
		if got := NormalizeTrackKey(tt.title, tt.artist); got != tt.want {
			t.Errorf("NormalizeTrackKey(%q, %q) = %q, want %q", tt.title, tt.artist, got, tt.want)
		}
	}
}
