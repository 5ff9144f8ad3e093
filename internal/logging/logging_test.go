package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		" info ":  zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
	}
	for raw, want := range cases {
		got, ok := ParseLevel(raw)
		if !ok || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v", raw, got, ok)
		}
	}
	if _, ok := ParseLevel("loud"); ok {
		t.Fatal("expected unknown level to be rejected")
	}
}

func TestConfigureWriter_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	ConfigureWriter(&buf, zerolog.WarnLevel)
	defer Close()

	L().Info().Msg("quiet")
	L().Warn().Str("host", "example.org").Msg("loud")

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Fatalf("info entry should be filtered: %s", out)
	}
	if !strings.Contains(out, `"host":"example.org"`) {
		t.Fatalf("expected structured field, got: %s", out)
	}
}

func TestConfigure_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "gaufre.log")
	if err := Configure(path, "debug"); err != nil {
		t.Fatalf("Configure returned error: %v", err)
	}
	L().Debug().Msg("hello")
	Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Fatalf("expected entry in log file, got: %s", data)
	}
}
