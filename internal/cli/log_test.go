package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"stage summary at info", log.InfoLevel, func(l *log.Logger) { l.Info("built graph", "nodes", 5) }, true},
		{"pipeline options hidden at info", log.InfoLevel, func(l *log.Logger) { l.Debug("running pipeline") }, false},
		{"pipeline options at debug", log.DebugLevel, func(l *log.Logger) { l.Debug("running pipeline") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if gotLog := buf.Len() > 0; gotLog != tt.wantLog {
				t.Errorf("got log output = %v, want %v", gotLog, tt.wantLog)
			}
		})
	}
}

func TestTimed(t *testing.T) {
	var buf bytes.Buffer
	done := timed(newLogger(&buf, log.InfoLevel), "Built report.json")
	if buf.Len() != 0 {
		t.Fatal("timed should log only when done is called")
	}
	time.Sleep(5 * time.Millisecond)
	done()

	if !regexp.MustCompile(`Built report\.json \(\d+(\.\d+)?m?s\)`).MatchString(buf.String()) {
		t.Errorf("progress output = %q", buf.String())
	}
}

func TestLoggerContext(t *testing.T) {
	if loggerFromContext(context.Background()) == nil {
		t.Fatal("loggerFromContext should fall back to the default logger")
	}

	var buf bytes.Buffer
	l := newLogger(&buf, log.InfoLevel)
	if got := loggerFromContext(withLogger(context.Background(), l)); got != l {
		t.Error("loggerFromContext should return the attached logger")
	}
}

func TestRenderVerbose(t *testing.T) {
	input := writeSample(t)
	cfgPath := filepath.Join(t.TempDir(), "missing.yaml")

	tests := []struct {
		name      string
		verbose   bool
		wantDebug bool
	}{
		{"default", false, false},
		{"verbose", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs, stdout bytes.Buffer
			c := New(&logs, LogInfo)
			c.stdout = &stdout

			args := []string{"render", input, "-f", "json", "-o", "-", "--no-cache", "--config", cfgPath}
			if tt.verbose {
				args = append(args, "--verbose")
			}
			root := c.command()
			root.SetArgs(args)
			if err := root.ExecuteContext(context.Background()); err != nil {
				t.Fatalf("render: %v", err)
			}

			if !strings.Contains(logs.String(), "built graph") {
				t.Errorf("stage summary missing from logs: %q", logs.String())
			}
			if got := strings.Contains(logs.String(), "running pipeline"); got != tt.wantDebug {
				t.Errorf("debug output = %v, want %v", got, tt.wantDebug)
			}
			// With -o - the artifact is the only thing on stdout.
			if !strings.HasPrefix(strings.TrimSpace(stdout.String()), "{") || !strings.Contains(stdout.String(), "total_nodes") {
				t.Errorf("stdout = %q", stdout.String())
			}
			if strings.Contains(logs.String(), "Rendering json") {
				t.Error("spinner drawn while writing to stdout")
			}
		})
	}
}
