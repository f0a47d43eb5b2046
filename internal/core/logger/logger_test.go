package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestBuild_LevelFilterAndJSON(t *testing.T) {
	var buf bytes.Buffer
	l, done := Build(Options{Level: "warn", JSON: true, Output: zapcore.AddSync(&buf)})
	l.Info("hidden")
	l.Warn("shown", zap.String("k", "v"))
	done()

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be filtered: %s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"k":"v"`) {
		t.Fatalf("expected json warn line, got %s", out)
	}
}

func TestBuild_BadLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l, done := Build(Options{Level: "loud", JSON: true, Output: zapcore.AddSync(&buf)})
	l.Debug("debug")
	l.Info("info")
	done()
	if strings.Contains(buf.String(), `"msg":"debug"`) || !strings.Contains(buf.String(), `"msg":"info"`) {
		t.Fatalf("unexpected output: %s", buf.String())
	}
}

func TestBuild_RotateFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "app.log")
	var buf bytes.Buffer
	l, done := Build(Options{
		Level:  "info",
		Output: zapcore.AddSync(&buf),
		Rotate: FileRotate{Filename: file, MaxSizeMB: 1},
	})
	l.Info("to both sinks")
	done()

	b, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(b), `"msg":"to both sinks"`) {
		t.Fatalf("file sink missing line: %s", b)
	}
	if !strings.Contains(buf.String(), "to both sinks") {
		t.Fatalf("stdout sink missing line: %s", buf.String())
	}
}

func TestToWriter_TrimsNewline(t *testing.T) {
	var buf bytes.Buffer
	l, done := Build(Options{Level: "debug", JSON: true, Output: zapcore.AddSync(&buf)})
	w := ToWriter(l, zapcore.ErrorLevel)
	if _, err := w.Write([]byte("boom\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	done()
	if !strings.Contains(buf.String(), `"level":"error"`) || !strings.Contains(buf.String(), `"msg":"boom"`) {
		t.Fatalf("unexpected output: %s", buf.String())
	}
}
