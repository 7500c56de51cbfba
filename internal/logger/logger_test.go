package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// restore puts back a no-op logger so later tests start clean.
func restore(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		_ = Setup(Options{})
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"debug", "debug", false},
		{"INFO", "info", false},
		{"", "info", false},
		{" warn ", "warn", false},
		{"warning", "warn", false},
		{"error", "error", false},
		{"verbose", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			lvl, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && lvl.String() != tt.want {
				t.Errorf("level = %s, want %s", lvl, tt.want)
			}
		})
	}
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	restore(t)
	var buf bytes.Buffer
	if err := Setup(Options{Level: "info", Console: &buf}); err != nil {
		t.Fatal(err)
	}
	if err := Setup(Options{Level: "loud", Console: &bytes.Buffer{}}); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
	Info("still here")
	if !strings.Contains(buf.String(), "still here") {
		t.Error("failed Setup should keep the previous logger")
	}
}

func TestConsoleLevels(t *testing.T) {
	restore(t)

	tests := []struct {
		level    string
		expected []string
		excluded []string
	}{
		{"error", []string{"error message"}, []string{"warn message", "info message", "debug message"}},
		{"warn", []string{"error message", "warn message"}, []string{"info message", "debug message"}},
		{"info", []string{"warn message", "info message"}, []string{"debug message"}},
		{"debug", []string{"info message", "debug message"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Setup(Options{Level: tt.level, Console: &buf}); err != nil {
				t.Fatal(err)
			}
			Debug("debug message")
			Info("info message")
			Warn("warn message")
			Error("error message")

			out := buf.String()
			for _, s := range tt.expected {
				if !strings.Contains(out, s) {
					t.Errorf("missing %q", s)
				}
			}
			for _, s := range tt.excluded {
				if strings.Contains(out, s) {
					t.Errorf("unexpected %q at level %s", s, tt.level)
				}
			}
		})
	}
}

func TestNamed(t *testing.T) {
	restore(t)
	path := filepath.Join(t.TempDir(), "named.log")
	if err := Setup(Options{Level: "debug", File: FileConfig{Path: path, MaxSizeMB: 1}}); err != nil {
		t.Fatal(err)
	}

	Named("player").Info("motion started")
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	line := string(data)
	if !strings.Contains(line, "player") || !strings.Contains(line, "motion started") {
		t.Errorf("log line = %q", line)
	}
	// File output is plain: ISO8601 time and no color codes.
	if strings.Contains(line, "\x1b[") {
		t.Error("file output should not contain color codes")
	}
	if !strings.Contains(line, "T") || !strings.Contains(line, "INFO") {
		t.Errorf("unexpected file layout: %q", line)
	}
}

func TestFileRotation(t *testing.T) {
	restore(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "rig.log")

	// lumberjack's smallest size is 1 MB.
	cfg := FileConfig{Path: path, MaxSizeMB: 1, MaxBackups: 2, MaxAgeDays: 1}
	if err := Setup(Options{Level: "info", File: cfg}); err != nil {
		t.Fatal(err)
	}

	payload := strings.Repeat("x", 200)
	for i := 0; i < 8000; i++ {
		Sugar.Infof("sample %d %s", i, payload)
	}
	Sync()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var rotated []string
	for _, e := range entries {
		if e.Name() != "rig.log" && strings.HasPrefix(e.Name(), "rig-") {
			rotated = append(rotated, e.Name())
		}
	}
	if len(rotated) == 0 {
		t.Fatalf("no rotated files in %v", entries)
	}
	for _, name := range rotated {
		if !strings.HasSuffix(name, ".log") {
			t.Errorf("rotated file %s should keep the .log extension", name)
		}
	}
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("rig.log")
	want := FileConfig{Path: "rig.log", MaxSizeMB: 20, MaxBackups: 3, MaxAgeDays: 14, Compress: true}
	if cfg != want {
		t.Errorf("got %+v, want %+v", cfg, want)
	}
}
