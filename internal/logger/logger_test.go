package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNopBeforeInit(t *testing.T) {
	// Must not panic before Init.
	Info("discarded", zap.Int("rows", 3))
	Named("calib").Warn("discarded")
	Sync()
}

func initFile(t *testing.T, level string, cfg FileConfig) string {
	t.Helper()
	if err := InitWithFileConfig(level, cfg, false); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	return cfg.Path
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	Sync()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	return string(content)
}

func TestLogRotation(t *testing.T) {
	dir := t.TempDir()
	path := initFile(t, "debug", FileConfig{
		Path:       filepath.Join(dir, "fit.log"),
		MaxSizeMB:  1, // smallest size lumberjack allows
		MaxBackups: 2,
		MaxAgeDays: 1,
	})
	defer Sync()

	// Roughly 4 MB of JSON entries.
	peak := strings.Repeat("q", 200)
	for i := 0; i < 15000; i++ {
		Sugar.Infow("indexed peak", "seq", i, "label", peak)
	}
	Sync()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("main log file missing: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read dir: %v", err)
	}
	var rotated []string
	for _, e := range entries {
		name := e.Name()
		if name != "fit.log" && strings.HasPrefix(name, "fit-") && strings.HasSuffix(name, ".log") {
			rotated = append(rotated, name)
		}
	}
	if len(rotated) == 0 {
		t.Errorf("no rotated files in %v", entries)
	}
	for _, name := range rotated {
		// lumberjack names backups fit-YYYY-MM-DDTHH-MM-SS.mmm.log
		if !strings.Contains(name, "-20") {
			t.Errorf("rotated file %s lacks a timestamp", name)
		}
	}
}

func TestLogLevels(t *testing.T) {
	dir := t.TempDir()
	all := []string{"DEBUG", "INFO", "WARN", "ERROR"}

	tests := []struct {
		level string
		first int // index into all of the lowest level written
	}{
		{"debug", 0},
		{"info", 1},
		{"", 1},
		{"warn", 2},
		{"error", 3},
	}

	for _, tt := range tests {
		t.Run("level="+tt.level, func(t *testing.T) {
			path := initFile(t, tt.level, FileConfig{
				Path:       filepath.Join(dir, "level-"+tt.level+".log"),
				MaxSizeMB:  10,
				MaxBackups: 1,
				MaxAgeDays: 1,
			})

			Debug("debug message")
			Info("info message")
			Warn("warn message")
			Error("error message")

			content := readLog(t, path)
			for i, lvl := range all {
				has := strings.Contains(content, `"level":"`+lvl+`"`)
				if i >= tt.first && !has {
					t.Errorf("expected %s entries", lvl)
				}
				if i < tt.first && has {
					t.Errorf("unexpected %s entries", lvl)
				}
			}
		})
	}
}

func TestNamedAndSetLevel(t *testing.T) {
	path := initFile(t, "info", FileConfig{
		Path:       filepath.Join(t.TempDir(), "named.log"),
		MaxSizeMB:  10,
		MaxBackups: 1,
		MaxAgeDays: 1,
	})

	Named("calib").Info("fit done", zap.Float64("residual", 0.25))
	Debug("hidden debug")
	SetLevel("debug")
	Debug("visible debug")
	SetLevel("info")

	content := readLog(t, path)
	for _, want := range []string{`"logger":"calib"`, `"residual":0.25`, "visible debug"} {
		if !strings.Contains(content, want) {
			t.Errorf("expected %s in log output:\n%s", want, content)
		}
	}
	if strings.Contains(content, "hidden debug") {
		t.Error("debug entry logged at info level")
	}
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("/tmp/isaw.log")
	want := FileConfig{Path: "/tmp/isaw.log", MaxSizeMB: 50, MaxBackups: 3, MaxAgeDays: 7, Compress: true}
	if cfg != want {
		t.Errorf("DefaultFileConfig() = %+v, want %+v", cfg, want)
	}
}
