package logger_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/momentics/netkit/logger"
)

func TestNewDefaultConfigIsConsoleOnly(t *testing.T) {
	cfg := logger.DefaultConfig()
	if !cfg.ToConsole || cfg.ToFile {
		t.Errorf("DefaultConfig() = %+v, want ToConsole=true ToFile=false", cfg)
	}
	l, err := logger.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer l.Close()
	l.Info("hello %s", "world")
}

func TestFileSinkRollsOverAndWrites(t *testing.T) {
	dir := t.TempDir()
	cfg := logger.DefaultConfig()
	cfg.ToConsole = false
	cfg.ToFile = true
	cfg.Dir = dir
	cfg.Module = "test"

	l, err := logger.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info("line one")
	l.Error("line two")
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("log dir has %d entries, want 1", len(entries))
	}
	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) == 0 {
		t.Error("log file is empty")
	}
}

func TestLevelFilteringDropsBelowConfiguredLevel(t *testing.T) {
	dir := t.TempDir()
	cfg := logger.DefaultConfig()
	cfg.ToConsole = false
	cfg.ToFile = true
	cfg.Dir = dir
	cfg.Level = logger.Error

	l, err := logger.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Debug("should be dropped")
	l.Error("should be kept")
	l.Close()

	entries, _ := os.ReadDir(dir)
	data, _ := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if len(data) == 0 {
		t.Fatal("log file is empty, want at least the Error line")
	}
	if strings.Contains(string(data), "should be dropped") {
		t.Error("Debug line written although Level is Error")
	}
}

func TestAsyncLoggerFlushWritesBeforeReturning(t *testing.T) {
	dir := t.TempDir()
	cfg := logger.DefaultConfig()
	cfg.ToConsole = false
	cfg.ToFile = true
	cfg.Dir = dir
	cfg.Async = true

	l, err := logger.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info("async line")
	l.Flush()

	entries, _ := os.ReadDir(dir)
	data, _ := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if len(data) == 0 {
		t.Error("async log file empty after Flush")
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestHexDumpTruncatesAtMaxSize(t *testing.T) {
	dir := t.TempDir()
	cfg := logger.DefaultConfig()
	cfg.ToConsole = false
	cfg.ToFile = true
	cfg.Dir = dir

	l, err := logger.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer l.Close()

	big := make([]byte, logger.MaxLogInfoSize+500)
	l.HexDump("payload", big, 16, true)
	time.Sleep(time.Millisecond)

	entries, _ := os.ReadDir(dir)
	data, _ := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if want := fmt.Sprintf("(%d bytes)", logger.MaxLogInfoSize); !strings.Contains(string(data), want) {
		t.Errorf("hex dump header does not report %s", want)
	}
}
