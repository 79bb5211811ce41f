// Package logger implements the toolkit's leveled logger: file and/or
// console sinks, size-limited rollover, synchronous or asynchronous
// delivery, and a hex-dump helper, grounded on tools/ilogger.h and
// tools/logger.h. Level filtering and line formatting are delegated to a
// logrus.Logger; this package supplies logrus's io.Writer as a sink that
// feeds the rollover file, the console, and the async double buffer,
// modeled on the original's contract.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/momentics/netkit/thread"
)

// Level mirrors the original's six levels onto logrus's scale (logrus has
// no Fatal-without-os.Exit by default, so Fatal here just logs at the
// highest level and lets the caller decide whether to exit).
type Level int

const (
	Trace Level = iota
	Debug
	Info
	Warn
	Error
	Fatal
)

func (l Level) logrusLevel() logrus.Level {
	switch l {
	case Trace:
		return logrus.TraceLevel
	case Debug:
		return logrus.DebugLevel
	case Info:
		return logrus.InfoLevel
	case Warn:
		return logrus.WarnLevel
	case Error:
		return logrus.ErrorLevel
	default:
		return logrus.FatalLevel
	}
}

const (
	defaultFileSizeLimitMiB = 10
	maxFileSizeLimitMiB     = 2048
	asyncSwapInterval       = 100 * time.Millisecond
)

// Config controls sink selection, rollover size, and delivery mode.
type Config struct {
	Module        string // used in rollover filenames: <module><timestamp>.log
	Dir           string
	ToConsole     bool
	ToFile        bool
	FileSizeLimitMiB int
	Async         bool
	Level         Level
}

// DefaultConfig returns console-only, synchronous, Info-level settings.
func DefaultConfig() Config {
	return Config{
		Module:           "app",
		ToConsole:        true,
		ToFile:           false,
		FileSizeLimitMiB: defaultFileSizeLimitMiB,
		Async:            false,
		Level:            Info,
	}
}

// Logger is a leveled, optionally asynchronous, file+console sink. Level
// filtering and line formatting run through lr; lr's output is a
// sinkWriter routing each formatted line back into this package's
// rollover/console/async logic.
type Logger struct {
	cfg Config
	lr  *logrus.Logger

	fileMu    sync.Mutex
	file      *os.File
	fileBytes int64
	sizeLimit int64

	// async double buffer, holding lines already formatted by lr
	bufMu    sync.Mutex
	active   [][]byte
	draining bool
	flushed  *sync.Cond

	bg *thread.Thread
}

// sinkWriter is logrus's output: every formatted line lr produces lands
// here instead of logrus's default stderr sink.
type sinkWriter struct {
	l *Logger
}

func (w *sinkWriter) Write(p []byte) (int, error) {
	if w.l.cfg.Async {
		line := make([]byte, len(p))
		copy(line, p)
		w.l.bufMu.Lock()
		w.l.active = append(w.l.active, line)
		w.l.bufMu.Unlock()
		return len(p), nil
	}
	w.l.writeLine(p)
	return len(p), nil
}

// New constructs a Logger from cfg and opens the first log file if ToFile
// is set. Call Close when done to flush and release the file handle.
func New(cfg Config) (*Logger, error) {
	if cfg.FileSizeLimitMiB <= 0 {
		cfg.FileSizeLimitMiB = defaultFileSizeLimitMiB
	}
	if cfg.FileSizeLimitMiB > maxFileSizeLimitMiB {
		cfg.FileSizeLimitMiB = maxFileSizeLimitMiB
	}

	lr := logrus.New()
	lr.SetLevel(cfg.Level.logrusLevel())
	lr.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	l := &Logger{
		cfg:       cfg,
		lr:        lr,
		sizeLimit: int64(cfg.FileSizeLimitMiB) * 1024 * 1024,
	}
	l.flushed = sync.NewCond(&l.bufMu)
	lr.SetOutput(&sinkWriter{l: l})

	if cfg.ToFile {
		if err := l.rollover(); err != nil {
			return nil, err
		}
	}
	if cfg.Async {
		l.bg = thread.New("logger-async", l.runAsync)
		if err := l.bg.Start(); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (l *Logger) rolloverName() string {
	return filepath.Join(l.cfg.Dir, fmt.Sprintf("%s%s.log", l.cfg.Module, time.Now().Format("20060102150405")))
}

func (l *Logger) rollover() error {
	l.fileMu.Lock()
	defer l.fileMu.Unlock()
	if l.file != nil {
		_ = l.file.Close()
	}
	f, err := os.Create(l.rolloverName())
	if err != nil {
		return err
	}
	l.file = f
	l.fileBytes = 0
	return nil
}

// writeLine delivers one already-formatted line (produced by lr's
// formatter) to the console and/or the rollover file.
func (l *Logger) writeLine(line []byte) {
	if l.cfg.ToConsole {
		os.Stdout.Write(line)
	}
	if l.cfg.ToFile {
		l.fileMu.Lock()
		if l.fileBytes >= l.sizeLimit {
			l.fileMu.Unlock()
			_ = l.rollover()
			l.fileMu.Lock()
		}
		n, _ := l.file.Write(line)
		l.fileBytes += int64(n)
		l.fileMu.Unlock()
	}
}

func (l *Logger) log(level Level, msg string) {
	l.lr.Log(level.logrusLevel(), msg)
}

func (l *Logger) Trace(format string, args ...any) { l.log(Trace, fmt.Sprintf(format, args...)) }
func (l *Logger) Debug(format string, args ...any) { l.log(Debug, fmt.Sprintf(format, args...)) }
func (l *Logger) Info(format string, args ...any)  { l.log(Info, fmt.Sprintf(format, args...)) }
func (l *Logger) Warn(format string, args ...any)  { l.log(Warn, fmt.Sprintf(format, args...)) }
func (l *Logger) Error(format string, args ...any) { l.log(Error, fmt.Sprintf(format, args...)) }
func (l *Logger) Fatal(format string, args ...any) { l.log(Fatal, fmt.Sprintf(format, args...)) }

// runAsync swaps the active buffer out every 100ms and writes the drained
// contents, double-buffering in the teacher's EventLoop batch-drain style.
func (l *Logger) runAsync(t *thread.Thread) {
	ticker := time.NewTicker(asyncSwapInterval)
	defer ticker.Stop()
	for !t.Signalled() {
		<-ticker.C
		l.drain()
	}
	l.drain()
}

func (l *Logger) drain() {
	l.bufMu.Lock()
	if l.draining {
		l.bufMu.Unlock()
		return
	}
	l.draining = true
	batch := l.active
	l.active = nil
	l.bufMu.Unlock()

	for _, line := range batch {
		l.writeLine(line)
	}

	l.bufMu.Lock()
	l.draining = false
	if len(l.active) == 0 {
		l.flushed.Broadcast()
	}
	l.bufMu.Unlock()
}

// Flush blocks until the async input buffer is empty. In synchronous mode
// it returns immediately, since every call already wrote inline.
func (l *Logger) Flush() {
	if !l.cfg.Async {
		return
	}
	l.bufMu.Lock()
	for len(l.active) > 0 || l.draining {
		l.flushed.Wait()
	}
	l.bufMu.Unlock()
}

// Close flushes, stops the async worker if any, and closes the log file.
func (l *Logger) Close() error {
	l.Flush()
	if l.bg != nil {
		_ = l.bg.Stop(time.Second)
	}
	l.fileMu.Lock()
	defer l.fileMu.Unlock()
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
