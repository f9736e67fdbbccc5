package log

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

var initOnce sync.Once

// Setup sends the default slog logger to a rotated JSON log file. Only the
// first call has an effect.
func Setup(logFile string, debug bool) {
	initOnce.Do(func() {
		logRotator := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // Max size in MB
			MaxBackups: 0,  // Number of backups
			MaxAge:     30, // Days
			Compress:   false,
		}

		level := slog.LevelInfo
		if debug {
			level = slog.LevelDebug
		}

		logger := slog.NewJSONHandler(logRotator, &slog.HandlerOptions{
			Level:     level,
			AddSource: true,
		})

		slog.SetDefault(slog.New(logger))
	})
}

// RecoverPanic is deferred at the top of goroutines. A panic is written to a
// daedalus-panic-<name>-<time>.log file in dir, then cleanup runs.
func RecoverPanic(dir, name string, cleanup func()) {
	r := recover()
	if r == nil {
		return
	}

	timestamp := time.Now().Format("20060102-150405")
	filename := filepath.Join(dir, fmt.Sprintf("daedalus-panic-%s-%s.log", name, timestamp))
	slog.Error("Recovered from panic", "name", name, "panic", r, "file", filename)

	file, err := os.Create(filename)
	if err == nil {
		defer file.Close()
		fmt.Fprintf(file, "Panic in %s: %v\n\n", name, r)
		fmt.Fprintf(file, "Time: %s\n\n", time.Now().Format(time.RFC3339))
		fmt.Fprintf(file, "Stack Trace:\n%s\n", debug.Stack())
	}

	if cleanup != nil {
		cleanup()
	}
}
