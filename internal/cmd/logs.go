package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log/v2"
	"github.com/nxadm/tail"
	"github.com/spf13/cobra"
)

const defaultTailLines = 1000

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View daedalus logs",
	Long:  `View the logs written by daedalus. With --follow new entries are printed as they are written.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		follow, _ := cmd.Flags().GetBool("follow")
		tailLines, _ := cmd.Flags().GetInt("tail")

		cfg, err := setupConfig(cmd)
		if err != nil {
			return err
		}
		logsFile := cfg.LogFile()

		out := charmlog.New(cmd.OutOrStdout())
		out.SetLevel(charmlog.DebugLevel)

		if _, err := os.Stat(logsFile); os.IsNotExist(err) {
			out.Warn("Looks like you are not in a daedalus project. No logs found.")
			return nil
		}

		if err := showLastLines(out, logsFile, tailLines); err != nil {
			return err
		}
		if !follow {
			return nil
		}
		return followLogs(cmd, out, logsFile)
	},
}

func init() {
	logsCmd.Flags().BoolP("follow", "f", false, "Follow log output")
	logsCmd.Flags().IntP("tail", "t", defaultTailLines, "Show only the last N lines")
	rootCmd.AddCommand(logsCmd)
}

func showLastLines(out *charmlog.Logger, path string, n int) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	lines := make([]string, 0, n)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if n <= 0 {
			continue
		}
		if len(lines) == n {
			lines = lines[1:]
		}
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read log file: %w", err)
	}
	for _, line := range lines {
		printLogLine(out, line)
	}
	return nil
}

func followLogs(cmd *cobra.Command, out *charmlog.Logger, path string) error {
	t, err := tail.TailFile(path, tail.Config{
		Follow:   true,
		ReOpen:   true,
		Logger:   tail.DiscardingLogger,
		Location: &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd},
	})
	if err != nil {
		return fmt.Errorf("failed to tail log file: %w", err)
	}
	defer t.Cleanup()

	ctx := cmd.Context()
	for {
		select {
		case <-ctx.Done():
			return t.Stop()
		case line, ok := <-t.Lines:
			if !ok {
				return t.Err()
			}
			if line.Err != nil {
				continue
			}
			printLogLine(out, line.Text)
		}
	}
}

// printLogLine pretty prints one JSON line of the log file. Lines that are
// not JSON are printed as they are.
func printLogLine(out *charmlog.Logger, line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		out.Print(line)
		return
	}

	msg, _ := entry["msg"].(string)
	level, _ := entry["level"].(string)
	if ts, ok := entry["time"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			out.SetTimeFunction(func(time.Time) time.Time { return parsed })
			out.SetReportTimestamp(true)
		}
	}

	var keyvals []any
	if src, ok := entry["source"].(map[string]any); ok {
		file, _ := src["file"].(string)
		line, _ := src["line"].(float64)
		if file != "" {
			keyvals = append(keyvals, "source", fmt.Sprintf("%s:%d", shortSource(file), int(line)))
		}
	}

	keys := make([]string, 0, len(entry))
	for k := range entry {
		switch k {
		case "msg", "level", "time", "source":
			continue
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		keyvals = append(keyvals, k, entry[k])
	}

	switch strings.ToUpper(level) {
	case "DEBUG":
		out.Debug(msg, keyvals...)
	case "WARN":
		out.Warn(msg, keyvals...)
	case "ERROR":
		out.Error(msg, keyvals...)
	default:
		out.Info(msg, keyvals...)
	}
}

// shortSource keeps the package directory and file name of a source path.
func shortSource(file string) string {
	parts := strings.Split(file, "/")
	if len(parts) > 2 {
		parts = parts[len(parts)-2:]
	}
	return strings.Join(parts, "/")
}
