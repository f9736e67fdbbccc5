package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/MakeNowJust/heredoc"
	"github.com/daedalusboard/daedalus/internal/config"
	"github.com/spf13/cobra"
)

// boardDirs are the locations daedalus reads and writes, in print order.
type boardDirs struct {
	Board  string `json:"board" yaml:"board"`
	Config string `json:"config" yaml:"config"`
	Data   string `json:"data" yaml:"data"`
	Logs   string `json:"logs" yaml:"logs"`
}

func (d boardDirs) get(kind string) (string, bool) {
	switch kind {
	case "board":
		return d.Board, true
	case "config":
		return d.Config, true
	case "data":
		return d.Data, true
	case "logs":
		return d.Logs, true
	}
	return "", false
}

var dirKinds = []string{"board", "config", "data", "logs"}

var dirsCmd = &cobra.Command{
	Use:       "dirs [board|config|data|logs]",
	Short:     "Show where daedalus keeps boards, settings and logs",
	ValidArgs: dirKinds,
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	Example: heredoc.Doc(`
		# Show every location
		daedalus dirs

		# Open the board that would be loaded from here
		cd "$(daedalus dirs board)"

		# Follow the raw log file
		tail -f "$(daedalus dirs logs)/daedalus.log"
	`),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setupConfig(cmd)
		if err != nil {
			return err
		}
		explicit, _ := cmd.Flags().GetString("board")
		boardDir, err := config.ResolveBoard(cfg, explicit)
		if err != nil {
			return err
		}
		dirs := boardDirs{
			Board:  boardDir,
			Config: filepath.Dir(config.GlobalConfig()),
			Data:   cfg.Options.DataDirectory,
			Logs:   filepath.Dir(cfg.LogFile()),
		}

		if len(args) == 1 {
			dir, _ := dirs.get(args[0])
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		}
		return formatOutput(cmd, dirs, func(w io.Writer) error {
			for _, kind := range dirKinds {
				dir, _ := dirs.get(kind)
				fmt.Fprintf(w, "%-7s %s\n", kind, dir)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(dirsCmd)
	dirsCmd.Flags().StringP("format", "f", "text", "Output format (text, json, yaml)")
}
