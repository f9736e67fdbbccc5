package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/MakeNowJust/heredoc"
	"github.com/charmbracelet/fang"
	"github.com/daedalusboard/daedalus/internal/board"
	"github.com/daedalusboard/daedalus/internal/config"
	"github.com/daedalusboard/daedalus/internal/log"
	"github.com/daedalusboard/daedalus/internal/tui"
	"github.com/daedalusboard/daedalus/internal/version"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.PersistentFlags().StringP("board", "b", "", "Board directory (defaults to the configured board or the current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Debug")
}

var rootCmd = &cobra.Command{
	Use:   "daedalus",
	Short: "Kanban boards of markdown cards in your terminal",
	Long: heredoc.Doc(`
		Daedalus shows a directory of markdown cards as a kanban board.

		Every subdirectory of the board is a list and every markdown file in a
		list is a card with YAML frontmatter. The board reloads when files
		change on disk.
	`),
	Example: heredoc.Doc(`
		# Open the board in the current directory
		daedalus

		# Open a specific board with debug logging
		daedalus -b ~/boards/work -d

		# List the cards of a list as JSON
		daedalus cards todo -f json
	`),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setupConfig(cmd)
		if err != nil {
			return err
		}
		repo, err := openBoard(cmd, cfg, true)
		if err != nil {
			return err
		}
		slog.Info("Opening board", "path", repo.Root(), "version", version.Version)
		return tui.Run(cmd.Context(), repo, cfg)
	},
}

func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(version.Version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

// setupConfig loads the configuration and starts file logging.
func setupConfig(cmd *cobra.Command) (*config.Config, error) {
	debug, _ := cmd.Flags().GetBool("debug")
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current working directory: %w", err)
	}
	cfg, err := config.Load(cwd, debug)
	if err != nil {
		return nil, err
	}
	log.Setup(cfg.LogFile(), cfg.Options.Debug)
	return cfg, nil
}

// openBoard loads the board picked by --board or the config. With create it
// initializes an empty directory as a new board.
func openBoard(cmd *cobra.Command, cfg *config.Config, create bool) (*board.Board, error) {
	explicit, _ := cmd.Flags().GetString("board")
	dir, err := config.ResolveBoard(cfg, explicit)
	if err != nil {
		return nil, err
	}
	if create {
		needsInit, err := config.BoardNeedsInitialization(dir)
		if err != nil {
			return nil, err
		}
		if needsInit {
			if err := board.InitDir(dir); err != nil {
				return nil, fmt.Errorf("failed to initialize board: %w", err)
			}
		}
	}
	repo, err := board.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load board %s: %w", dir, err)
	}
	return repo, nil
}
