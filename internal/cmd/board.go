package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/daedalusboard/daedalus/internal/board"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Show board information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := loadBoard(cmd)
		if err != nil {
			return err
		}
		stats := repo.Stats()
		return formatOutput(cmd, stats, func(w io.Writer) error {
			fmt.Fprintf(w, "%s\n", repo.Title())
			fmt.Fprintf(w, "Path:  %s\n", stats.RootPath)
			fmt.Fprintf(w, "Lists: %d\n", stats.Lists)
			fmt.Fprintf(w, "Cards: %d\n", stats.Cards)
			return nil
		})
	},
}

var listsCmd = &cobra.Command{
	Use:   "lists",
	Short: "List the lists of the board",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := loadBoard(cmd)
		if err != nil {
			return err
		}
		lists := repo.Lists()
		return formatOutput(cmd, lists, func(w io.Writer) error {
			if len(lists) == 0 {
				fmt.Fprintln(w, "No lists found.")
				return nil
			}
			for _, l := range lists {
				locked := ""
				if l.Locked {
					locked = " (locked)"
				}
				fmt.Fprintf(w, "%-20s %-24s %4d cards%s\n", l.Dir, l.DisplayTitle(), l.Cards, locked)
			}
			return nil
		})
	},
}

var cardsCmd = &cobra.Command{
	Use:   "cards <list>",
	Short: "List the cards of a list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := loadBoard(cmd)
		if err != nil {
			return err
		}
		cards, err := repo.Cards(args[0])
		if err != nil {
			return err
		}
		return formatOutput(cmd, cards, func(w io.Writer) error {
			if len(cards) == 0 {
				fmt.Fprintln(w, "No cards found.")
				return nil
			}
			for _, c := range cards {
				printCardLine(w, c)
			}
			return nil
		})
	},
}

var cardCmd = &cobra.Command{
	Use:   "card",
	Short: "Manage cards",
}

var cardGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a card with its body",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseCardID(args[0])
		if err != nil {
			return err
		}
		repo, err := loadBoard(cmd)
		if err != nil {
			return err
		}
		c, err := repo.Card(id)
		if err != nil {
			return err
		}
		body, err := repo.Body(id)
		if err != nil {
			return err
		}
		out := struct {
			board.Card `yaml:",inline"`
			Body       string `json:"body" yaml:"body"`
		}{c, body}
		return formatOutput(cmd, out, func(w io.Writer) error {
			printCardLine(w, c)
			fmt.Fprintf(w, "List: %s\nPath: %s\n\n%s\n", c.List, c.Path, strings.TrimSpace(body))
			return nil
		})
	},
}

var cardCreateCmd = &cobra.Command{
	Use:   "create <list> <title>",
	Short: "Create a card",
	Example: heredoc.Doc(`
		# Add a card at the bottom of the todo list
		daedalus card create todo "Write the docs"

		# Add it at the top, with a body read from stdin
		echo "Some details" | daedalus card create todo "Write the docs" --position top --body -
	`),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		position, _ := cmd.Flags().GetString("position")
		body, err := bodyFlag(cmd)
		if err != nil {
			return err
		}
		repo, err := loadBoard(cmd)
		if err != nil {
			return err
		}
		c, err := repo.CreateCard(args[0], args[1], body, position)
		if err != nil {
			return err
		}
		return formatOutput(cmd, c, func(w io.Writer) error {
			fmt.Fprintf(w, "Created card #%d in %s\n", c.Metadata.ID, c.List)
			return nil
		})
	},
}

var cardDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a card",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseCardID(args[0])
		if err != nil {
			return err
		}
		repo, err := loadBoard(cmd)
		if err != nil {
			return err
		}
		if err := repo.DeleteCard(id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted card #%d\n", id)
		return nil
	},
}

var cardMoveCmd = &cobra.Command{
	Use:   "move <id> <list>",
	Short: "Move a card to another list",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseCardID(args[0])
		if err != nil {
			return err
		}
		position, _ := cmd.Flags().GetString("position")
		repo, err := loadBoard(cmd)
		if err != nil {
			return err
		}
		c, err := repo.MoveCard(id, args[1], position)
		if err != nil {
			return err
		}
		return formatOutput(cmd, c, func(w io.Writer) error {
			fmt.Fprintf(w, "Moved card #%d to %s\n", c.Metadata.ID, c.List)
			return nil
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Manage lists",
}

var listCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := loadBoard(cmd)
		if err != nil {
			return err
		}
		if err := repo.CreateList(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created list %s\n", args[0])
		return nil
	},
}

var listDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a list and its cards",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := loadBoard(cmd)
		if err != nil {
			return err
		}
		if err := repo.DeleteList(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted list %s\n", args[0])
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the board",
}

var exportJSONCmd = &cobra.Command{
	Use:   "json [path]",
	Short: "Export the board as JSON",
	Long:  `Export every list and card, bodies included, as one JSON document. Writes to stdout when no path is given.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := loadBoard(cmd)
		if err != nil {
			return err
		}
		if len(args) == 0 || args[0] == "-" {
			return board.ExportJSON(repo, cmd.OutOrStdout())
		}
		f, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", args[0], err)
		}
		if err := board.ExportJSON(repo, f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to write %s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported board to %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(boardCmd, listsCmd, cardsCmd, cardCmd, listCmd, exportCmd)
	cardCmd.AddCommand(cardGetCmd, cardCreateCmd, cardDeleteCmd, cardMoveCmd)
	listCmd.AddCommand(listCreateCmd, listDeleteCmd)
	exportCmd.AddCommand(exportJSONCmd)

	for _, c := range []*cobra.Command{boardCmd, listsCmd, cardsCmd, cardGetCmd, cardCreateCmd, cardMoveCmd} {
		c.Flags().StringP("format", "f", "text", "Output format (text, json, yaml)")
	}
	cardCreateCmd.Flags().StringP("position", "p", board.PositionBottom, "Where to insert the card: top, bottom or an index")
	cardCreateCmd.Flags().String("body", "", "Markdown body of the card, - reads it from stdin")
	cardMoveCmd.Flags().StringP("position", "p", board.PositionBottom, "Where to insert the card: top, bottom or an index")
}

// loadBoard opens the board for the board subcommands, which never create
// one.
func loadBoard(cmd *cobra.Command) (*board.Board, error) {
	cfg, err := setupConfig(cmd)
	if err != nil {
		return nil, err
	}
	return openBoard(cmd, cfg, false)
}

func parseCardID(arg string) (int, error) {
	id, err := strconv.Atoi(strings.TrimPrefix(arg, "#"))
	if err != nil {
		return 0, fmt.Errorf("invalid card id %q: %w", arg, err)
	}
	return id, nil
}

func printCardLine(w io.Writer, c board.Card) {
	m := c.Metadata
	line := fmt.Sprintf("#%-5d %s", m.ID, m.Title)
	if len(m.Labels) > 0 {
		line += " [" + strings.Join(m.Labels, ", ") + "]"
	}
	if done, total := m.ChecklistProgress(); total > 0 {
		line += fmt.Sprintf(" %d/%d", done, total)
	}
	fmt.Fprintln(w, line)
}

func formatOutput(cmd *cobra.Command, v any, text func(io.Writer) error) error {
	format, _ := cmd.Flags().GetString("format")
	w := cmd.OutOrStdout()
	switch strings.ToLower(format) {
	case "json":
		return formatJSON(w, v)
	case "yaml":
		return formatYAML(w, v)
	case "text", "":
		return text(w)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func formatJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func formatYAML(w io.Writer, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	fmt.Fprint(w, string(data))
	return nil
}
