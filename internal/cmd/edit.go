package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/daedalusboard/daedalus/internal/board"
	"github.com/spf13/cobra"
)

const dueLayout = "2006-01-02"

var cardUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change the title, labels, due date or body of a card",
	Long:  `Only the fields given as flags change. The card keeps its list and position, use "card move" for those.`,
	Example: heredoc.Doc(`
		# Rename a card and replace its labels
		daedalus card update 12 --title "Write the docs" --labels docs,urgent

		# Clear the due date and read a new body from stdin
		cat notes.md | daedalus card update 12 --due "" --body -
	`),
	Args: cobra.ExactArgs(1),
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

		meta := c.Metadata
		flags := cmd.Flags()
		if flags.Changed("title") {
			meta.Title, _ = flags.GetString("title")
		}
		if flags.Changed("labels") {
			meta.Labels, _ = flags.GetStringSlice("labels")
		}
		if flags.Changed("due") {
			due, _ := flags.GetString("due")
			if meta.Due, err = parseDue(due); err != nil {
				return err
			}
		}
		if flags.Changed("body") {
			if body, err = bodyFlag(cmd); err != nil {
				return err
			}
		}

		updated, err := repo.UpdateCard(id, meta, body)
		if err != nil {
			return err
		}
		return formatOutput(cmd, updated, func(w io.Writer) error {
			fmt.Fprintf(w, "Updated card #%d\n", updated.Metadata.ID)
			return nil
		})
	},
}

var listSetCmd = &cobra.Command{
	Use:   "set <name>",
	Short: "Change the title, card limit or lock of a list",
	Example: heredoc.Doc(`
		# Show "In progress" above the doing list and warn past 5 cards
		daedalus list set doing --title "In progress" --limit 5

		# Stop cards from being added to or removed from done
		daedalus list set done --locked
	`),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		if flags.Changed("locked") && flags.Changed("unlocked") {
			return fmt.Errorf("--locked and --unlocked cannot be used together")
		}
		repo, err := loadBoard(cmd)
		if err != nil {
			return err
		}

		name := args[0]
		var entry board.ListEntry
		found := false
		for _, l := range repo.Lists() {
			if l.Dir == name {
				entry, found = l.ListEntry, true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: %s", board.ErrListNotFound, name)
		}

		if flags.Changed("title") || flags.Changed("limit") {
			if flags.Changed("title") {
				entry.Title, _ = flags.GetString("title")
			}
			if flags.Changed("limit") {
				entry.Limit, _ = flags.GetInt("limit")
			}
			if err := repo.SetListConfig(name, entry.Title, entry.Limit); err != nil {
				return err
			}
		}
		switch {
		case flags.Changed("locked"):
			err = repo.SetListLocked(name, true)
		case flags.Changed("unlocked"):
			err = repo.SetListLocked(name, false)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated list %s\n", name)
		return nil
	},
}

var labelCmd = &cobra.Command{
	Use:   "label",
	Short: "Rename or remove labels across the board",
}

var labelRenameCmd = &cobra.Command{
	Use:   "rename <old> <new>",
	Short: "Rename a label on every card, keeping its color",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := loadBoard(cmd)
		if err != nil {
			return err
		}
		n, err := repo.RenameLabel(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Renamed label %s to %s on %d cards\n", args[0], args[1], n)
		return nil
	},
}

var labelRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a label from every card",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := loadBoard(cmd)
		if err != nil {
			return err
		}
		n, err := repo.RemoveLabel(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed label %s from %d cards\n", args[0], n)
		return nil
	},
}

func init() {
	cardCmd.AddCommand(cardUpdateCmd)
	listCmd.AddCommand(listSetCmd)
	labelCmd.AddCommand(labelRenameCmd, labelRemoveCmd)
	rootCmd.AddCommand(labelCmd)

	cardUpdateCmd.Flags().StringP("format", "f", "text", "Output format (text, json, yaml)")
	cardUpdateCmd.Flags().StringP("title", "t", "", "New title")
	cardUpdateCmd.Flags().StringSliceP("labels", "l", nil, "Comma separated labels, replacing the current ones")
	cardUpdateCmd.Flags().String("due", "", "Due date as YYYY-MM-DD, empty clears it")
	cardUpdateCmd.Flags().String("body", "", "Markdown body of the card, - reads it from stdin")

	listSetCmd.Flags().String("title", "", "Display title, empty shows the directory name")
	listSetCmd.Flags().Int("limit", 0, "Card limit, 0 for none")
	listSetCmd.Flags().Bool("locked", false, "Lock the list")
	listSetCmd.Flags().Bool("unlocked", false, "Unlock the list")
}

// bodyFlag returns the --body flag, reading stdin when it is "-".
func bodyFlag(cmd *cobra.Command) (string, error) {
	body, _ := cmd.Flags().GetString("body")
	if body != "-" {
		return body, nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}
	return string(data), nil
}

func parseDue(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	due, err := time.Parse(dueLayout, s)
	if err != nil {
		return nil, fmt.Errorf("invalid due date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return &due, nil
}
