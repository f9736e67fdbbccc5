package kanban

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/daedalusboard/daedalus/internal/board"
	"github.com/daedalusboard/daedalus/internal/tui/util"
)

const defaultEditor = "vi"

// editorFinishedMsg is sent when the external editor exits. path holds the
// edited copy of the card body.
type editorFinishedMsg struct {
	card   board.Card
	path   string
	before string
	err    error
}

func editorCommand() []string {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if fields := strings.Fields(os.Getenv(env)); len(fields) > 0 {
			return fields
		}
	}
	return []string{defaultEditor}
}

// detailCard is the card shown in the detail view.
func (p *pageCmp) detailCard() (board.Card, bool) {
	col := p.focused()
	if col == nil {
		return board.Card{}, false
	}
	return col.Selected()
}

// editCard suspends the program and opens the card body in $VISUAL or
// $EDITOR. The frontmatter is not part of the edited file.
func (p *pageCmp) editCard(c board.Card) tea.Cmd {
	body, err := p.repo.Body(c.Metadata.ID)
	if err != nil {
		return util.ReportError(err)
	}
	f, err := os.CreateTemp("", fmt.Sprintf("daedalus-%d-*.md", c.Metadata.ID))
	if err != nil {
		return util.ReportError(fmt.Errorf("failed to create temp file: %w", err))
	}
	path := f.Name()
	_, err = f.WriteString(body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return util.ReportError(fmt.Errorf("failed to write temp file: %w", err))
	}

	args := editorCommand()
	cmd := exec.Command(args[0], append(args[1:], path)...)
	slog.Debug("Opening editor", "editor", args[0], "card", c.Metadata.ID, "path", path)
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editorFinishedMsg{card: c, path: path, before: body, err: err}
	})
}

// finishEdit saves the edited body. The metadata is read again so changes
// made on disk while the editor was open are kept.
func (p *pageCmp) finishEdit(msg editorFinishedMsg) tea.Cmd {
	defer os.Remove(msg.path)
	if msg.err != nil {
		return util.ReportError(fmt.Errorf("editor failed: %w", msg.err))
	}
	data, err := os.ReadFile(msg.path)
	if err != nil {
		return util.ReportError(fmt.Errorf("failed to read edited card: %w", err))
	}
	after := string(data)
	if after == msg.before {
		return util.ReportInfo("No changes")
	}

	id := msg.card.Metadata.ID
	current, err := p.repo.Card(id)
	if err != nil {
		return util.ReportError(err)
	}
	updated, err := p.repo.UpdateCard(id, current.Metadata, after)
	if err != nil {
		return util.ReportError(err)
	}

	cmds := []tea.Cmd{p.reload(false)}
	for _, col := range p.columns {
		if col.Name() == updated.List {
			cmds = append(cmds, col.Select(updated.Key()))
			break
		}
	}
	cmds = append(cmds, util.ReportInfo(fmt.Sprintf("Updated card #%d", id)))
	return tea.Batch(cmds...)
}
