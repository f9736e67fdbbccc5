package tui

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	tea "charm.land/bubbletea/v2"
	"github.com/daedalusboard/daedalus/internal/board"
	"github.com/daedalusboard/daedalus/internal/config"
	"github.com/daedalusboard/daedalus/internal/log"
	"github.com/daedalusboard/daedalus/internal/tui/page/kanban"
)

// appModel is the root model. It owns the window size and hands everything
// else to the board page.
type appModel struct {
	title         string
	width, height int
	page          kanban.Page
}

func New(repo board.Repository, cfg *config.Config) tea.Model {
	return &appModel{
		title: repo.Title(),
		page:  kanban.New(repo, cfg),
	}
}

func (a *appModel) Init() tea.Cmd {
	return a.page.Init()
}

func (a *appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		return a, a.page.SetSize(msg.Width, msg.Height)
	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
	}
	u, cmd := a.page.Update(msg)
	a.page = u.(kanban.Page)
	return a, cmd
}

func (a *appModel) View() tea.View {
	v := tea.NewView(a.page.View())
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	v.WindowTitle = "daedalus · " + a.title
	return v
}

// Run starts the UI and reloads the board whenever it changes on disk. It
// returns when the user quits or ctx is done.
func Run(ctx context.Context, repo board.Repository, cfg *config.Config) error {
	program := tea.NewProgram(New(repo, cfg), tea.WithContext(ctx))

	logDir := filepath.Dir(cfg.LogFile())
	watcher, err := board.NewWatcher(ctx, repo.Root(), func() {
		defer log.RecoverPanic(logDir, "board-watcher", nil)
		program.Send(kanban.BoardChangedMsg{})
	})
	if err != nil {
		slog.Warn("Board watcher disabled", "error", err)
	} else {
		defer watcher.Close()
	}

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run board UI: %w", err)
	}
	return nil
}
