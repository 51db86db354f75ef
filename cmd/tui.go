package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/coursetube/internal/models"
	"github.com/desertthunder/coursetube/internal/shared"
	"github.com/desertthunder/coursetube/internal/ui"
	"github.com/urfave/cli/v3"
)

const defaultTUILog = "./tmp/coursetube-tui.log"

// TUI launches the interactive terminal UI for playlist imports.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	user, err := r.resolveUser(cmd.String("user"))
	if err != nil {
		return err
	}
	return r.runTUI(ctx, user, cmd.String("course"), cmd.String("url"))
}

func (r *Runner) runTUI(ctx context.Context, user *models.User, courseID, playlistURL string) error {
	if r.engine == nil {
		return fmt.Errorf("%w: course engine not initialized", shared.ErrServiceUnavailable)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	logPath := r.config.Log.File
	if logPath == "" {
		logPath = defaultTUILog
	}
	fileLogger, err := shared.NewFileLogger(logPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, ui.Options{
		UserID:      user.ID(),
		Courses:     r.courses,
		Engine:      r.engine,
		CourseID:    courseID,
		PlaylistURL: playlistURL,
	})
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
