package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/coursetube/internal/formatter"
	"github.com/desertthunder/coursetube/internal/models"
	"github.com/desertthunder/coursetube/internal/shared"
	"github.com/urfave/cli/v3"
)

func noteDraft(cmd *cli.Command) models.NoteDraft {
	draft := models.NoteDraft{Title: cmd.String("title"), Content: cmd.String("content")}
	if at := int(cmd.Int("at")); at != 0 {
		draft.TimestampSeconds = &at
	}
	return draft
}

// NotesAdd attaches a note to one of the user's course items.
func (r *Runner) NotesAdd(ctx context.Context, cmd *cli.Command) error {
	user, err := r.resolveUser(cmd.String("user"))
	if err != nil {
		return err
	}

	itemID := cmd.String("item")
	item, err := r.items.Get(itemID)
	if err != nil {
		return err
	}
	if item.UserID() != user.ID() {
		return fmt.Errorf("%w: %s", shared.ErrItemNotFound, itemID)
	}

	note := models.NewNote(0, user.ID(), item.CourseID(), item.ID(), noteDraft(cmd))
	if err := r.notes.Create(note); err != nil {
		return err
	}

	r.logger.Info("note created", "id", note.ID(), "item", item.ID())
	return r.writePlain("✓ Noted on %q\nID: %s\n", item.Title(), note.ID())
}

// NotesList prints notes for an item, or for a whole course when no item is given.
func (r *Runner) NotesList(ctx context.Context, cmd *cli.Command) error {
	user, err := r.resolveUser(cmd.String("user"))
	if err != nil {
		return err
	}

	var notes []*models.Note
	switch itemID, courseID := cmd.String("item"), cmd.String("course"); {
	case itemID != "":
		notes, err = r.notes.ListByItem(user.ID(), itemID)
	case courseID != "":
		notes, err = r.notes.ListByCourse(user.ID(), courseID)
	default:
		return fmt.Errorf("%w: --item or --course is required", shared.ErrMissingArgument)
	}
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(notes, true)
	}

	if len(notes) == 0 {
		return r.writePlain("No notes\n")
	}
	for _, n := range notes {
		title := n.Title()
		if title == "" {
			title = "(untitled)"
		}
		r.writePlain("[%s] %s  @ %s\n", n.ID(), title, formatter.FormatSeconds(n.TimestampSeconds()))
		r.writePlain("    %s\n", n.Content())
	}
	return nil
}

// NotesEdit replaces a note's title, text and position.
func (r *Runner) NotesEdit(ctx context.Context, cmd *cli.Command) error {
	user, err := r.resolveUser(cmd.String("user"))
	if err != nil {
		return err
	}
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: note id is required", shared.ErrMissingArgument)
	}

	note, err := r.notes.GetOwned(id, user.ID())
	if err != nil {
		return err
	}
	note.Edit(noteDraft(cmd))
	if err := r.notes.Update(note); err != nil {
		return err
	}
	return r.writePlain("✓ Updated note %s\n", note.ID())
}

// NotesDelete removes one of the user's notes.
func (r *Runner) NotesDelete(ctx context.Context, cmd *cli.Command) error {
	user, err := r.resolveUser(cmd.String("user"))
	if err != nil {
		return err
	}
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: note id is required", shared.ErrMissingArgument)
	}

	if err := r.notes.DeleteOwned(id, user.ID()); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted note %s\n", id)
}
