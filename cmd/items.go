package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/coursetube/internal/formatter"
	"github.com/desertthunder/coursetube/internal/models"
	"github.com/desertthunder/coursetube/internal/shared"
	"github.com/urfave/cli/v3"
)

// ItemsAdd appends a hand-written item to the end of a course.
func (r *Runner) ItemsAdd(ctx context.Context, cmd *cli.Command) error {
	user, err := r.resolveUser(cmd.String("user"))
	if err != nil {
		return err
	}

	course, err := r.courses.GetOwned(cmd.String("course"), user.ID())
	if err != nil {
		return err
	}

	var duration *int
	if d := int(cmd.Int("duration")); d >= 0 {
		duration = &d
	}

	item := models.NewCourseItem(0, course.ID(), user.ID(), models.CourseItemDraft{
		Title:           cmd.String("title"),
		Description:     cmd.String("description"),
		ItemType:        models.ParseItemType(cmd.String("type")),
		ContentURL:      cmd.String("url"),
		DurationMinutes: duration,
	})
	if err := r.items.Append(item); err != nil {
		return err
	}

	r.logger.Info("course item created", "id", item.ID(), "course", course.ID(), "order", item.OrderIndex())
	return r.writePlain("✓ Added %q to %q at position %d\nID: %s\n", item.Title(), course.Title(), item.OrderIndex()+1, item.ID())
}

// ItemsList prints a course's items in order.
func (r *Runner) ItemsList(ctx context.Context, cmd *cli.Command) error {
	user, err := r.resolveUser(cmd.String("user"))
	if err != nil {
		return err
	}

	course, err := r.courses.GetOwned(cmd.String("course"), user.ID())
	if err != nil {
		return err
	}
	items, err := r.items.ListByCourse(course.ID())
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(items, true)
	}

	r.writePlain("%s (%d items)\n\n", course.Title(), len(items))
	for _, item := range items {
		r.writePlain("%3d. [%s] %s\n", item.OrderIndex()+1, item.ItemType(), item.Title())
		r.writePlain("     ID: %s  Duration: %s\n", item.ID(), formatter.FormatMinutes(item.DurationMinutes()))
		if item.ContentURL() != "" {
			r.writePlain("     %s\n", item.ContentURL())
		}
	}
	return nil
}

// ItemsOpen opens an item's content URL in the default browser.
func (r *Runner) ItemsOpen(ctx context.Context, cmd *cli.Command) error {
	user, err := r.resolveUser(cmd.String("user"))
	if err != nil {
		return err
	}
	itemID := cmd.StringArg("id")
	if itemID == "" {
		return fmt.Errorf("%w: item id is required", shared.ErrMissingArgument)
	}

	item, err := r.items.Get(itemID)
	if err != nil {
		return err
	}
	if item.UserID() != user.ID() {
		return fmt.Errorf("%w: %s", shared.ErrItemNotFound, itemID)
	}
	if item.ContentURL() == "" {
		return fmt.Errorf("%w: item %q has no content URL", shared.ErrInvalidArgument, item.Title())
	}

	if err := shared.OpenBrowser(item.ContentURL()); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		return r.writePlain("Open this URL in your browser:\n%s\n", item.ContentURL())
	}
	return r.writePlain("→ Opened %s\n", item.ContentURL())
}
