package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/coursetube/internal/formatter"
	"github.com/desertthunder/coursetube/internal/models"
	"github.com/desertthunder/coursetube/internal/shared"
	"github.com/urfave/cli/v3"
)

// ProgressSet records the user's progress on one item. A negative --time keeps the stored time spent.
func (r *Runner) ProgressSet(ctx context.Context, cmd *cli.Command) error {
	user, err := r.resolveUser(cmd.String("user"))
	if err != nil {
		return err
	}

	status, err := models.ParseProgressStatus(cmd.String("status"))
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidArgument, err)
	}

	itemID := cmd.String("item")
	item, err := r.items.Get(itemID)
	if err != nil {
		return err
	}
	if item.UserID() != user.ID() {
		return fmt.Errorf("%w: %s", shared.ErrItemNotFound, itemID)
	}

	record := &models.Progress{
		UserID:             user.ID(),
		CourseID:           item.CourseID(),
		CourseItemID:       item.ID(),
		Status:             status,
		ProgressPercentage: int(cmd.Int("percent")),
	}
	switch existing, err := r.progress.Get(user.ID(), item.ID()); {
	case err == nil:
		record.TimeSpentMinutes = existing.TimeSpentMinutes
	case !errors.Is(err, shared.ErrNotFound):
		return err
	}
	if t := int(cmd.Int("time")); t >= 0 {
		record.TimeSpentMinutes = t
	}

	if err := r.progress.Upsert(record); err != nil {
		return err
	}

	r.logger.Info("progress updated", "item", item.ID(), "status", record.Status)
	return r.writePlain("✓ %s: %s (%d%%, %s spent)\n",
		item.Title(), record.Status, record.ProgressPercentage, formatter.FormatMinutes(&record.TimeSpentMinutes))
}

// ProgressShow prints per-item status and the course totals.
func (r *Runner) ProgressShow(ctx context.Context, cmd *cli.Command) error {
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
	records, err := r.progress.ListByCourse(user.ID(), course.ID())
	if err != nil {
		return err
	}
	stats := models.CalculateProgressStats(items, records)

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"progress": records, "stats": stats}, true)
	}

	byItem := make(map[string]models.Progress, len(records))
	for _, rec := range records {
		byItem[rec.CourseItemID] = rec
	}

	r.writePlainHeader(course.Title())
	for _, item := range items {
		mark := " "
		rec, ok := byItem[item.ID()]
		switch {
		case ok && rec.Status == models.StatusCompleted:
			mark = "✓"
		case ok && rec.Status == models.StatusInProgress:
			mark = "…"
		}
		r.writePlain("[%s] %3d. %s", mark, item.OrderIndex()+1, item.Title())
		if ok && rec.Status == models.StatusInProgress {
			r.writePlain(" (%d%%)", rec.ProgressPercentage)
		}
		r.writePlain("\n")
	}

	r.writePlain("\nCompleted: %d/%d (%d%%)\n", stats.CompletedItems, stats.TotalItems, stats.PercentComplete)
	r.writePlain("In progress: %d  Not started: %d\n", stats.InProgressItems, stats.NotStartedItems)
	r.writePlain("Time spent: %s\n", formatter.FormatMinutes(&stats.TotalTimeMinutes))
	r.writePlain("Estimated remaining: %s\n", formatter.FormatMinutes(&stats.EstimatedRemaining))
	return nil
}
