package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/coursetube/internal/formatter"
	"github.com/desertthunder/coursetube/internal/models"
	"github.com/desertthunder/coursetube/internal/shared"
	"github.com/desertthunder/coursetube/internal/tasks"
	"github.com/urfave/cli/v3"
)

type courseDetail struct {
	Course *models.Course       `json:"course"`
	Items  []*models.CourseItem `json:"items"`
	Stats  models.ProgressStats `json:"stats"`
}

// CoursesCreate creates an empty course owned by --user.
func (r *Runner) CoursesCreate(ctx context.Context, cmd *cli.Command) error {
	user, err := r.resolveUser(cmd.String("user"))
	if err != nil {
		return err
	}

	course := models.NewCourse(0, user.ID(), strings.TrimSpace(cmd.String("title")), cmd.String("description"))
	if err := r.courses.Create(course); err != nil {
		return err
	}

	r.logger.Info("course created", "id", course.ID(), "user", user.ID())
	r.writePlain("✓ Created course %q\n", course.Title())
	r.writePlain("ID: %s\n", course.ID())
	return r.writePlain("\nImport a playlist with: coursetube import playlist --course %s --url <playlist url>\n", course.ID())
}

// CoursesList prints the courses of --user.
func (r *Runner) CoursesList(ctx context.Context, cmd *cli.Command) error {
	user, err := r.resolveUser(cmd.String("user"))
	if err != nil {
		return err
	}

	courses, err := r.courses.List(map[string]any{"user_id": user.ID()})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(courses, true)
	}

	if len(courses) == 0 {
		return r.writePlain("No courses yet.\n")
	}

	r.writePlain("Found %d courses:\n\n", len(courses))
	for i, c := range courses {
		r.writePlain("%d. %s\n", i+1, c.Title())
		r.writePlain("   ID: %s\n", c.ID())
		if c.SourceURL() != "" {
			r.writePlain("   Source: %s\n", c.SourceURL())
		}
	}
	return nil
}

// CoursesShow prints one course with its items and the user's progress through it.
func (r *Runner) CoursesShow(ctx context.Context, cmd *cli.Command) error {
	user, err := r.resolveUser(cmd.String("user"))
	if err != nil {
		return err
	}
	courseID := cmd.StringArg("id")
	if courseID == "" {
		return fmt.Errorf("%w: course id is required", shared.ErrMissingArgument)
	}

	course, err := r.courses.GetOwned(courseID, user.ID())
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
	detail := courseDetail{Course: course, Items: items, Stats: models.CalculateProgressStats(items, records)}

	if cmd.Bool("json") {
		return r.writeJSON(detail, true)
	}

	r.writePlainHeader(course.Title())
	if course.Description() != "" {
		r.writePlain("%s\n\n", course.Description())
	}
	if course.SourceURL() != "" {
		r.writePlain("Source: %s\n", course.SourceURL())
	}
	r.writePlain("Progress: %d%% (%d/%d completed)\n\n", detail.Stats.PercentComplete, detail.Stats.CompletedItems, detail.Stats.TotalItems)

	for _, item := range items {
		r.writePlain("%3d. [%s] %s", item.OrderIndex()+1, item.ItemType(), item.Title())
		if d := item.DurationMinutes(); d != nil {
			r.writePlain(" (%s)", formatter.FormatMinutes(d))
		}
		r.writePlain("\n")
	}
	return nil
}

// CoursesDelete soft-deletes a course and its items.
func (r *Runner) CoursesDelete(ctx context.Context, cmd *cli.Command) error {
	user, err := r.resolveUser(cmd.String("user"))
	if err != nil {
		return err
	}
	courseID := cmd.StringArg("id")
	if courseID == "" {
		return fmt.Errorf("%w: course id is required", shared.ErrMissingArgument)
	}

	course, err := r.courses.GetOwned(courseID, user.ID())
	if err != nil {
		return err
	}
	if err := r.courses.Delete(course.ID()); err != nil {
		return err
	}

	r.logger.Info("course deleted", "id", course.ID())
	return r.writePlain("✓ Deleted course %q\n", course.Title())
}

// CoursesExport writes one course in the requested format, to stdout when --output is empty.
func (r *Runner) CoursesExport(ctx context.Context, cmd *cli.Command) error {
	user, err := r.resolveUser(cmd.String("user"))
	if err != nil {
		return err
	}
	courseID := cmd.StringArg("id")
	if courseID == "" {
		return fmt.Errorf("%w: course id is required", shared.ErrMissingArgument)
	}

	export, err := r.engine.Export(ctx, user.ID(), courseID)
	if err != nil {
		return err
	}

	format := strings.ToLower(cmd.String("format"))
	output := cmd.String("output")

	if output == "" {
		var data []byte
		switch format {
		case "json":
			return r.writeJSON(export, true)
		case "csv":
			data, err = formatter.ExportToCSV(export)
		case "markdown", "md":
			data, err = formatter.ExportToMarkdown(export, "")
		case "txt", "text":
			data, err = formatter.ExportToText(export)
		default:
			return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
		}
		if err != nil {
			return err
		}
		_, err = r.output.Write(data)
		return err
	}

	var files []string
	switch format {
	case "json":
		path, err := formatter.WriteJSONExport(export, output)
		if err != nil {
			return err
		}
		files = append(files, path)
	case "csv":
		res, err := formatter.WriteCSVExport(export, output)
		if err != nil {
			return err
		}
		files = append(files, res.ItemsFile, res.MetadataFile)
	case "markdown", "md":
		imageURL := ""
		if cmd.Bool("cover") {
			imageURL = export.CoverImage()
		}
		res, err := formatter.WriteMarkdownExport(export, output, imageURL)
		if err != nil {
			return err
		}
		files = append(files, res.Files...)
	case "txt", "text":
		path, err := formatter.WriteTextExport(export, output)
		if err != nil {
			return err
		}
		files = append(files, path)
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}

	r.logger.Info("course exported", "id", export.Course.ID, "format", format, "files", len(files))
	r.writePlain("✓ Exported %q (%d items)\n", export.Course.Title, export.Course.ItemCount)
	for _, f := range files {
		r.writePlain("  %s\n", f)
	}
	return nil
}

// CoursesExportAll exports every course of --user with a worker pool and writes a manifest.
func (r *Runner) CoursesExportAll(ctx context.Context, cmd *cli.Command) error {
	user, err := r.resolveUser(cmd.String("user"))
	if err != nil {
		return err
	}

	format := strings.ToLower(cmd.String("format"))
	switch format {
	case "json", "csv", "markdown", "txt":
	case "md":
		format = "markdown"
	case "text":
		format = "txt"
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}

	progressCh, stop := r.followProgress(func(update tasks.ProgressUpdate) {
		r.writePlain("[%d/%d] %s\n", update.Step, update.Total, update.Message)
	})
	result, err := r.engine.BulkExport(ctx, progressCh, user.ID(), tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  cmd.String("output"),
		NumWorkers: int(cmd.Int("workers")),
		WithCovers: cmd.Bool("covers"),
	})
	stop()
	if err != nil {
		return err
	}

	m := result.Manifest
	r.writePlain("\n")
	r.writePlainHeader("Export Complete!")
	r.writePlain("Exported: %d/%d courses\n", m.Successful, m.Total)
	r.writePlain("Output: %s\n", m.OutputDir)
	r.writePlain("Manifest: %s\n", result.ManifestPath)

	if m.Failed > 0 {
		r.writePlain("\nFailed to export %d courses:\n", m.Failed)
		for _, e := range m.Entries {
			if e.Error != "" {
				r.writePlain("  - %s: %s\n", e.Title, e.Error)
			}
		}
	}
	return nil
}
