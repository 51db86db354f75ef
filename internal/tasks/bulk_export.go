package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/coursetube/internal/formatter"
	"github.com/desertthunder/coursetube/internal/models"
	"github.com/desertthunder/coursetube/internal/shared"
	"golang.org/x/time/rate"
)

// BulkExportOpts contains configuration for bulk course exports.
type BulkExportOpts struct {
	Format     string  // Export format: json, csv, markdown, txt
	OutputDir  string  // Base output directory (default: course_export_{epoch})
	NumWorkers int     // Concurrent workers (default: 5, max 10)
	RateLimit  float64 // Cover image downloads per second (default: 5)
	WithCovers bool    // Download the first thumbnail as cover image for markdown exports
}

// BulkExportResult summarises a bulk export.
type BulkExportResult struct {
	Manifest     *formatter.Manifest
	ManifestPath string
}

type courseExportJob struct {
	export *models.CourseExport
}

// BulkExport exports every course owned by userID concurrently and writes a manifest.
//
// This method implements a worker pool pattern. Cover downloads share a rate limiter since they hit the
// platform's image CDN, and a course that fails to export is recorded in the manifest without stopping the rest.
func (e *CourseEngine) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	userID string,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	if e.courses == nil || e.items == nil {
		return nil, fmt.Errorf("%w: course storage not initialized", shared.ErrServiceUnavailable)
	}

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("course_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	courses, err := e.courses.List(map[string]any{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	manifest := &formatter.Manifest{
		Format:    opts.Format,
		OutputDir: opts.OutputDir,
		Total:     len(courses),
		Entries:   make([]formatter.ManifestEntry, 0, len(courses)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan courseExportJob, len(courses))
	results := make(chan formatter.ManifestEntry, len(courses))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, limiter, jobs, results, opts)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(jobs)
		for i, course := range courses {
			if ctx.Err() != nil {
				return
			}

			export, err := e.export(course)
			if err != nil {
				results <- formatter.ManifestEntry{CourseID: course.ID(), Title: course.Title(), Error: err.Error()}
				continue
			}

			e.sendProgress(prog, exportingCourseUpdate(i+1, len(courses), course.Title()))
			jobs <- courseExportJob{export: export}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		manifest.Entries = append(manifest.Entries, res)

		if res.Error == "" {
			manifest.Successful++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(courses), res.Title, len(res.Files)))
		} else {
			manifest.Failed++
			e.sendProgress(prog, exportFailedUpdate(completed, len(courses), res.Title, fmt.Errorf("%s", res.Error)))
		}
	}
	manifest.GeneratedAt = time.Now()

	result := &BulkExportResult{Manifest: manifest}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteManifest(manifest, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker is a worker goroutine that writes courses from the jobs channel.
func (e *CourseEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan courseExportJob,
	results chan<- formatter.ManifestEntry,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		if ctx.Err() != nil {
			return
		}
		results <- e.exportSingleCourse(ctx, limiter, job.export, opts)
	}
}

// exportSingleCourse writes one course in the requested format.
func (e *CourseEngine) exportSingleCourse(
	ctx context.Context,
	limiter *rate.Limiter,
	export *models.CourseExport,
	opts BulkExportOpts,
) formatter.ManifestEntry {
	entry := formatter.ManifestEntry{
		CourseID: export.Course.ID,
		Title:    export.Course.Title,
	}
	base := filepath.Join(opts.OutputDir, export.Course.ID)

	switch opts.Format {
	case "csv":
		csvRes, err := formatter.WriteCSVExport(export, base)
		if err != nil {
			entry.Error = fmt.Sprintf("CSV export failed: %v", err)
			return entry
		}
		entry.Files = []string{csvRes.ItemsFile, csvRes.MetadataFile}

	case "markdown":
		var imageURL string
		if opts.WithCovers {
			if err := limiter.Wait(ctx); err == nil {
				imageURL = export.CoverImage()
			}
		}

		mdRes, err := formatter.WriteMarkdownExport(export, base, imageURL)
		if err != nil {
			entry.Error = fmt.Sprintf("markdown export failed: %v", err)
			return entry
		}
		entry.Files = mdRes.Files

	case "txt":
		path, err := formatter.WriteTextExport(export, base+"_items.txt")
		if err != nil {
			entry.Error = fmt.Sprintf("text export failed: %v", err)
			return entry
		}
		entry.Files = []string{path}

	case "json":
		fallthrough
	default:
		path, err := formatter.WriteJSONExport(export, base+".json")
		if err != nil {
			entry.Error = err.Error()
			return entry
		}
		entry.Files = []string{path}
	}
	return entry
}
