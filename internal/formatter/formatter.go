// package formatter provides functions to export course data to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/desertthunder/coursetube/internal/models"
	"github.com/desertthunder/coursetube/internal/shared"
)

// FormatMinutes renders a duration in minutes as "45m" or "1h 05m". A nil duration is "unknown".
func FormatMinutes(m *int) string {
	if m == nil {
		return "unknown"
	}
	if *m < 60 {
		return fmt.Sprintf("%dm", *m)
	}
	return fmt.Sprintf("%dh %02dm", *m/60, *m%60)
}

// FormatSeconds renders a video position as "m:ss" or "h:mm:ss". A nil position is "-".
func FormatSeconds(s *int) string {
	if s == nil {
		return "-"
	}
	h, m, sec := *s/3600, *s%3600/60, *s%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}

// ExportToCSV converts a CourseExport to CSV format with columns: Order, Title, Type, Duration, URL, Video ID
//
// Duration is in minutes and left blank when unknown.
func ExportToCSV(export *models.CourseExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Order", "Title", "Type", "Duration", "URL", "Video ID"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, item := range export.Items {
		duration := ""
		if item.DurationMinutes != nil {
			duration = strconv.Itoa(*item.DurationMinutes)
		}
		record := []string{
			strconv.Itoa(item.OrderIndex),
			item.Title,
			string(item.ItemType),
			duration,
			item.ContentURL,
			item.Metadata.ExternalVideoID,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a CourseExport to Markdown format with optional cover image
func ExportToMarkdown(export *models.CourseExport, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer
	course := export.Course

	buf.WriteString(fmt.Sprintf("# %s\n\n", course.Title))

	if imageFilename != "" {
		buf.WriteString(fmt.Sprintf("![Cover](%s)\n\n", imageFilename))
	}

	if course.Description != "" {
		buf.WriteString(fmt.Sprintf("**Description**: %s\n\n", course.Description))
	}
	if course.SourceURL != "" {
		buf.WriteString(fmt.Sprintf("**Source**: %s\n", course.SourceURL))
	}

	total := course.TotalMinutes
	buf.WriteString(fmt.Sprintf("**Items**: %d\n", len(export.Items)))
	buf.WriteString(fmt.Sprintf("**Total time**: %s\n\n", FormatMinutes(&total)))

	buf.WriteString("## Items\n\n")
	for i, item := range export.Items {
		title := item.Title
		if item.ContentURL != "" {
			title = fmt.Sprintf("[%s](%s)", item.Title, item.ContentURL)
		}
		buf.WriteString(fmt.Sprintf("%d. %s (%s) [%s]\n", i+1, title, item.ItemType, FormatMinutes(item.DurationMinutes)))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a CourseExport to plain text format
func ExportToText(export *models.CourseExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Course: %s\n", export.Course.Title))
	if export.Course.Description != "" {
		buf.WriteString(fmt.Sprintf("Description: %s\n", export.Course.Description))
	}
	buf.WriteString(fmt.Sprintf("Items: %d\n\n", len(export.Items)))

	for i, item := range export.Items {
		buf.WriteString(fmt.Sprintf("%d. %s [%s]\n", i+1, item.Title, FormatMinutes(item.DurationMinutes)))
	}

	return buf.Bytes(), nil
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// ToMetadataJSON generates a JSON representation of course metadata (without items)
func ToMetadataJSON(course models.CourseSummary) ([]byte, error) {
	return shared.MarshalJSON(course, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	ItemsFile    string
	MetadataFile string
}

// WriteCSVExport exports a course to CSV format with accompanying metadata JSON file.
//
// Defaults to the course ID as the base filename & creates {base}_items.csv and {base}_metadata.json
func WriteCSVExport(export *models.CourseExport, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = export.Course.ID
	}

	csvData, err := ExportToCSV(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	itemsFile := baseFilepath + "_items.csv"
	if err := os.WriteFile(itemsFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(export.Course)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		ItemsFile:    itemsFile,
		MetadataFile: metadataFile,
	}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport exports a course to Markdown format in a dedicated directory.
//
// Directory name defaults to the course ID.
// The imageURL parameter is optional - if provided, attempts to download the cover image.
// Creates a directory structure: {dir}/README.md and optionally {dir}/cover.jpg
func WriteMarkdownExport(export *models.CourseExport, outputDir string, imageURL string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = export.Course.ID
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if imageURL != "" {
		imageData, err := DownloadImage(imageURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to download cover image: %v\n", err)
		} else {
			coverImageFilename = "cover.jpg"
			coverImagePath := filepath.Join(outputDir, coverImageFilename)
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save cover image: %v\n", err)
				coverImageFilename = ""
			} else {
				result.CoverImage = coverImagePath
				result.Files = append(result.Files, coverImagePath)
			}
		}
	}

	mdData, err := ExportToMarkdown(export, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteTextExport exports a course to plain text format.
//
// Defaults to {course.ID}_items.txt as the filename.
func WriteTextExport(export *models.CourseExport, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("%s_items.txt", export.Course.ID)
	}

	textData, err := ExportToText(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}

// WriteJSONExport writes the full export, items included, as indented JSON.
func WriteJSONExport(export *models.CourseExport, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("%s.json", export.Course.ID)
	}

	data, err := shared.MarshalJSON(export, true)
	if err != nil {
		return "", fmt.Errorf("JSON marshal failed: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("JSON write failed: %w", err)
	}
	return path, nil
}

// ManifestEntry records the outcome of exporting one course in a bulk export.
type ManifestEntry struct {
	CourseID string   `json:"course_id"`
	Title    string   `json:"title"`
	Files    []string `json:"files,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// Manifest summarises a bulk export.
type Manifest struct {
	Format      string          `json:"format"`
	OutputDir   string          `json:"output_dir"`
	Total       int             `json:"total"`
	Successful  int             `json:"successful"`
	Failed      int             `json:"failed"`
	GeneratedAt time.Time       `json:"generated_at"`
	Entries     []ManifestEntry `json:"entries"`
}

// WriteManifest writes m as indented JSON to path.
func WriteManifest(m *Manifest, path string) error {
	data, err := shared.MarshalJSON(m, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
