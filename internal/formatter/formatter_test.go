package formatter

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/coursetube/internal/models"
	th "github.com/desertthunder/coursetube/internal/testing"
)

func intPtr(n int) *int { return &n }

// inTempDir switches into a fresh temp dir for the rest of the test.
func inTempDir(t *testing.T) {
	t.Helper()
	tempDir := t.TempDir()
	originalDir := th.MustGetwd(t)
	th.MustChdir(t, tempDir)
	t.Cleanup(func() { th.MustChdir(t, originalDir) })
}

func testExport() *models.CourseExport {
	return &models.CourseExport{
		Course: models.CourseSummary{
			ID:           "course123",
			Sequence:     3,
			Title:        "Go Basics",
			Description:  "Learn Go from a playlist",
			SourceURL:    "https://www.youtube.com/playlist?list=PL1",
			ItemCount:    3,
			TotalMinutes: 66,
		},
		Items: []models.CourseItemDraft{
			{
				Title:           "Intro",
				ItemType:        models.ItemVideo,
				ContentURL:      "https://www.youtube.com/watch?v=vid1",
				DurationMinutes: intPtr(6),
				OrderIndex:      0,
				Metadata:        models.ItemMetadata{ExternalVideoID: "vid1", ThumbnailURL: "https://i.ytimg.com/vi/vid1/hq.jpg"},
			},
			{
				Title:           "Deep dive, part 1",
				ItemType:        models.ItemVideo,
				ContentURL:      "https://www.youtube.com/watch?v=vid2",
				DurationMinutes: intPtr(60),
				OrderIndex:      1,
				Metadata:        models.ItemMetadata{ExternalVideoID: "vid2"},
			},
			{
				Title:      "Read the tour",
				ItemType:   models.ItemReading,
				OrderIndex: 2,
			},
		},
	}
}

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		name string
		in   *int
		want string
	}{
		{"unknown", nil, "unknown"},
		{"zero", intPtr(0), "0m"},
		{"minutes only", intPtr(45), "45m"},
		{"exact hour", intPtr(60), "1h 00m"},
		{"hours and minutes", intPtr(125), "2h 05m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatMinutes(tt.in); got != tt.want {
				t.Errorf("FormatMinutes() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		in   *int
		want string
	}{
		{nil, "-"},
		{intPtr(5), "0:05"},
		{intPtr(95), "1:35"},
		{intPtr(3725), "1:02:05"},
	}

	for _, tt := range tests {
		if got := FormatSeconds(tt.in); got != tt.want {
			t.Errorf("FormatSeconds(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(testExport())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Order,Title,Type,Duration,URL,Video ID") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "0,Intro,video,6,https://www.youtube.com/watch?v=vid1,vid1") {
			t.Errorf("CSV missing first item, got: %s", output)
		}
		if !strings.Contains(output, `"Deep dive, part 1"`) {
			t.Errorf("CSV should quote titles containing commas, got: %s", output)
		}
		if !strings.Contains(output, "2,Read the tour,reading,,,") {
			t.Errorf("CSV should leave unknown duration blank, got: %s", output)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		t.Run("without cover image", func(t *testing.T) {
			data, err := ExportToMarkdown(testExport(), "")
			if err != nil {
				t.Fatalf("ExportToMarkdown failed: %v", err)
			}

			output := string(data)
			for _, want := range []string{
				"# Go Basics",
				"**Description**: Learn Go from a playlist",
				"**Source**: https://www.youtube.com/playlist?list=PL1",
				"**Items**: 3",
				"**Total time**: 1h 06m",
				"1. [Intro](https://www.youtube.com/watch?v=vid1) (video) [6m]",
				"3. Read the tour (reading) [unknown]",
			} {
				if !strings.Contains(output, want) {
					t.Errorf("Markdown missing %q, got:\n%s", want, output)
				}
			}
			if strings.Contains(output, "![Cover]") {
				t.Error("Markdown should not include cover without filename")
			}
		})

		t.Run("with cover image", func(t *testing.T) {
			data, err := ExportToMarkdown(testExport(), "cover.jpg")
			if err != nil {
				t.Fatalf("ExportToMarkdown failed: %v", err)
			}
			if !strings.Contains(string(data), "![Cover](cover.jpg)") {
				t.Error("Markdown missing cover image reference")
			}
		})
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(testExport())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Course: Go Basics") {
			t.Errorf("Text missing course title")
		}
		if !strings.Contains(output, "Items: 3") {
			t.Errorf("Text missing item count")
		}
		if !strings.Contains(output, "2. Deep dive, part 1 [1h 00m]") {
			t.Errorf("Text missing item listing, got:\n%s", output)
		}
	})

	t.Run("ToMetadataJSON", func(t *testing.T) {
		data, err := ToMetadataJSON(testExport().Course)
		if err != nil {
			t.Fatalf("ToMetadataJSON failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, `"id": "course123"`) || !strings.Contains(output, `"total_minutes": 66`) {
			t.Errorf("metadata JSON missing fields, got: %s", output)
		}
		if strings.Contains(output, "Intro") {
			t.Error("metadata JSON should not include items")
		}
	})
}

func TestDownloadImage(t *testing.T) {
	t.Run("EmptyURL", func(t *testing.T) {
		if _, err := DownloadImage(""); err == nil {
			t.Error("DownloadImage with empty URL should return error")
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		if _, err := DownloadImage(srv.URL); err == nil {
			t.Error("DownloadImage should fail on 404")
		}
	})
}

func TestWriters(t *testing.T) {
	t.Run("WriteCSVExport", func(t *testing.T) {
		t.Run("WithDefaultPath", func(t *testing.T) {
			inTempDir(t)

			result, err := WriteCSVExport(testExport(), "")
			if err != nil {
				t.Fatalf("WriteCSVExport failed: %v", err)
			}

			if result.ItemsFile != "course123_items.csv" {
				t.Errorf("Expected items file 'course123_items.csv', got '%s'", result.ItemsFile)
			}
			if result.MetadataFile != "course123_metadata.json" {
				t.Errorf("Expected metadata file 'course123_metadata.json', got '%s'", result.MetadataFile)
			}

			th.AssertFileExists(t, result.ItemsFile)
			th.AssertFileExists(t, result.MetadataFile)

			if content := th.MustReadFile(t, result.ItemsFile); !strings.Contains(content, "Intro") {
				t.Errorf("CSV missing item data")
			}
			if content := th.MustReadFile(t, result.MetadataFile); !strings.Contains(content, "Go Basics") {
				t.Errorf("Metadata JSON missing title")
			}
		})

		t.Run("WithCustomPath", func(t *testing.T) {
			base := filepath.Join(t.TempDir(), "custom_export")

			result, err := WriteCSVExport(testExport(), base)
			if err != nil {
				t.Fatalf("WriteCSVExport failed: %v", err)
			}
			if result.ItemsFile != base+"_items.csv" {
				t.Errorf("Expected '%s_items.csv', got '%s'", base, result.ItemsFile)
			}
			th.AssertFileExists(t, result.MetadataFile)
		})
	})

	t.Run("WriteMarkdownExport", func(t *testing.T) {
		t.Run("WithDefaultDirectory", func(t *testing.T) {
			inTempDir(t)

			result, err := WriteMarkdownExport(testExport(), "", "")
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}

			if result.Directory != "course123" {
				t.Errorf("Expected directory 'course123', got '%s'", result.Directory)
			}
			th.AssertDirExists(t, result.Directory)

			content := th.MustReadFile(t, filepath.Join(result.Directory, "README.md"))
			if !strings.Contains(content, "# Go Basics") {
				t.Errorf("Markdown missing title")
			}
			if result.CoverImage != "" {
				t.Errorf("Expected no cover image, got '%s'", result.CoverImage)
			}
		})

		t.Run("WithCoverImage", func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "image/jpeg")
				w.Write([]byte("jpeg-bytes"))
			}))
			defer srv.Close()

			dir := filepath.Join(t.TempDir(), "course")
			result, err := WriteMarkdownExport(testExport(), dir, srv.URL+"/cover.jpg")
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}

			if result.CoverImage != filepath.Join(dir, "cover.jpg") {
				t.Errorf("unexpected cover path %q", result.CoverImage)
			}
			if got := th.MustReadFile(t, result.CoverImage); got != "jpeg-bytes" {
				t.Errorf("cover image content = %q", got)
			}
			if len(result.Files) != 2 {
				t.Errorf("expected cover and README, got %v", result.Files)
			}
			if content := th.MustReadFile(t, filepath.Join(dir, "README.md")); !strings.Contains(content, "![Cover](cover.jpg)") {
				t.Error("README missing cover reference")
			}
		})
	})

	t.Run("WriteTextExport", func(t *testing.T) {
		inTempDir(t)

		path, err := WriteTextExport(testExport(), "")
		if err != nil {
			t.Fatalf("WriteTextExport failed: %v", err)
		}
		if path != "course123_items.txt" {
			t.Errorf("Expected 'course123_items.txt', got '%s'", path)
		}
		if content := th.MustReadFile(t, path); !strings.Contains(content, "Course: Go Basics") {
			t.Errorf("Text missing course title")
		}
	})

	t.Run("WriteJSONExport", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "course.json")

		got, err := WriteJSONExport(testExport(), path)
		if err != nil {
			t.Fatalf("WriteJSONExport failed: %v", err)
		}
		content := th.MustReadFile(t, got)
		if !strings.Contains(content, `"youtube_video_id": "vid1"`) {
			t.Errorf("JSON missing item metadata, got: %s", content)
		}
	})

	t.Run("WriteManifest", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "export_manifest.json")
		m := &Manifest{
			Format:     "csv",
			Total:      2,
			Successful: 1,
			Failed:     1,
			Entries: []ManifestEntry{
				{CourseID: "a", Title: "A", Files: []string{"a_items.csv"}},
				{CourseID: "b", Title: "B", Error: "disk full"},
			},
		}

		if err := WriteManifest(m, path); err != nil {
			t.Fatalf("WriteManifest failed: %v", err)
		}
		content := th.MustReadFile(t, path)
		if !strings.Contains(content, `"error": "disk full"`) || !strings.Contains(content, `"successful": 1`) {
			t.Errorf("manifest missing fields, got: %s", content)
		}
	})
}
