package tasks

import (
	"github.com/desertthunder/coursetube/internal/models"
	"github.com/desertthunder/coursetube/internal/youtube"
)

// ProjectItems maps each video of p onto a course item draft, keeping playlist order.
//
// Videos without a duration get a nil DurationMinutes so "unknown" stays distinct from zero.
func ProjectItems(p *models.YouTubePlaylist) []models.CourseItemDraft {
	if p == nil {
		return []models.CourseItemDraft{}
	}

	drafts := make([]models.CourseItemDraft, 0, len(p.Videos))
	for i, v := range p.Videos {
		var duration *int
		if v.Duration != "" {
			minutes := youtube.DurationMinutes(v.Duration)
			duration = &minutes
		}

		drafts = append(drafts, models.CourseItemDraft{
			Title:           v.Title,
			Description:     v.Description,
			ItemType:        models.ItemVideo,
			ContentURL:      v.URL,
			DurationMinutes: duration,
			OrderIndex:      i,
			Metadata: models.ItemMetadata{
				ExternalVideoID: v.ID,
				ThumbnailURL:    v.Thumbnail,
				PlaylistID:      p.ID,
			},
		})
	}
	return drafts
}
