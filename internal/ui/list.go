package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/coursetube/internal/models"
)

var _ list.Item = courseItem{}

// courseItem wraps [models.Course] to implement [list.Item].
type courseItem struct {
	course *models.Course
}

func (i courseItem) FilterValue() string { return i.course.Title() }
func (i courseItem) Title() string {
	return fmt.Sprintf("#%d %s", i.course.Sequence(), i.course.Title())
}
func (i courseItem) Description() string {
	switch {
	case i.course.SourceURL() != "":
		return "from " + i.course.SourceURL()
	case i.course.Description() != "":
		return i.course.Description()
	default:
		return "no items imported yet"
	}
}
