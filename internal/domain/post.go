package domain

import (
	"strings"
	"time"
)

// Post status values.
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
)

// Post is a blog entry authored by a user.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Summary   string    `json:"summary"`
	AuthorID  string    `json:"author_id"`
	Tags      []string  `json:"tags"`
	Status    string    `json:"status"`
	ReadTime  int       `json:"read_time"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsValidPostStatus reports whether status is one of the known values.
func IsValidPostStatus(status string) bool {
	return status == PostStatusDraft || status == PostStatusPublished
}

const wordsPerMinute = 200

// EstimateReadTime returns the reading time of content in whole minutes,
// rounded up, with a floor of one minute for non-empty content.
func EstimateReadTime(content string) int {
	words := len(strings.Fields(content))
	if words == 0 {
		return 0
	}
	return (words + wordsPerMinute - 1) / wordsPerMinute
}
