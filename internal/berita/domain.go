package berita

import "time"

// Berita is a news article shown on the alumni platform.
type Berita struct {
	ID          int64
	Title       string
	Slug        string
	Body        string
	Published   bool
	PublishedAt *time.Time
	AuthorID    int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
