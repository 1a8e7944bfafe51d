// Package catalog holds the agency's public portfolio: categories, works, services and likes.
package catalog

import "time"

type Category struct {
	ID        int64     `db:"id"`
	Title     string    `db:"title"`
	CreatedAt time.Time `db:"created_at"`
}

// Work is one portfolio entry. CategoryID is nil once its category has been deleted.
type Work struct {
	ID             int64     `db:"id"`
	Title          string    `db:"title"`
	Description    string    `db:"description"`
	ImgURL         string    `db:"img_url"`
	OtherImageURLs []string  `db:"other_image_urls"`
	CategoryID     *int64    `db:"category_id"`
	CreatedAt      time.Time `db:"created_at"`
}

// Images returns every image URL the work references.
func (w *Work) Images() []string {
	out := make([]string, 0, 1+len(w.OtherImageURLs))
	if w.ImgURL != "" {
		out = append(out, w.ImgURL)
	}
	return append(out, w.OtherImageURLs...)
}

// Offering is a service listed on the agency's services page.
type Offering struct {
	ID          int64     `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	ImgURL      string    `db:"img_url"`
	CreatedAt   time.Time `db:"created_at"`
}

// WorkFilter narrows a work listing.
type WorkFilter struct {
	Skip       int
	Limit      int
	CategoryID *int64
}
