package domain

import (
	"time"
)

// Product is an item in the affiliate catalog.
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Thumbnail     string    `json:"thumbnail"`
	Price         float64   `json:"price"`
	AffiliateLink string    `json:"affiliate_link,omitempty"`
	Categories    []string  `json:"categories"`
	Tags          []string  `json:"tags"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
