package domain

import "time"

type StockStatus string

const (
	StockStatusInStock    StockStatus = "in_stock"
	StockStatusOutOfStock StockStatus = "out_of_stock"
)

func (s StockStatus) Valid() bool {
	return s == StockStatusInStock || s == StockStatusOutOfStock
}

func (s StockStatus) String() string {
	return string(s)
}

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ProductImage is one entry of a product's image carousel, ordered by Position.
type ProductImage struct {
	ID       string `json:"id"`
	ImageURL string `json:"image_url"`
	Position int    `json:"position"`
}

type Product struct {
	ID           string         `json:"id"`
	CategoryID   string         `json:"category_id,omitempty"`
	CategoryName string         `json:"category_name,omitempty"`
	Name         string         `json:"name"`
	Description  string         `json:"description,omitempty"`
	Price        float64        `json:"price"`
	ImageURL     string         `json:"image_url,omitempty"`
	StockStatus  StockStatus    `json:"stock_status"`
	IsFeatured   bool           `json:"is_featured"`
	Images       []ProductImage `json:"images,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (p Product) InStock() bool {
	return p.StockStatus == StockStatusInStock
}

// ImageURLs returns the carousel URLs in position order, falling back to the
// primary image when no image rows exist.
func (p Product) ImageURLs() []string {
	if len(p.Images) == 0 {
		if p.ImageURL == "" {
			return nil
		}
		return []string{p.ImageURL}
	}
	urls := make([]string, len(p.Images))
	for i, img := range p.Images {
		urls[i] = img.ImageURL
	}
	return urls
}
