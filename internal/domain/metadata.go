package domain

// ProductMetadata is a best-effort scrape of a product page. Every
// field may be empty; callers get no availability guarantee.
type ProductMetadata struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Price       string `json:"price,omitempty"`
}
