package websearch

// Response is the subset of the Google Custom Search JSON API response the
// server consumes. Every field is optional on the wire.
type Response struct {
	SearchInformation *SearchInformation `json:"searchInformation,omitempty"`
	Items             []Item             `json:"items,omitempty"`
}

// SearchInformation carries result-set level statistics. TotalResults is a
// decimal string in the upstream payload.
type SearchInformation struct {
	TotalResults string  `json:"totalResults,omitempty"`
	SearchTime   float64 `json:"searchTime,omitempty"`
}

// Item is a single search hit.
type Item struct {
	Title       string   `json:"title,omitempty"`
	Link        string   `json:"link,omitempty"`
	Snippet     string   `json:"snippet,omitempty"`
	DisplayLink string   `json:"displayLink,omitempty"`
	Pagemap     *Pagemap `json:"pagemap,omitempty"`
}

// Pagemap holds structured data scraped from the result page.
type Pagemap struct {
	CSEImage []CSEImage          `json:"cse_image,omitempty"`
	Metatags []map[string]string `json:"metatags,omitempty"`
}

// CSEImage is a preview image reference.
type CSEImage struct {
	Src string `json:"src,omitempty"`
}

// PublishedTime returns the article publication timestamp from the page
// metatags, or empty when absent.
func (i Item) PublishedTime() string {
	if i.Pagemap == nil {
		return ""
	}
	for _, tags := range i.Pagemap.Metatags {
		if published, ok := tags["article:published_time"]; ok && published != "" {
			return published
		}
	}
	return ""
}

// PreviewImage returns the first preview image URL, or empty when absent.
func (i Item) PreviewImage() string {
	if i.Pagemap == nil || len(i.Pagemap.CSEImage) == 0 {
		return ""
	}
	return i.Pagemap.CSEImage[0].Src
}
