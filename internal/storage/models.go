package storage

// News kinds stored in the news table.
const (
	KindNews         = "news"
	KindAnnouncement = "announcement"
)

// News represents a scraped news or announcement item.
type News struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"` // "news" or "announcement"
	Title       string `json:"title"`
	URL         string `json:"url,omitempty"`
	PublishedAt string `json:"published_at,omitempty"` // display date from the portal
	CachedAt    int64  `json:"cached_at"`
}
