package domain

import "time"

// SitemapStatus is the visibility state of a page in the sitemap.
type SitemapStatus string

const (
	SitemapStatusGhost SitemapStatus = "ghost"
	// SitemapStatusQueued is reserved and not assigned by the pipeline.
	SitemapStatusQueued  SitemapStatus = "queued"
	SitemapStatusIndexed SitemapStatus = "indexed"
)

// GeneratedArticle is a fully assembled article.
// New articles are "ghost published": IsPublished is true but they stay
// out of the sitemap until promoted to indexed.
type GeneratedArticle struct {
	ID                string        `gorm:"type:text;primaryKey" json:"id"`
	SiteID            string        `gorm:"type:text;not null;index:idx_articles_site_status" json:"site_id"`
	CampaignID        string        `gorm:"type:text;index" json:"campaign_id"`
	QueueID           string        `gorm:"type:text;index" json:"queue_id,omitempty"`
	Headline          string        `gorm:"type:text" json:"headline"`
	Slug              string        `gorm:"type:text;index" json:"slug"`
	MetaTitle         string        `gorm:"type:text" json:"meta_title"`
	MetaDescription   string        `gorm:"type:text" json:"meta_description"`
	FullHTMLBody      string        `gorm:"column:full_html_body;type:text" json:"full_html_body"`
	WordCount         int           `json:"word_count"`
	IsPublished       bool          `gorm:"default:false" json:"is_published"`
	IsTestBatch       bool          `gorm:"default:false" json:"is_test_batch"`
	SitemapStatus     SitemapStatus `gorm:"type:text;index:idx_articles_site_status;default:ghost" json:"sitemap_status"`
	DatePublished     time.Time     `gorm:"index" json:"date_published"`
	DateModified      time.Time     `json:"date_modified"`
	IndexedAt         *time.Time    `json:"indexed_at,omitempty"`
	LocationCity      string        `gorm:"type:text" json:"location_city"`
	LocationState     string        `gorm:"type:text;index" json:"location_state"`
	LocationCounty    string        `gorm:"type:text" json:"location_county"`
	LocationStateCode string        `gorm:"type:text" json:"location_state_code,omitempty"`
	ModulesUsed       StringArray   `gorm:"type:text" json:"modules_used"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// TableName returns the collection name for GeneratedArticle.
func (GeneratedArticle) TableName() string {
	return "generated_articles"
}

// HubPage is a category/location landing page that anchors internal links.
type HubPage struct {
	ID            string        `gorm:"type:text;primaryKey" json:"id"`
	SiteID        string        `gorm:"type:text;not null;index" json:"site_id"`
	Title         string        `gorm:"type:text" json:"title"`
	Slug          string        `gorm:"type:text" json:"slug"`
	SitemapStatus SitemapStatus `gorm:"type:text;index;default:ghost" json:"sitemap_status"`
	IndexedAt     *time.Time    `json:"indexed_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// TableName returns the collection name for HubPage.
func (HubPage) TableName() string {
	return "hub_pages"
}
