package domain

import "time"

// Campaign groups the article recipe and headline templates for a site.
// The recipe is an ordered list of module types and does not change
// while a production run is in flight.
type Campaign struct {
	ID                      string      `gorm:"type:text;primaryKey" json:"id"`
	SiteID                  string      `gorm:"type:text;not null;index" json:"site_id"`
	Name                    string      `gorm:"type:text" json:"name"`
	TitleTemplate           string      `gorm:"type:text" json:"title_template"`
	MetaDescriptionTemplate string      `gorm:"type:text" json:"meta_description_template"`
	Recipe                  StringArray `gorm:"type:text" json:"recipe"`
	TargetState             string      `gorm:"type:text" json:"target_state,omitempty"`
	CreatedAt               time.Time   `json:"created_at"`
	UpdatedAt               time.Time   `json:"updated_at"`
}

// TableName returns the collection name for Campaign.
func (Campaign) TableName() string {
	return "campaign_masters"
}

// ContentModule is a reusable spintax fragment of a given module type.
// UsageCount only ever grows; selection prefers the least used module.
type ContentModule struct {
	ID         string    `gorm:"type:text;primaryKey" json:"id"`
	SiteID     string    `gorm:"type:text;not null;index:idx_modules_site_type" json:"site_id"`
	ModuleType string    `gorm:"type:text;not null;index:idx_modules_site_type" json:"module_type"`
	Content    string    `gorm:"type:text" json:"content"`
	UsageCount int       `gorm:"default:0" json:"usage_count"`
	IsActive   bool      `gorm:"not null" json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName returns the collection name for ContentModule.
func (ContentModule) TableName() string {
	return "content_modules"
}

// HeadlineInventory holds pre-written headline templates for test batches.
type HeadlineInventory struct {
	ID           string     `gorm:"type:text;primaryKey" json:"id"`
	CampaignID   string     `gorm:"type:text;not null;index" json:"campaign_id"`
	HeadlineText string     `gorm:"type:text;not null" json:"headline_text"`
	IsUsed       bool       `gorm:"default:false" json:"is_used"`
	UsedAt       *time.Time `json:"used_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// TableName returns the collection name for HeadlineInventory.
func (HeadlineInventory) TableName() string {
	return "headline_inventory"
}
