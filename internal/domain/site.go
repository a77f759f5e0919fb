package domain

import "time"

// Site is a publishing property that owns campaigns, modules and articles.
type Site struct {
	ID        string    `gorm:"type:text;primaryKey" json:"id"`
	Name      string    `gorm:"type:text;not null" json:"name"`
	URL       string    `gorm:"type:text" json:"url"`
	DripRate  int       `gorm:"default:0" json:"drip_rate"` // 0 means the configured default
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the collection name for Site.
func (Site) TableName() string {
	return "sites"
}

// Location is a geographic target used to fill placeholders.
// Locations are read-only inputs to assembly.
type Location struct {
	ID        string `gorm:"type:text;primaryKey" json:"id"`
	City      string `gorm:"type:text;not null" json:"city"`
	State     string `gorm:"type:text;not null;index:idx_locations_state" json:"state"`
	County    string `gorm:"type:text" json:"county"`
	StateCode string `gorm:"type:text" json:"state_code,omitempty"`
}

// TableName returns the collection name for Location.
func (Location) TableName() string {
	return "locations"
}
