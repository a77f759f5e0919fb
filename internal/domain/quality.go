package domain

import "time"

// QualityFlagStatus values.
const (
	QualityFlagPending  = "pending"
	QualityFlagReviewed = "reviewed"
)

// QualityFlag records a near-duplicate article pair awaiting manual review.
type QualityFlag struct {
	ID             string      `gorm:"type:text;primaryKey" json:"id"`
	QueueID        string      `gorm:"type:text;index" json:"queue_id,omitempty"`
	ArticleAID     string      `gorm:"column:article_a_id;type:text;not null" json:"article_a_id"`
	ArticleBID     string      `gorm:"column:article_b_id;type:text;not null" json:"article_b_id"`
	SharedShingles StringArray `gorm:"type:text" json:"shared_shingles"`
	SharedCount    int         `json:"shared_count"`
	Similarity     float64     `json:"similarity"`
	Status         string      `gorm:"type:text;default:pending" json:"status"`
	CreatedAt      time.Time   `json:"created_at"`
}

// TableName returns the collection name for QualityFlag.
func (QualityFlag) TableName() string {
	return "quality_flags"
}

// AllModels lists every persisted type for migrations.
func AllModels() []interface{} {
	return []interface{}{
		&Site{},
		&Location{},
		&Campaign{},
		&ContentModule{},
		&HeadlineInventory{},
		&ProductionQueue{},
		&GeneratedArticle{},
		&HubPage{},
		&QualityFlag{},
	}
}
