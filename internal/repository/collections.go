package repository

import (
	"time"

	"github.com/google/uuid"

	"github.com/timmy/contentfactory/internal/store"
)

// Collection names in the item store.
const (
	CollectionSites     = "sites"
	CollectionCampaigns = "campaign_masters"
	CollectionModules   = "content_modules"
	CollectionLocations = "locations"
	CollectionHeadlines = "headline_inventory"
	CollectionQueues    = "production_queue"
	CollectionArticles  = "generated_articles"
	CollectionHubs      = "hub_pages"
	CollectionFlags     = "quality_flags"
)

// newID returns id, or a fresh UUID when id is empty.
func newID(id string) string {
	if id == "" {
		return uuid.New().String()
	}
	return id
}

// stamp returns t, or the current UTC time when t is zero.
func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}

// Repositories bundles the typed repositories over one item store.
type Repositories struct {
	Sites     *SiteRepository
	Campaigns *CampaignRepository
	Modules   *ModuleRepository
	Locations *LocationRepository
	Headlines *HeadlineRepository
	Queues    *QueueRepository
	Articles  *ArticleRepository
	Hubs      *HubRepository
	Flags     *QualityFlagRepository
}

// NewRepositories creates every repository over s.
func NewRepositories(s store.Store) *Repositories {
	return &Repositories{
		Sites:     NewSiteRepository(s),
		Campaigns: NewCampaignRepository(s),
		Modules:   NewModuleRepository(s),
		Locations: NewLocationRepository(s),
		Headlines: NewHeadlineRepository(s),
		Queues:    NewQueueRepository(s),
		Articles:  NewArticleRepository(s),
		Hubs:      NewHubRepository(s),
		Flags:     NewQualityFlagRepository(s),
	}
}
