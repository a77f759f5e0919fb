package repository

import (
	"context"
	"errors"
	"time"

	"github.com/timmy/contentfactory/internal/domain"
	"github.com/timmy/contentfactory/internal/store"
)

// SiteRepository reads sites.
type SiteRepository struct {
	store store.Store
}

// NewSiteRepository creates a new SiteRepository.
func NewSiteRepository(s store.Store) *SiteRepository {
	return &SiteRepository{store: s}
}

// Create inserts a site.
func (r *SiteRepository) Create(ctx context.Context, site *domain.Site) error {
	site.ID = newID(site.ID)
	site.CreatedAt = stamp(site.CreatedAt)
	site.UpdatedAt = stamp(site.UpdatedAt)
	return r.store.CreateItem(ctx, CollectionSites, site)
}

// GetByID retrieves a site by its ID.
func (r *SiteRepository) GetByID(ctx context.Context, id string) (*domain.Site, error) {
	return store.FindOne[domain.Site](ctx, r.store, CollectionSites, store.Query{}.Eq("id", id))
}

// CampaignRepository reads campaigns.
type CampaignRepository struct {
	store store.Store
}

// NewCampaignRepository creates a new CampaignRepository.
func NewCampaignRepository(s store.Store) *CampaignRepository {
	return &CampaignRepository{store: s}
}

// Create inserts a campaign.
func (r *CampaignRepository) Create(ctx context.Context, c *domain.Campaign) error {
	c.ID = newID(c.ID)
	c.CreatedAt = stamp(c.CreatedAt)
	c.UpdatedAt = stamp(c.UpdatedAt)
	return r.store.CreateItem(ctx, CollectionCampaigns, c)
}

// GetByID retrieves a campaign by its ID.
func (r *CampaignRepository) GetByID(ctx context.Context, id string) (*domain.Campaign, error) {
	return store.FindOne[domain.Campaign](ctx, r.store, CollectionCampaigns, store.Query{}.Eq("id", id))
}

// ModuleRepository selects and counts content modules.
type ModuleRepository struct {
	store store.Store
}

// NewModuleRepository creates a new ModuleRepository.
func NewModuleRepository(s store.Store) *ModuleRepository {
	return &ModuleRepository{store: s}
}

// Create inserts a content module.
func (r *ModuleRepository) Create(ctx context.Context, m *domain.ContentModule) error {
	m.ID = newID(m.ID)
	m.CreatedAt = stamp(m.CreatedAt)
	return r.store.CreateItem(ctx, CollectionModules, m)
}

// LeastUsed returns the active module of moduleType with the lowest usage
// count for the site, ties broken by ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - siteID: owning site.
//   - moduleType: recipe step, e.g. "intro".
// Returns:
//   - *domain.ContentModule: selected module, or nil when none exists.
//   - error: non-nil if the store fails.
func (r *ModuleRepository) LeastUsed(ctx context.Context, siteID, moduleType string) (*domain.ContentModule, error) {
	q := store.Query{}.
		Eq("site_id", siteID).
		Eq("module_type", moduleType).
		Eq("is_active", true).
		OrderBy("usage_count", "id")

	m, err := store.FindOne[domain.ContentModule](ctx, r.store, CollectionModules, q)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return m, err
}

// IncrementUsage adds one to the module's usage count. Stores that support
// atomic increments are used directly; otherwise the count read with m is
// written back plus one.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - m: module previously read from the store.
// Returns:
//   - error: non-nil if the update fails.
func (r *ModuleRepository) IncrementUsage(ctx context.Context, m *domain.ContentModule) error {
	if inc, ok := r.store.(store.Incrementer); ok {
		if err := inc.Increment(ctx, CollectionModules, m.ID, "usage_count", 1); err != nil {
			return err
		}
		m.UsageCount++
		return nil
	}
	patch := map[string]any{"usage_count": m.UsageCount + 1}
	if err := r.store.UpdateItem(ctx, CollectionModules, m.ID, patch, nil); err != nil {
		return err
	}
	m.UsageCount++
	return nil
}

// LocationRepository pages through locations.
type LocationRepository struct {
	store store.Store
}

// NewLocationRepository creates a new LocationRepository.
func NewLocationRepository(s store.Store) *LocationRepository {
	return &LocationRepository{store: s}
}

// Create inserts a location.
func (r *LocationRepository) Create(ctx context.Context, l *domain.Location) error {
	l.ID = newID(l.ID)
	return r.store.CreateItem(ctx, CollectionLocations, l)
}

// Page returns up to limit locations starting at offset in ID order.
// A non-empty state restricts the result to that state.
func (r *LocationRepository) Page(ctx context.Context, state string, offset, limit int) ([]domain.Location, error) {
	q := store.Query{}.OrderBy("id").Page(limit, offset)
	if state != "" {
		q = q.Eq("state", state)
	}
	var locations []domain.Location
	if err := r.store.ReadItems(ctx, CollectionLocations, q, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

// HeadlineRepository manages the pre-written headline inventory.
type HeadlineRepository struct {
	store store.Store
}

// NewHeadlineRepository creates a new HeadlineRepository.
func NewHeadlineRepository(s store.Store) *HeadlineRepository {
	return &HeadlineRepository{store: s}
}

// Create inserts a headline.
func (r *HeadlineRepository) Create(ctx context.Context, h *domain.HeadlineInventory) error {
	h.ID = newID(h.ID)
	h.CreatedAt = stamp(h.CreatedAt)
	return r.store.CreateItem(ctx, CollectionHeadlines, h)
}

// Unused returns up to limit unused headlines of a campaign, oldest first.
func (r *HeadlineRepository) Unused(ctx context.Context, campaignID string, limit int) ([]domain.HeadlineInventory, error) {
	q := store.Query{}.
		Eq("campaign_id", campaignID).
		Eq("is_used", false).
		OrderBy("created_at", "id").
		Page(limit, 0)
	var headlines []domain.HeadlineInventory
	if err := r.store.ReadItems(ctx, CollectionHeadlines, q, &headlines); err != nil {
		return nil, err
	}
	return headlines, nil
}

// MarkUsed flags a headline as consumed.
func (r *HeadlineRepository) MarkUsed(ctx context.Context, id string, at time.Time) error {
	return r.store.UpdateItem(ctx, CollectionHeadlines, id, map[string]any{
		"is_used": true,
		"used_at": at,
	}, nil)
}
