package service

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/timmy/contentfactory/internal/config"
	"github.com/timmy/contentfactory/internal/domain"
	"github.com/timmy/contentfactory/internal/logger"
	"github.com/timmy/contentfactory/internal/repository"
	"github.com/timmy/contentfactory/internal/storage"
)

const (
	sitemapNamespace  = "http://www.sitemaps.org/schemas/sitemap/0.9"
	sitemapObjectName = "sitemap.xml"

	defaultNearbyLimit = 10
	maxNearbyLimit     = 100
)

// SitemapDripper promotes ghost pages into the sitemap at a bounded rate so
// indexing velocity stays independent of generation volume.
type SitemapDripper struct {
	repos     *repository.Repositories
	cfg       config.SitemapConfig
	publisher storage.ObjectStorage
	prefix    string
	now       func() time.Time
}

// NewSitemapDripper creates a SitemapDripper. publisher may be nil, in which
// case sitemaps are only served on request.
func NewSitemapDripper(repos *repository.Repositories, cfg config.SitemapConfig, publisher storage.ObjectStorage, prefix string) *SitemapDripper {
	return &SitemapDripper{
		repos:     repos,
		cfg:       cfg,
		publisher: publisher,
		prefix:    prefix,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// DripResult reports what one drip promoted.
type DripResult struct {
	SiteID      string `json:"site_id"`
	Indexed     int    `json:"indexed"`
	HubsIndexed int    `json:"hubs_indexed"`
	SitemapURL  string `json:"sitemap_url,omitempty"`
}

// Drip indexes up to the hub limit of ghost hubs, then up to the site's drip
// rate of ghost articles, newest publish date first. No ghosts is not an error.
func (d *SitemapDripper) Drip(ctx context.Context, siteID string) (*DripResult, error) {
	if siteID == "" {
		return nil, fmt.Errorf("%w: site_id is required", ErrInvalidInput)
	}
	ctx = logger.SetComponent(logger.SetSiteID(ctx, siteID), "sitemap")

	site, err := d.repos.Sites.GetByID(ctx, siteID)
	if err != nil {
		return nil, err
	}
	result := &DripResult{SiteID: site.ID}
	now := d.now()

	hubs, err := d.repos.Hubs.Ghosts(ctx, site.ID, d.cfg.HubDripLimit)
	if err != nil {
		return nil, fmt.Errorf("load ghost hubs: %w", err)
	}
	for _, h := range hubs {
		if err := d.repos.Hubs.MarkIndexed(ctx, h.ID, now); err != nil {
			return result, fmt.Errorf("index hub %s: %w", h.ID, err)
		}
		result.HubsIndexed++
	}

	rate := site.DripRate
	if rate <= 0 {
		rate = d.cfg.DripRate
	}
	articles, err := d.repos.Articles.Ghosts(ctx, site.ID, rate)
	if err != nil {
		return result, fmt.Errorf("load ghost articles: %w", err)
	}
	for _, a := range articles {
		if err := d.repos.Articles.MarkIndexed(ctx, a.ID, now); err != nil {
			return result, fmt.Errorf("index article %s: %w", a.ID, err)
		}
		result.Indexed++
	}

	if d.publisher != nil && d.cfg.Publish && result.Indexed+result.HubsIndexed > 0 {
		url, err := d.publish(ctx, site)
		if err != nil {
			return result, err
		}
		result.SitemapURL = url
	}

	logger.With(logger.Fields{
		logger.FieldCount: result.Indexed,
		"hubs_indexed":    result.HubsIndexed,
	}).Info(ctx, "Sitemap drip complete")
	return result, nil
}

func (d *SitemapDripper) publish(ctx context.Context, site *domain.Site) (string, error) {
	body, err := d.render(ctx, site)
	if err != nil {
		return "", err
	}
	key := path.Join(d.prefix, site.ID, sitemapObjectName)
	if err := d.publisher.Upload(ctx, key, bytes.NewReader(body), int64(len(body)), "application/xml"); err != nil {
		return "", fmt.Errorf("publish sitemap: %w", err)
	}
	return d.publisher.GetURL(key), nil
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// Sitemap renders the XML sitemap of a site's indexed hubs and articles.
func (d *SitemapDripper) Sitemap(ctx context.Context, siteID string) ([]byte, error) {
	site, err := d.repos.Sites.GetByID(ctx, siteID)
	if err != nil {
		return nil, err
	}
	return d.render(ctx, site)
}

func (d *SitemapDripper) render(ctx context.Context, site *domain.Site) ([]byte, error) {
	hubs, err := d.repos.Hubs.Indexed(ctx, site.ID)
	if err != nil {
		return nil, fmt.Errorf("load indexed hubs: %w", err)
	}
	articles, err := d.repos.Articles.Indexed(ctx, site.ID, "", 0)
	if err != nil {
		return nil, fmt.Errorf("load indexed articles: %w", err)
	}

	base := strings.TrimSuffix(site.URL, "/")
	set := urlSet{Xmlns: sitemapNamespace, URLs: make([]sitemapURL, 0, len(hubs)+len(articles))}
	for _, h := range hubs {
		set.URLs = append(set.URLs, sitemapURL{Loc: base + "/" + h.Slug, LastMod: lastMod(h.UpdatedAt)})
	}
	for _, a := range articles {
		set.URLs = append(set.URLs, sitemapURL{Loc: base + "/" + a.Slug, LastMod: lastMod(a.DateModified)})
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render sitemap: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

func lastMod(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.DateOnly)
}

// NearbyArticles lists indexed articles of a site, optionally within one
// state. Ghost articles are never returned.
func (d *SitemapDripper) NearbyArticles(ctx context.Context, siteID, state string, limit int) ([]domain.GeneratedArticle, error) {
	if siteID == "" {
		return nil, fmt.Errorf("%w: site_id is required", ErrInvalidInput)
	}
	if limit <= 0 {
		limit = defaultNearbyLimit
	}
	limit = min(limit, maxNearbyLimit)

	articles, err := d.repos.Articles.Indexed(ctx, siteID, state, limit)
	if err != nil {
		return nil, err
	}
	if articles == nil {
		articles = []domain.GeneratedArticle{}
	}
	return articles, nil
}
