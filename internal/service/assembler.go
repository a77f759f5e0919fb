package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/timmy/contentfactory/internal/domain"
	"github.com/timmy/contentfactory/internal/logger"
	"github.com/timmy/contentfactory/internal/repository"
	"github.com/timmy/contentfactory/internal/spintax"
	"github.com/timmy/contentfactory/internal/textutil"
)

const (
	metaDescriptionLength = 155
	fallbackHeadlineNoun  = "Guide"
	slugIDLength          = 8
)

// ArticleAssembler builds articles from a campaign recipe and the site's
// content modules.
type ArticleAssembler struct {
	modules *repository.ModuleRepository
	spintax *spintax.Engine
}

// NewArticleAssembler creates an ArticleAssembler. A nil engine uses the
// process-wide random source.
func NewArticleAssembler(modules *repository.ModuleRepository, engine *spintax.Engine) *ArticleAssembler {
	if engine == nil {
		engine = spintax.New(nil)
	}
	return &ArticleAssembler{modules: modules, spintax: engine}
}

// AssembleInput describes one article to build.
type AssembleInput struct {
	SiteID       string
	Campaign     *domain.Campaign
	Location     domain.Location
	PublishDate  time.Time
	ModifiedDate time.Time

	// HeadlineTemplate overrides the campaign title template when set.
	HeadlineTemplate string
}

// AssembledArticle is the output of a single assembly.
type AssembledArticle struct {
	Headline        string          `json:"headline"`
	MetaTitle       string          `json:"meta_title"`
	MetaDescription string          `json:"meta_description"`
	Body            string          `json:"full_html_body"`
	WordCount       int             `json:"word_count"`
	ModulesUsed     []string        `json:"modules_used"`
	PublishDate     time.Time       `json:"date_published"`
	ModifiedDate    time.Time       `json:"date_modified"`
	Location        domain.Location `json:"location"`
}

// Assemble expands each recipe step with the least used module of that type.
// Steps without a module are skipped. Every selected module's usage count is
// incremented once. Years in templates come from the publish date so
// backdated articles read consistently.
func (a *ArticleAssembler) Assemble(ctx context.Context, in AssembleInput) (*AssembledArticle, error) {
	if in.Campaign == nil {
		return nil, fmt.Errorf("%w: campaign is required", ErrInvalidInput)
	}
	siteID := in.SiteID
	if siteID == "" {
		siteID = in.Campaign.SiteID
	}
	modified := in.ModifiedDate
	if modified.IsZero() {
		modified = in.PublishDate
	}

	sc := spintax.Context{
		City:      in.Location.City,
		State:     in.Location.State,
		County:    in.Location.County,
		StateCode: in.Location.StateCode,
		Year:      in.PublishDate.Year(),
	}

	parts := make([]string, 0, len(in.Campaign.Recipe))
	used := make([]string, 0, len(in.Campaign.Recipe))
	for _, moduleType := range in.Campaign.Recipe {
		m, err := a.modules.LeastUsed(ctx, siteID, moduleType)
		if err != nil {
			return nil, fmt.Errorf("select %s module: %w", moduleType, err)
		}
		if m == nil {
			logger.CtxDebug(ctx, "No active %q module for site %s, skipping step", moduleType, siteID)
			continue
		}

		parts = append(parts, a.spintax.Expand(m.Content, sc))
		used = append(used, m.ID)

		if err := a.modules.IncrementUsage(ctx, m); err != nil {
			return nil, fmt.Errorf("increment usage of module %s: %w", m.ID, err)
		}
	}
	body := strings.Join(parts, "\n\n")

	headline := a.headline(in, sc)
	plain := textutil.StripHTML(body)

	var meta string
	if in.Campaign.MetaDescriptionTemplate != "" {
		meta = a.spintax.Expand(in.Campaign.MetaDescriptionTemplate, sc)
	} else {
		meta = textutil.Truncate(plain, metaDescriptionLength)
	}

	return &AssembledArticle{
		Headline:        headline,
		MetaTitle:       headline,
		MetaDescription: meta,
		Body:            body,
		WordCount:       textutil.WordCount(body),
		ModulesUsed:     used,
		PublishDate:     in.PublishDate,
		ModifiedDate:    modified,
		Location:        in.Location,
	}, nil
}

func (a *ArticleAssembler) headline(in AssembleInput, sc spintax.Context) string {
	template := in.HeadlineTemplate
	if template == "" {
		template = in.Campaign.TitleTemplate
	}
	if template != "" {
		return a.spintax.Expand(template, sc)
	}
	noun := in.Campaign.Name
	if noun == "" {
		noun = fallbackHeadlineNoun
	}
	return strings.TrimSpace(in.Location.City + " " + noun)
}

// BuildArticle turns an assembly into a ghost-published article record.
func BuildArticle(a *AssembledArticle, siteID, campaignID, queueID string) *domain.GeneratedArticle {
	id := uuid.New().String()
	slug := textutil.Slugify(a.Headline)
	if slug == "" {
		slug = id[:slugIDLength]
	} else {
		slug += "-" + id[:slugIDLength]
	}

	return &domain.GeneratedArticle{
		ID:                id,
		SiteID:            siteID,
		CampaignID:        campaignID,
		QueueID:           queueID,
		Headline:          a.Headline,
		Slug:              slug,
		MetaTitle:         a.MetaTitle,
		MetaDescription:   a.MetaDescription,
		FullHTMLBody:      a.Body,
		WordCount:         a.WordCount,
		IsPublished:       true,
		SitemapStatus:     domain.SitemapStatusGhost,
		DatePublished:     a.PublishDate,
		DateModified:      a.ModifiedDate,
		LocationCity:      a.Location.City,
		LocationState:     a.Location.State,
		LocationCounty:    a.Location.County,
		LocationStateCode: a.Location.StateCode,
		ModulesUsed:       domain.StringArray(a.ModulesUsed),
	}
}
