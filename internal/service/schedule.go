package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/timmy/contentfactory/internal/config"
	"github.com/timmy/contentfactory/internal/domain"
	"github.com/timmy/contentfactory/internal/logger"
	"github.com/timmy/contentfactory/internal/repository"
	"github.com/timmy/contentfactory/internal/velocity"
)

const sampleDays = 10

// ProductionScheduler creates production queues and their test batches.
type ProductionScheduler struct {
	repos     *repository.Repositories
	velocity  *velocity.Scheduler
	assembler *ArticleAssembler
	prodCfg   config.ProductionConfig
	velCfg    config.VelocityConfig
	now       func() time.Time
}

// NewProductionScheduler creates a ProductionScheduler. A nil velocity
// scheduler uses the process-wide random source.
func NewProductionScheduler(repos *repository.Repositories, vs *velocity.Scheduler, assembler *ArticleAssembler, prodCfg config.ProductionConfig, velCfg config.VelocityConfig) *ProductionScheduler {
	if vs == nil {
		vs = velocity.New(nil)
	}
	return &ProductionScheduler{
		repos:     repos,
		velocity:  vs,
		assembler: assembler,
		prodCfg:   prodCfg,
		velCfg:    velCfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// VelocityOptions overrides the configured schedule shape. Nil fields keep
// the configured value.
type VelocityOptions struct {
	Mode              string `json:"mode"`
	WeekendThrottle   *bool  `json:"weekend_throttle"`
	JitterMinutes     *int   `json:"jitter_minutes"`
	BusinessHoursOnly *bool  `json:"business_hours_only"`
}

// ScheduleRequest asks for a new production run.
type ScheduleRequest struct {
	CampaignID    string
	TotalArticles int
	Start         time.Time
	End           time.Time
	Velocity      *VelocityOptions
}

// ScheduleResult describes the created queue.
type ScheduleResult struct {
	QueueID            string              `json:"queue_id"`
	TotalScheduled     int                 `json:"total_scheduled"`
	VelocityMode       velocity.Mode       `json:"velocity_mode"`
	SampleDistribution []velocity.DayCount `json:"sample_distribution"`
}

func (s *ProductionScheduler) velocityConfig(opts *VelocityOptions) velocity.Config {
	cfg := velocity.Config{
		Mode:              velocity.ParseMode(s.velCfg.Mode),
		WeekendThrottle:   s.velCfg.WeekendThrottle,
		JitterMinutes:     s.velCfg.JitterMinutes,
		BusinessHoursOnly: s.velCfg.BusinessHoursOnly,
	}
	if opts == nil {
		return cfg
	}
	if opts.Mode != "" {
		cfg.Mode = velocity.ParseMode(opts.Mode)
	}
	if opts.WeekendThrottle != nil {
		cfg.WeekendThrottle = *opts.WeekendThrottle
	}
	if opts.JitterMinutes != nil {
		cfg.JitterMinutes = max(*opts.JitterMinutes, 0)
	}
	if opts.BusinessHoursOnly != nil {
		cfg.BusinessHoursOnly = *opts.BusinessHoursOnly
	}
	return cfg
}

// ScheduleProduction computes a publish schedule for a campaign and stores
// it on a new queued production run. The range defaults to the configured
// number of days before now.
func (s *ProductionScheduler) ScheduleProduction(ctx context.Context, req ScheduleRequest) (*ScheduleResult, error) {
	if req.CampaignID == "" {
		return nil, fmt.Errorf("%w: campaign_id is required", ErrInvalidInput)
	}
	if req.TotalArticles <= 0 {
		return nil, fmt.Errorf("%w: total_articles must be positive", ErrInvalidInput)
	}
	if s.prodCfg.MaxArticles > 0 && req.TotalArticles > s.prodCfg.MaxArticles {
		return nil, fmt.Errorf("%w: total_articles exceeds %d", ErrInvalidInput, s.prodCfg.MaxArticles)
	}

	now := s.now()
	start, end := req.Start, req.End
	if end.IsZero() {
		end = now
	}
	if start.IsZero() {
		start = end.AddDate(0, 0, -s.prodCfg.DefaultBackdateDays)
	}
	if !end.After(start) {
		return nil, fmt.Errorf("%w: date range end must be after start", ErrInvalidInput)
	}

	campaign, err := s.repos.Campaigns.GetByID(ctx, req.CampaignID)
	if err != nil {
		return nil, err
	}
	ctx = logger.SetCampaignID(ctx, campaign.ID)

	vcfg := s.velocityConfig(req.Velocity)
	entries := s.velocity.Generate(start, end, req.TotalArticles, vcfg)

	q := &domain.ProductionQueue{
		SiteID:         campaign.SiteID,
		CampaignID:     campaign.ID,
		ScheduleData:   domain.ScheduleData(entries),
		TotalScheduled: len(entries),
		Status:         domain.QueueStatusQueued,
		VelocityMode:   string(vcfg.Mode),
	}
	if err := s.repos.Queues.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("create queue: %w", err)
	}

	dist := velocity.Distribution(entries)
	if len(dist) > sampleDays {
		dist = dist[:sampleDays]
	}

	logger.With(logger.Fields{logger.FieldCount: len(entries)}).
		Info(logger.SetQueueID(ctx, q.ID), "Scheduled %d articles (%s) from %s to %s",
			req.TotalArticles, vcfg.Mode, start.Format(time.DateOnly), end.Format(time.DateOnly))

	return &ScheduleResult{
		QueueID:            q.ID,
		TotalScheduled:     len(entries),
		VelocityMode:       vcfg.Mode,
		SampleDistribution: dist,
	}, nil
}

// TestBatchRequest asks for a review batch. QueueID wins over CampaignID.
type TestBatchRequest struct {
	QueueID    string
	CampaignID string
	BatchSize  int
}

// TestBatchResult lists the articles produced for review.
type TestBatchResult struct {
	QueueID  string                    `json:"queue_id"`
	Status   domain.QueueStatus        `json:"status"`
	Articles []domain.GeneratedArticle `json:"articles"`
}

// GenerateTestBatch builds the next few scheduled articles for review before
// approval. Slots are consumed from the queue cursor. Unused headlines from
// the campaign inventory are used as headline templates while they last.
func (s *ProductionScheduler) GenerateTestBatch(ctx context.Context, req TestBatchRequest) (*TestBatchResult, error) {
	q, err := s.pendingQueue(ctx, req)
	if err != nil {
		return nil, err
	}
	ctx = logger.SetQueueID(ctx, q.ID)

	switch q.Status {
	case domain.QueueStatusQueued, domain.QueueStatusTestBatch:
	default:
		return nil, fmt.Errorf("%w: test batches need a queued queue, got %s", ErrInvalidState, q.Status)
	}

	campaign, err := s.repos.Campaigns.GetByID(ctx, q.CampaignID)
	if err != nil {
		return nil, err
	}

	size := req.BatchSize
	if size <= 0 {
		size = s.prodCfg.TestBatchSize
	}
	if s.prodCfg.MaxTestBatchSize > 0 {
		size = min(size, s.prodCfg.MaxTestBatchSize)
	}
	size = min(size, q.Remaining())

	result := &TestBatchResult{QueueID: q.ID, Status: q.Status, Articles: []domain.GeneratedArticle{}}
	if size <= 0 {
		return result, nil
	}

	cursor := q.CompletedCount
	locations, err := s.repos.Locations.Page(ctx, campaign.TargetState, cursor, size)
	if err != nil {
		return nil, fmt.Errorf("load locations: %w", err)
	}
	headlines, err := s.repos.Headlines.Unused(ctx, campaign.ID, size)
	if err != nil {
		return nil, fmt.Errorf("load headlines: %w", err)
	}

	for i := 0; i < size && i < len(locations); i++ {
		slot := q.ScheduleData[cursor+i]
		in := AssembleInput{
			SiteID:       q.SiteID,
			Campaign:     campaign,
			Location:     locations[i],
			PublishDate:  slot.PublishDate,
			ModifiedDate: slot.ModifiedDate,
		}
		if i < len(headlines) {
			in.HeadlineTemplate = headlines[i].HeadlineText
		}

		assembled, err := s.assembler.Assemble(ctx, in)
		if err != nil {
			return nil, s.abortBatch(ctx, q, cursor+i, len(result.Articles), fmt.Errorf("assemble test article: %w", err))
		}
		article := BuildArticle(assembled, q.SiteID, campaign.ID, q.ID)
		article.IsTestBatch = true
		if err := s.repos.Articles.Create(ctx, article); err != nil {
			return nil, s.abortBatch(ctx, q, cursor+i, len(result.Articles), fmt.Errorf("save test article: %w", err))
		}
		result.Articles = append(result.Articles, *article)
		if i < len(headlines) {
			if err := s.repos.Headlines.MarkUsed(ctx, headlines[i].ID, s.now()); err != nil {
				return nil, s.abortBatch(ctx, q, cursor+i+1, len(result.Articles), fmt.Errorf("mark headline used: %w", err))
			}
		}
	}

	updated, err := s.repos.Queues.Update(ctx, q.ID, map[string]any{
		"completed_count": cursor + size,
		"generated_count": q.GeneratedCount + len(result.Articles),
		"status":          string(domain.QueueStatusTestBatch),
	})
	if err != nil {
		return nil, s.abortBatch(ctx, q, cursor+size, len(result.Articles), fmt.Errorf("advance cursor: %w", err))
	}
	result.Status = updated.Status

	logger.With(logger.Fields{logger.FieldCount: len(result.Articles)}).WithCursor(cursor+size).
		Info(ctx, "Generated test batch")
	return result, nil
}

// abortBatch moves the cursor past the slots a partial test batch already
// persisted and records cause. The queue stays reviewable.
func (s *ProductionScheduler) abortBatch(ctx context.Context, q *domain.ProductionQueue, position, generated int, cause error) error {
	logger.FromContext(ctx).WithError(cause).Error("Test batch aborted")

	patch := map[string]any{
		"completed_count": max(position, q.CompletedCount),
		"generated_count": q.GeneratedCount + generated,
		"error_log":       appendErrorLog(q.ErrorLog, s.now(), cause),
	}
	if generated > 0 {
		patch["status"] = string(domain.QueueStatusTestBatch)
	}
	if _, err := s.repos.Queues.Update(ctx, q.ID, patch); err != nil {
		return errors.Join(cause, fmt.Errorf("save batch cursor: %w", err))
	}
	return cause
}

func (s *ProductionScheduler) pendingQueue(ctx context.Context, req TestBatchRequest) (*domain.ProductionQueue, error) {
	switch {
	case req.QueueID != "":
		return s.repos.Queues.GetByID(ctx, req.QueueID)
	case req.CampaignID != "":
		return s.repos.Queues.LatestPending(ctx, req.CampaignID)
	default:
		return nil, fmt.Errorf("%w: queue_id or campaign_id is required", ErrInvalidInput)
	}
}

// AssembleRequest asks for a single article outside any queue.
type AssembleRequest struct {
	CampaignID   string
	Location     domain.Location
	PublishDate  time.Time
	ModifiedDate time.Time
}

// AssembleArticle builds one article for a campaign and stores it as a
// ghost. The publish date defaults to now.
func (s *ProductionScheduler) AssembleArticle(ctx context.Context, req AssembleRequest) (*domain.GeneratedArticle, error) {
	if req.CampaignID == "" {
		return nil, fmt.Errorf("%w: campaign_id is required", ErrInvalidInput)
	}
	if req.Location.City == "" {
		return nil, fmt.Errorf("%w: location.city is required", ErrInvalidInput)
	}

	campaign, err := s.repos.Campaigns.GetByID(ctx, req.CampaignID)
	if err != nil {
		return nil, err
	}
	ctx = logger.SetSiteID(logger.SetCampaignID(ctx, campaign.ID), campaign.SiteID)

	publish := req.PublishDate
	if publish.IsZero() {
		publish = s.now()
	}
	assembled, err := s.assembler.Assemble(ctx, AssembleInput{
		SiteID:       campaign.SiteID,
		Campaign:     campaign,
		Location:     req.Location,
		PublishDate:  publish,
		ModifiedDate: req.ModifiedDate,
	})
	if err != nil {
		return nil, err
	}

	article := BuildArticle(assembled, campaign.SiteID, campaign.ID, "")
	if err := s.repos.Articles.Create(ctx, article); err != nil {
		return nil, fmt.Errorf("save article: %w", err)
	}
	logger.CtxInfo(ctx, "Assembled article %s for %s", article.ID, req.Location.City)
	return article, nil
}
