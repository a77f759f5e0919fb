package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/timmy/contentfactory/internal/config"
	"github.com/timmy/contentfactory/internal/domain"
	"github.com/timmy/contentfactory/internal/logger"
	"github.com/timmy/contentfactory/internal/repository"
)

// ProductionRunner drives a production queue through its schedule in
// bounded chunks. Each call picks up at the persisted cursor, so repeated
// invocations are safe as long as only one runs per queue at a time.
type ProductionRunner struct {
	repos     *repository.Repositories
	assembler *ArticleAssembler
	cfg       config.ProductionConfig
	now       func() time.Time
}

// NewProductionRunner creates a ProductionRunner.
func NewProductionRunner(repos *repository.Repositories, assembler *ArticleAssembler, cfg config.ProductionConfig) *ProductionRunner {
	return &ProductionRunner{
		repos:     repos,
		assembler: assembler,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Progress summarizes a queue after a runner call.
type Progress struct {
	QueueID   string             `json:"queue_id"`
	Completed int                `json:"completed"`
	Total     int                `json:"total"`
	Percent   float64            `json:"percent"`
	Generated int                `json:"generated"`
	Processed int                `json:"processed"`
	Status    domain.QueueStatus `json:"status"`
	ErrorLog  string             `json:"error_log,omitempty"`
}

func progressOf(q *domain.ProductionQueue, processed int) *Progress {
	total := len(q.ScheduleData)
	percent := 100.0
	if total > 0 {
		percent = math.Round(float64(q.CompletedCount)/float64(total)*10000) / 100
	}
	return &Progress{
		QueueID:   q.ID,
		Completed: q.CompletedCount,
		Total:     total,
		Percent:   percent,
		Generated: q.GeneratedCount,
		Processed: processed,
		Status:    q.Status,
		ErrorLog:  q.ErrorLog,
	}
}

// Status returns the current progress of a queue.
func (r *ProductionRunner) Status(ctx context.Context, queueID string) (*Progress, error) {
	q, err := r.repos.Queues.GetByID(ctx, queueID)
	if err != nil {
		return nil, err
	}
	return progressOf(q, 0), nil
}

// Approve moves a queue awaiting review, or a failed one, to approved.
func (r *ProductionRunner) Approve(ctx context.Context, queueID string) (*domain.ProductionQueue, error) {
	q, err := r.repos.Queues.GetByID(ctx, queueID)
	if err != nil {
		return nil, err
	}
	switch q.Status {
	case domain.QueueStatusApproved:
		return q, nil
	case domain.QueueStatusQueued, domain.QueueStatusTestBatch, domain.QueueStatusFailed:
	default:
		return nil, fmt.Errorf("%w: cannot approve queue in status %s", ErrInvalidState, q.Status)
	}

	logger.CtxInfo(logger.SetQueueID(ctx, q.ID), "Queue approved (was %s)", q.Status)
	return r.repos.Queues.Update(ctx, q.ID, map[string]any{
		"status": string(domain.QueueStatusApproved),
	})
}

// ChunkSize clamps a requested batch limit to the configured bounds.
func (r *ProductionRunner) ChunkSize(batchLimit int) int {
	if batchLimit <= 0 {
		batchLimit = r.cfg.ChunkSize
	}
	if r.cfg.MaxChunkSize > 0 && batchLimit > r.cfg.MaxChunkSize {
		batchLimit = r.cfg.MaxChunkSize
	}
	return max(batchLimit, 1)
}

// ProcessQueue generates the next chunk of a queue's schedule.
//
// Schedule slots are paired positionally with locations read at the same
// offset. Slots without a location are skipped but still consumed. On an
// assembly or store error the queue is marked failed with the cursor left
// after the last persisted slot, and the error is returned.
func (r *ProductionRunner) ProcessQueue(ctx context.Context, queueID string, batchLimit int) (*Progress, error) {
	ctx = logger.SetComponent(logger.SetQueueID(ctx, queueID), "production")
	start := time.Now()

	q, err := r.repos.Queues.GetByID(ctx, queueID)
	if err != nil {
		return nil, err
	}

	switch q.Status {
	case domain.QueueStatusDone:
		return progressOf(q, 0), nil
	case domain.QueueStatusRunning:
	case domain.QueueStatusApproved:
		now := r.now()
		q, err = r.repos.Queues.Update(ctx, q.ID, map[string]any{
			"status":     string(domain.QueueStatusRunning),
			"started_at": now,
		})
		if err != nil {
			return nil, fmt.Errorf("start queue: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: queue is %s, it must be approved before processing", ErrInvalidState, q.Status)
	}

	campaign, err := r.repos.Campaigns.GetByID(ctx, q.CampaignID)
	if err != nil {
		return nil, r.fail(ctx, q, q.CompletedCount, 0, fmt.Errorf("load campaign: %w", err))
	}
	ctx = logger.SetCampaignID(ctx, campaign.ID)

	cursor := q.CompletedCount
	end := min(cursor+r.ChunkSize(batchLimit), len(q.ScheduleData))
	slots := q.ScheduleData[min(cursor, end):end]

	var locations []domain.Location
	if len(slots) > 0 {
		locations, err = r.repos.Locations.Page(ctx, campaign.TargetState, cursor, len(slots))
		if err != nil {
			return nil, r.fail(ctx, q, cursor, 0, fmt.Errorf("load locations: %w", err))
		}
	}

	generated := 0
	for i, slot := range slots {
		if i >= len(locations) {
			logger.CtxDebug(ctx, "No location for slot %d, skipping", cursor+i)
			continue
		}

		assembled, err := r.assembler.Assemble(ctx, AssembleInput{
			SiteID:       q.SiteID,
			Campaign:     campaign,
			Location:     locations[i],
			PublishDate:  slot.PublishDate,
			ModifiedDate: slot.ModifiedDate,
		})
		if err != nil {
			return nil, r.fail(ctx, q, cursor+i, generated, fmt.Errorf("assemble slot %d: %w", cursor+i, err))
		}
		if err := r.repos.Articles.Create(ctx, BuildArticle(assembled, q.SiteID, campaign.ID, q.ID)); err != nil {
			return nil, r.fail(ctx, q, cursor+i, generated, fmt.Errorf("save slot %d: %w", cursor+i, err))
		}
		generated++
	}

	patch := map[string]any{
		"completed_count": end,
		"generated_count": q.GeneratedCount + generated,
	}
	if end >= len(q.ScheduleData) {
		patch["status"] = string(domain.QueueStatusDone)
		patch["completed_at"] = r.now()
	}
	updated, err := r.repos.Queues.Update(ctx, q.ID, patch)
	if err != nil {
		return nil, r.fail(ctx, q, end, generated, fmt.Errorf("advance cursor: %w", err))
	}

	logger.With(logger.Fields{
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
		logger.FieldCount:      generated,
	}).WithCursor(end).WithStatus(string(updated.Status)).Info(ctx, "Processed %d schedule slots", len(slots))

	return progressOf(updated, len(slots)), nil
}

// fail records cause on the queue and returns it. The cursor moves to
// position, which never lies before the stored cursor.
func (r *ProductionRunner) fail(ctx context.Context, q *domain.ProductionQueue, position, generated int, cause error) error {
	logger.FromContext(ctx).WithError(cause).Error("Queue processing failed")

	_, err := r.repos.Queues.Update(ctx, q.ID, map[string]any{
		"status":          string(domain.QueueStatusFailed),
		"error_log":       appendErrorLog(q.ErrorLog, r.now(), cause),
		"completed_count": max(position, q.CompletedCount),
		"generated_count": q.GeneratedCount + generated,
	})
	if err != nil {
		return errors.Join(cause, fmt.Errorf("mark queue failed: %w", err))
	}
	return cause
}

func appendErrorLog(log string, at time.Time, cause error) string {
	entry := fmt.Sprintf("[%s] %s", at.Format(time.RFC3339), cause.Error())
	return strings.TrimSpace(strings.Join([]string{log, entry}, "\n"))
}

// RunUntilDone processes chunks until the queue is done, fails, or ctx is
// cancelled.
func (r *ProductionRunner) RunUntilDone(ctx context.Context, queueID string, batchLimit int) (*Progress, error) {
	for {
		p, err := r.ProcessQueue(ctx, queueID, batchLimit)
		if err != nil {
			return p, err
		}
		if p.Status == domain.QueueStatusDone {
			return p, nil
		}
		if err := ctx.Err(); err != nil {
			return p, err
		}
	}
}
