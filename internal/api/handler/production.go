package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/timmy/contentfactory/internal/domain"
	"github.com/timmy/contentfactory/internal/service"
)

// ProductionHandler handles scheduling, review and queue processing.
type ProductionHandler struct {
	scheduler *service.ProductionScheduler
	runner    *service.ProductionRunner
}

// NewProductionHandler creates a new production handler.
func NewProductionHandler(scheduler *service.ProductionScheduler, runner *service.ProductionRunner) *ProductionHandler {
	return &ProductionHandler{scheduler: scheduler, runner: runner}
}

// DateRange bounds a schedule. Both ends are optional.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ScheduleProductionRequest is the body of POST /schedule-production.
type ScheduleProductionRequest struct {
	CampaignID    string                   `json:"campaign_id" binding:"required"`
	TotalArticles int                      `json:"total_articles" binding:"required,min=1"`
	DateRange     *DateRange               `json:"date_range"`
	Velocity      *service.VelocityOptions `json:"velocity"`
}

// ScheduleProduction handles POST /api/v1/schedule-production.
func (h *ProductionHandler) ScheduleProduction(c *gin.Context) {
	var req ScheduleProductionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	sreq := service.ScheduleRequest{
		CampaignID:    req.CampaignID,
		TotalArticles: req.TotalArticles,
		Velocity:      req.Velocity,
	}
	if req.DateRange != nil {
		var err error
		if sreq.Start, err = parseTime("date_range.start", req.DateRange.Start); err != nil {
			badRequest(c, err)
			return
		}
		if sreq.End, err = parseTime("date_range.end", req.DateRange.End); err != nil {
			badRequest(c, err)
			return
		}
	}

	result, err := h.scheduler.ScheduleProduction(c.Request.Context(), sreq)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, struct {
		Envelope
		*service.ScheduleResult
	}{success, result})
}

// TestBatchRequest is the body of POST /generate-test-batch.
type TestBatchRequest struct {
	QueueID    string `json:"queue_id"`
	CampaignID string `json:"campaign_id"`
	BatchSize  int    `json:"batch_size" binding:"omitempty,min=1"`
}

// GenerateTestBatch handles POST /api/v1/generate-test-batch.
func (h *ProductionHandler) GenerateTestBatch(c *gin.Context) {
	var req TestBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.scheduler.GenerateTestBatch(c.Request.Context(), service.TestBatchRequest{
		QueueID:    req.QueueID,
		CampaignID: req.CampaignID,
		BatchSize:  req.BatchSize,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, struct {
		Envelope
		*service.TestBatchResult
	}{success, result})
}

// QueueRequest identifies a production queue.
type QueueRequest struct {
	QueueID    string `json:"queue_id" binding:"required"`
	BatchLimit int    `json:"batch_limit"`
}

// ApproveQueue handles POST /api/v1/approve-queue.
func (h *ProductionHandler) ApproveQueue(c *gin.Context) {
	var req QueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	q, err := h.runner.Approve(c.Request.Context(), req.QueueID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"queue_id": q.ID,
		"status":   q.Status,
	})
}

// ProcessQueue handles POST /api/v1/process-queue. One call runs one chunk.
func (h *ProductionHandler) ProcessQueue(c *gin.Context) {
	var req QueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	progress, err := h.runner.ProcessQueue(c.Request.Context(), req.QueueID, req.BatchLimit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, struct {
		Envelope
		*service.Progress
	}{success, progress})
}

// QueueStatus handles GET /api/v1/queues/:id.
func (h *ProductionHandler) QueueStatus(c *gin.Context) {
	progress, err := h.runner.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, struct {
		Envelope
		*service.Progress
	}{success, progress})
}

// AssembleArticleRequest is the body of POST /assemble-article.
type AssembleArticleRequest struct {
	CampaignID   string          `json:"campaign_id" binding:"required"`
	Location     domain.Location `json:"location"`
	PublishDate  string          `json:"publish_date"`
	ModifiedDate string          `json:"modified_date"`
}

// AssembleArticle handles POST /api/v1/assemble-article.
func (h *ProductionHandler) AssembleArticle(c *gin.Context) {
	var req AssembleArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	publish, err := parseTime("publish_date", req.PublishDate)
	if err != nil {
		badRequest(c, err)
		return
	}
	modified, err := parseTime("modified_date", req.ModifiedDate)
	if err != nil {
		badRequest(c, err)
		return
	}

	article, err := h.scheduler.AssembleArticle(c.Request.Context(), service.AssembleRequest{
		CampaignID:   req.CampaignID,
		Location:     req.Location,
		PublishDate:  publish,
		ModifiedDate: modified,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"article": article,
	})
}
