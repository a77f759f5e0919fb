package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/timmy/contentfactory/internal/service"
)

// QualityHandler handles the duplicate scan endpoint.
type QualityHandler struct {
	scanner *service.QualityScanner
}

// NewQualityHandler creates a new quality handler.
func NewQualityHandler(scanner *service.QualityScanner) *QualityHandler {
	return &QualityHandler{scanner: scanner}
}

// ScanRequest is the body of POST /scan-duplicates.
type ScanRequest struct {
	QueueID   string   `json:"queue_id"`
	BatchIDs  []string `json:"batch_ids"`
	NgramSize int      `json:"ngram_size" binding:"omitempty,min=1,max=50"`
	Threshold int      `json:"threshold" binding:"omitempty,min=1"`
}

// ScanDuplicates handles POST /api/v1/scan-duplicates.
func (h *QualityHandler) ScanDuplicates(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.scanner.ScanDuplicates(c.Request.Context(), service.ScanRequest{
		QueueID:   req.QueueID,
		BatchIDs:  req.BatchIDs,
		NgramSize: req.NgramSize,
		Threshold: req.Threshold,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, struct {
		Envelope
		*service.ScanResult
	}{success, result})
}
