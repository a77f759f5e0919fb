package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/timmy/contentfactory/internal/service"
)

// SitemapHandler handles sitemap drip and indexed article reads.
type SitemapHandler struct {
	dripper *service.SitemapDripper
}

// NewSitemapHandler creates a new sitemap handler.
func NewSitemapHandler(dripper *service.SitemapDripper) *SitemapHandler {
	return &SitemapHandler{dripper: dripper}
}

// Drip handles GET /api/v1/sitemap-drip?site_id=.
func (h *SitemapHandler) Drip(c *gin.Context) {
	result, err := h.dripper.Drip(c.Request.Context(), c.Query("site_id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, struct {
		Envelope
		*service.DripResult
	}{success, result})
}

// Sitemap handles GET /api/v1/sites/:id/sitemap.xml.
func (h *SitemapHandler) Sitemap(c *gin.Context) {
	body, err := h.dripper.Sitemap(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", body)
}

// NearbyArticles handles GET /api/v1/nearby-articles?site_id=&state=&limit=.
func (h *SitemapHandler) NearbyArticles(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(c, errors.New("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	articles, err := h.dripper.NearbyArticles(c.Request.Context(), c.Query("site_id"), c.Query("state"), limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"articles": articles,
		"count":    len(articles),
	})
}
