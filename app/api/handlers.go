package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/globaltide/tidenews/app/news"
)

func NewHandler(aggregator *news.Aggregator, configCache *news.ConfigCache) *Handler {
	return &Handler{
		aggregator:  aggregator,
		generator:   news.NewGenerator(),
		configCache: configCache,
	}
}

// GetInvestorNews serves the fixed-feed aggregate. The response is
// always HTTP 200: a total aggregation failure is carried in the
// payload's error field so the front-end stays resilient to upstream
// outages.
func (h *Handler) GetInvestorNews(c *gin.Context) {
	payload := h.aggregator.Run(c.Request.Context())

	if payload.Error != "" {
		slog.Error("Aggregate request served with error payload", "error", payload.Error)
	}

	c.Header("Cache-Control", "public, max-age=60")
	c.JSON(http.StatusOK, payload)
}

// GetSearch serves the single-query variant. An empty q yields an
// empty result, not an error; a hard fetch failure maps to 502.
func (h *Handler) GetSearch(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	params := news.SearchParams{
		Q:     c.Query("q"),
		HL:    c.Query("hl"),
		GL:    c.Query("gl"),
		CEID:  c.Query("ceid"),
		Limit: limit,
		Start: c.Query("start"),
		End:   c.Query("end"),
	}

	result, err := h.aggregator.Search(c.Request.Context(), params)
	if err != nil {
		slog.Error("Search request failed", "q", params.Q, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.Header("Cache-Control", "public, max-age=60")
	c.JSON(http.StatusOK, result)
}

// GetInvestorFeed re-serves the aggregate as RSS 2.0.
func (h *Handler) GetInvestorFeed(c *gin.Context) {
	payload := h.aggregator.Run(c.Request.Context())

	rss, err := h.generator.Run(payload)
	if err != nil {
		slog.Error("RSS generation error", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/rss+xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(payload.Items)))
	c.String(http.StatusOK, rss)
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"timestamp":      time.Now().In(time.Local).Format(time.RFC3339),
		"loaded_queries": h.configCache.GetQueryCount(),
	})
}

// PostRefresh drops the aggregate cache and runs a fresh pass.
// Protected by the API access key.
func (h *Handler) PostRefresh(c *gin.Context) {
	payload := h.aggregator.Refresh(c.Request.Context())

	response := gin.H{
		"success":    payload.Error == "",
		"updated_at": payload.UpdatedAt,
		"items":      len(payload.Items),
	}
	if payload.Error != "" {
		response["error"] = payload.Error
	}

	c.JSON(http.StatusOK, response)
}
