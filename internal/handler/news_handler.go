package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"newsmentor/internal/model"
	"newsmentor/pkg/news"
)

type NewsFeed interface {
	Get(ctx context.Context, category string) (*news.Result, error)
}

type ContentExtractor interface {
	Extract(ctx context.Context, url string) (string, error)
}

type NewsHandler struct {
	feed      NewsFeed
	extractor ContentExtractor
}

func NewNewsHandler(feed NewsFeed, extractor ContentExtractor) *NewsHandler {
	return &NewsHandler{feed: feed, extractor: extractor}
}

// GetNews answers 200 even when some providers failed; their status is
// listed next to the articles.
func (h *NewsHandler) GetNews(c *gin.Context) {
	category := c.DefaultQuery("category", model.DefaultCategory)
	if !model.IsCategory(category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
		return
	}

	result, err := h.feed.Get(c.Request.Context(), category)
	if err != nil {
		slog.Error("error fetching news", "error", err, "category", category)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "News unavailable"})
		return
	}

	res := NewsResponse{
		Category:  result.Category,
		Articles:  result.Articles,
		Providers: result.Providers,
		FetchedAt: formatTime(result.FetchedAt),
	}
	if res.Articles == nil {
		res.Articles = []news.Article{}
	}

	c.JSON(http.StatusOK, res)
}

func (h *NewsHandler) GetCategories(c *gin.Context) {
	res := make([]CategoryResponse, 0, len(model.Categories))
	for _, category := range model.Categories {
		res = append(res, CategoryResponse{ID: category.ID, Name: category.Name})
	}

	c.JSON(http.StatusOK, res)
}

func (h *NewsHandler) ExtractArticle(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	content, err := h.extractor.Extract(c.Request.Context(), req.URL)
	if err != nil {
		writeError(c, "error extracting article", err, "url", req.URL)
		return
	}

	c.JSON(http.StatusOK, ExtractResponse{Content: content})
}
