package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"oddsimport/internal/importer"
	"oddsimport/internal/service"
)

type FeedHandler struct {
	Feeds   *service.FeedService
	Imports *service.ImportService
	Logger  *zap.Logger
}

func (h *FeedHandler) Register(r *gin.Engine) {
	group := r.Group("/api/feed")
	group.GET("/sports", h.listSports)
	group.POST("/refresh", h.refresh)
	group.GET("/matches", h.listMatches)
	group.GET("/scores", h.listScores)
}

// @Summary List selectable sports
// @Tags feed
// @Success 200 {object} apiResponse
// @Router /api/feed/sports [get]
func (h *FeedHandler) listSports(c *gin.Context) {
	Ok(c, importer.Sports, nil)
}

// @Summary Refresh odds for one sport
// @Tags feed
// @Param sport query string true "feed sport key"
// @Success 200 {object} apiResponse
// @Router /api/feed/refresh [post]
func (h *FeedHandler) refresh(c *gin.Context) {
	if h.Feeds == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	sportKey := strings.TrimSpace(c.Query("sport"))
	if sportKey == "" {
		Error(c, http.StatusBadRequest, "sport query parameter is required", nil)
		return
	}
	refresh, err := h.Feeds.Refresh(c.Request.Context(), sportKey)
	if err != nil {
		if importer.CodeOf(err) == importer.FailFeedUnavailable {
			if h.Logger != nil {
				h.Logger.Warn("feed refresh failed", zap.String("sport", sportKey), zap.Error(err))
			}
			Error(c, http.StatusBadGateway, err.Error(), nil)
			return
		}
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	Ok(c, refresh, quotaMeta(refresh))
}

type matchView struct {
	importer.ImportPayload
	State importer.State `json:"state"`
}

// @Summary List built payloads for one sport with per-match import state
// @Tags feed
// @Param sport query string true "feed sport key"
// @Success 200 {object} apiResponse
// @Router /api/feed/matches [get]
func (h *FeedHandler) listMatches(c *gin.Context) {
	if h.Feeds == nil || h.Imports == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	sportKey := strings.TrimSpace(c.Query("sport"))
	if sportKey == "" {
		Error(c, http.StatusBadRequest, "sport query parameter is required", nil)
		return
	}
	refresh, ok := h.Feeds.Cached(sportKey)
	if !ok {
		Error(c, http.StatusNotFound, "sport has no cached refresh yet", nil)
		return
	}
	views := make([]matchView, 0, len(refresh.Payloads))
	for _, payload := range refresh.Payloads {
		views = append(views, matchView{
			ImportPayload: payload,
			State:         h.Imports.StateFor(payload.ExternalID),
		})
	}
	Ok(c, views, quotaMeta(refresh))
}

// @Summary List live and recent results for one sport
// @Tags feed
// @Param sport query string true "feed sport key"
// @Param days_from query int false "include completed games from the last N days"
// @Success 200 {object} apiResponse
// @Router /api/feed/scores [get]
func (h *FeedHandler) listScores(c *gin.Context) {
	if h.Feeds == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	sportKey := strings.TrimSpace(c.Query("sport"))
	if sportKey == "" {
		Error(c, http.StatusBadRequest, "sport query parameter is required", nil)
		return
	}
	scores, err := h.Feeds.Scores(c.Request.Context(), sportKey, intQuery(c, "days_from", 0))
	if err != nil {
		if importer.CodeOf(err) == importer.FailFeedUnavailable {
			Error(c, http.StatusBadGateway, err.Error(), nil)
			return
		}
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	Ok(c, scores, nil)
}

func quotaMeta(refresh service.FeedRefresh) map[string]any {
	meta := map[string]any{
		"fetched_at": refresh.FetchedAt,
	}
	if refresh.Quota.Remaining != "" {
		meta["quota_remaining"] = refresh.Quota.Remaining
	}
	if refresh.Quota.Used != "" {
		meta["quota_used"] = refresh.Quota.Used
	}
	return meta
}
