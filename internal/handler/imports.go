package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"oddsimport/internal/importer"
	"oddsimport/internal/repository"
	"oddsimport/internal/service"
)

type ImportHandler struct {
	Service *service.ImportService
	Logger  *zap.Logger
}

func (h *ImportHandler) Register(r *gin.Engine) {
	group := r.Group("/api/imports")
	group.GET("/preview/:externalId", h.preview)
	group.POST("/:externalId", h.runImport)
	group.GET("/states", h.states)
	group.GET("/history", h.history)
	group.POST("/refresh-known", h.refreshKnown)
}

// @Summary Preview the built payload for one match
// @Tags imports
// @Param externalId path string true "feed match id"
// @Success 200 {object} apiResponse
// @Router /api/imports/preview/{externalId} [get]
func (h *ImportHandler) preview(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	payload, err := h.Service.Preview(c.Param("externalId"))
	if err != nil {
		if errors.Is(err, service.ErrUnknownExternalID) {
			Error(c, http.StatusNotFound, err.Error(), nil)
			return
		}
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, payload, nil)
}

type importRequest struct {
	Markets []string `json:"markets"`
}

// @Summary Import one match and its selected markets into the catalog
// @Tags imports
// @Param externalId path string true "feed match id"
// @Param body body importRequest true "market keys to import"
// @Success 200 {object} apiResponse
// @Router /api/imports/{externalId} [post]
func (h *ImportHandler) runImport(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	externalID := c.Param("externalId")
	result, err := h.Service.Import(c.Request.Context(), externalID, req.Markets)
	if err != nil {
		h.importError(c, externalID, err)
		return
	}
	meta := map[string]any{
		"warnings": len(result.Warnings),
	}
	Ok(c, result, meta)
}

func (h *ImportHandler) importError(c *gin.Context, externalID string, err error) {
	if h.Logger != nil {
		h.Logger.Warn("import failed",
			zap.String("external_id", externalID),
			zap.Error(err),
		)
	}
	code := importer.CodeOf(err)
	meta := map[string]any{}
	if code != "" {
		meta["failure_code"] = string(code)
	}
	switch {
	case errors.Is(err, service.ErrUnknownExternalID):
		Error(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, importer.ErrImportInFlight):
		Error(c, http.StatusConflict, err.Error(), nil)
	case code == importer.FailInvalidSelection:
		Error(c, http.StatusBadRequest, err.Error(), meta)
	default:
		Error(c, http.StatusBadGateway, err.Error(), meta)
	}
}

// @Summary Resolve display states for a set of matches
// @Tags imports
// @Param ids query string true "comma separated feed match ids"
// @Success 200 {object} apiResponse
// @Router /api/imports/states [get]
func (h *ImportHandler) states(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	ids := cleanStrings(strings.Split(c.Query("ids"), ","))
	if len(ids) == 0 {
		Error(c, http.StatusBadRequest, "ids query parameter is required", nil)
		return
	}
	Ok(c, h.Service.States(ids), nil)
}

// @Summary List persisted import attempts
// @Tags imports
// @Param limit query int false "limit"
// @Param offset query int false "offset"
// @Param external_id query string false "filter by feed match id"
// @Param sport query string false "filter by feed sport key"
// @Param status query string false "filter by outcome (success|error)"
// @Param since query string false "RFC3339 lower bound on created_at"
// @Param order_by query string false "created_at|external_id|status"
// @Param asc query bool false "ascending order"
// @Success 200 {object} apiResponse
// @Router /api/imports/history [get]
func (h *ImportHandler) history(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	params := repository.ListImportRecordsParams{
		Limit:      intQuery(c, "limit", 50),
		Offset:     intQuery(c, "offset", 0),
		ExternalID: strQueryPtr(c, "external_id"),
		SportKey:   strQueryPtr(c, "sport"),
		Status:     strQueryPtr(c, "status"),
		Since:      timeQueryPtr(c, "since"),
		OrderBy: parseOrder(c.Query("order_by"), map[string]string{
			"created_at":  "created_at",
			"external_id": "external_id",
			"status":      "status",
		}),
		Asc: boolQueryPtr(c, "asc"),
	}
	items, total, err := h.Service.History(c.Request.Context(), params)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("list import history failed", zap.Error(err))
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(params.Limit, params.Offset, total))
}

// @Summary Re-pull the catalog's known external ids
// @Tags imports
// @Success 200 {object} apiResponse
// @Router /api/imports/refresh-known [post]
func (h *ImportHandler) refreshKnown(c *gin.Context) {
	if h.Service == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	count, err := h.Service.RefreshKnownIDs(c.Request.Context())
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("refresh known ids failed", zap.Error(err))
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, gin.H{"known": count}, nil)
}

func intQuery(c *gin.Context, key string, def int) int {
	if val := c.Query(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return def
}

func boolQueryPtr(c *gin.Context, key string) *bool {
	if val := c.Query(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return &b
		}
	}
	return nil
}

func strQueryPtr(c *gin.Context, key string) *string {
	if val := strings.TrimSpace(c.Query(key)); val != "" {
		return &val
	}
	return nil
}

func timeQueryPtr(c *gin.Context, key string) *time.Time {
	if val := strings.TrimSpace(c.Query(key)); val != "" {
		if t, err := time.Parse(time.RFC3339, val); err == nil {
			return &t
		}
	}
	return nil
}

func parseOrder(value string, allow map[string]string) string {
	key := strings.TrimSpace(strings.ToLower(value))
	if key == "" {
		return ""
	}
	if mapped, ok := allow[key]; ok {
		return mapped
	}
	return ""
}

func paginationMeta(limit, offset int, total int64) map[string]any {
	if limit <= 0 {
		limit = 0
	}
	if offset < 0 {
		offset = 0
	}
	hasNext := int64(offset+limit) < total
	return map[string]any{
		"limit":    limit,
		"offset":   offset,
		"total":    total,
		"has_next": hasNext,
	}
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	seen := map[string]struct{}{}
	for _, item := range items {
		val := strings.TrimSpace(item)
		if val == "" {
			continue
		}
		if _, ok := seen[val]; ok {
			continue
		}
		seen[val] = struct{}{}
		out = append(out, val)
	}
	return out
}
