package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"oddsimport/internal/stream"
)

type StreamHandler struct {
	Hub    *stream.Hub
	Logger *zap.Logger
}

func (h *StreamHandler) Register(r *gin.Engine) {
	r.GET("/api/imports/stream", h.serve)
}

// @Summary Stream import state transitions over websocket
// @Tags imports
// @Success 101 {string} string "switching protocols"
// @Router /api/imports/stream [get]
func (h *StreamHandler) serve(c *gin.Context) {
	if h.Hub == nil {
		Error(c, http.StatusInternalServerError, "stream unavailable", nil)
		return
	}
	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("websocket accept failed", zap.Error(err))
		}
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	err = h.Hub.Serve(c.Request.Context(), conn)
	if err != nil && !errors.Is(err, context.Canceled) {
		if h.Logger != nil {
			h.Logger.Debug("websocket session ended", zap.Error(err))
		}
	}
}
