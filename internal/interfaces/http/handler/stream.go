package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/comfund/backend/internal/application/notify"
	"github.com/comfund/backend/internal/interfaces/http/dto"
	"github.com/comfund/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SSE event names
const (
	EventConnected = "connected"
	EventChanged   = "changed"
	EventHeartbeat = "heartbeat"
)

// SSEMessage is one Server-Sent Event
type SSEMessage struct {
	Event string
	Data  string
	ID    string
}

// StreamHandler pushes record changes to signed-in clients over SSE
type StreamHandler struct {
	BaseHandler
	hub       *notify.Hub
	heartbeat time.Duration
	logger    *zap.Logger
}

// NewStreamHandler creates a new stream handler. A non-positive heartbeat
// defaults to 30s.
func NewStreamHandler(hub *notify.Hub, heartbeat time.Duration, logger *zap.Logger) *StreamHandler {
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}
	return &StreamHandler{hub: hub, heartbeat: heartbeat, logger: logger.Named("stream")}
}

// Stream godoc
// @Summary      Subscribe to record changes
// @Description  Server-Sent Events stream. Each "changed" event names the collection, action and record ID so the client can refetch. EventSource clients may pass the token as access_token.
// @Tags         stream
// @Produce      text/event-stream
// @Param        access_token query string false "Access token for clients that cannot set headers"
// @Success      200 {string} string "SSE stream"
// @Failure      401 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /stream [get]
func (h *StreamHandler) Stream(c *gin.Context) {
	client, err := h.hub.Subscribe()
	if errors.Is(err, notify.ErrTooManyClients) {
		h.Error(c, dto.ErrCodeServiceBusy, "Maximum number of stream connections reached")
		return
	}
	if errors.Is(err, notify.ErrHubClosed) {
		h.Error(c, dto.ErrCodeServiceBusy, "Server is shutting down")
		return
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer h.hub.Unsubscribe(client)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	clientID := uuid.NewString()
	memberID := c.GetString(middleware.JWTMemberIDKey)
	h.logger.Debug("Stream client connected",
		zap.String("client_id", clientID),
		zap.String("member_id", memberID))

	h.send(c, SSEMessage{
		Event: EventConnected,
		Data:  fmt.Sprintf(`{"clientId":%q,"timestamp":%d}`, clientID, time.Now().Unix()),
	})

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("Stream client disconnected", zap.String("client_id", clientID))
			return
		case <-ticker.C:
			h.send(c, SSEMessage{
				Event: EventHeartbeat,
				Data:  fmt.Sprintf(`{"timestamp":%d}`, time.Now().Unix()),
			})
		case change, ok := <-client.Changes():
			if !ok {
				// hub closed on shutdown
				return
			}
			data, err := json.Marshal(change)
			if err != nil {
				h.logger.Error("Failed to marshal change", zap.Error(err))
				continue
			}
			h.send(c, SSEMessage{
				Event: EventChanged,
				Data:  string(data),
				ID:    fmt.Sprintf("%d", change.At.UnixNano()),
			})
		}
	}
}

func (h *StreamHandler) send(c *gin.Context, msg SSEMessage) {
	writeEvent(c.Writer, msg)
	c.Writer.Flush()
}

// writeEvent writes msg in the text/event-stream format
func writeEvent(w io.Writer, msg SSEMessage) {
	if msg.Event != "" {
		fmt.Fprintf(w, "event: %s\n", msg.Event)
	}
	if msg.ID != "" {
		fmt.Fprintf(w, "id: %s\n", msg.ID)
	}
	fmt.Fprintf(w, "data: %s\n\n", msg.Data)
}
