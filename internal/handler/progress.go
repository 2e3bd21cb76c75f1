package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"clipforge/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// local desktop tool, the UI may be served from another port
	CheckOrigin: func(r *http.Request) bool { return true },
}

const progressWriteTimeout = 10 * time.Second

// SubscribeProgress streams one task's progress events over a websocket
// until the run reaches a terminal stage or the client disconnects.
func (h *Handler) SubscribeProgress(c *gin.Context) {
	taskId := c.Param("taskId")
	if taskId == "" {
		taskId = c.Query("taskId")
	}
	if taskId == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "taskId is required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.GetLogger().Error("SubscribeProgress upgrade err", zap.Error(err))
		return
	}
	defer conn.Close()

	events, cancel := h.Runner.Broadcaster().Subscribe(taskId)
	defer cancel()

	// drain reads so close frames from the client are noticed
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-clientGone:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(progressWriteTimeout))
			if err := conn.WriteJSON(event); err != nil {
				log.GetLogger().Warn("SubscribeProgress write err",
					zap.String("task_id", taskId), zap.Error(err))
				return
			}
			if event.Stage == "done" || event.Stage == "failed" {
				return
			}
		}
	}
}
