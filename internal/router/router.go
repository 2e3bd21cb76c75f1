package router

import (
	"github.com/gin-gonic/gin"

	"clipforge/internal/handler"
)

func SetupRouter(r *gin.Engine) {
	api := r.Group("/api")

	hdl := handler.NewHandler()
	{
		api.POST("/highlight/task", hdl.StartHighlightTask)
		api.GET("/highlight/task", hdl.GetHighlightTask)
		api.GET("/highlight/task/:taskId", hdl.GetHighlightTask)
		api.GET("/highlight/history", hdl.GetRunHistory)
		api.DELETE("/highlight/task/:taskId", hdl.DeleteRun)
		api.GET("/highlight/progress/:taskId", hdl.SubscribeProgress)
	}
}
