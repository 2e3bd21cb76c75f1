package server

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clipforge/config"
	"clipforge/internal/router"
	"clipforge/log"
)

func StartBackend() error {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.Default()

	router.SetupRouter(engine)

	addr := fmt.Sprintf("%s:%d", config.Conf.Server.Host, config.Conf.Server.Port)
	log.GetLogger().Info("后端服务启动 Backend server starting", zap.String("addr", addr))
	return engine.Run(addr)
}
