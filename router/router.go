package router

import (
	"github.com/gin-gonic/gin"

	"github.com/thaoanhhaa1/kltn-backend/controller"
	"github.com/thaoanhhaa1/kltn-backend/middleware"
)

// New 组装路由，依赖由 main 构造后传入
func New(chatController *controller.ChatController, accessSecret string) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.Logger)

	addBasicRouter(engine)
	addApiRouter(engine, chatController, accessSecret)

	return engine
}

func addBasicRouter(engine *gin.Engine) {
	engine.GET("/api/v1/chat-service/health", controller.Health)
}
