package router

import (
	"github.com/gin-gonic/gin"

	"github.com/thaoanhhaa1/kltn-backend/controller"
	"github.com/thaoanhhaa1/kltn-backend/middleware"
)

func addApiRouter(engine *gin.Engine, chatController *controller.ChatController, accessSecret string) {

	// 聊天相关 API，全部要求 bearer token
	api := engine.Group("/api/v1/chat-service")
	api.Use(middleware.Auth(accessSecret))
	{
		api.POST("/generate", chatController.Generate)
		api.GET("/chats", chatController.ListChats)
		api.DELETE("/:collection_name/:document_id", chatController.DeleteDocument)
	}
}
