package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/thaoanhhaa1/kltn-backend/middleware"
	"github.com/thaoanhhaa1/kltn-backend/model"
	"github.com/thaoanhhaa1/kltn-backend/service/chat"
	"github.com/thaoanhhaa1/kltn-backend/service/ingest"
)

// ChatController 聊天相关接口，依赖在 main 里注入
type ChatController struct {
	chatService   *chat.Service
	ingestService *ingest.Service
}

func NewChatController(chatService *chat.Service, ingestService *ingest.Service) *ChatController {
	return &ChatController{
		chatService:   chatService,
		ingestService: ingestService,
	}
}

// Generate 生成回答接口
func (c *ChatController) Generate(ctx *gin.Context) {
	var req model.GenerateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := middleware.UserIDFromContext(ctx)

	res, err := c.chatService.Generate(ctx, userID, req.Query)
	if err != nil {
		log.Errorf("Generate error: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"response": res})
}

// ListChats 查询当前用户聊天历史
func (c *ChatController) ListChats(ctx *gin.Context) {
	var req model.ListChatsRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := middleware.UserIDFromContext(ctx)

	chats, total, err := c.chatService.ListChats(ctx, userID, &req)
	if err != nil {
		log.Errorf("ListChats error: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Message})
		return
	}

	if req.Pagination {
		ctx.JSON(http.StatusOK, gin.H{"chats": chats, "total": total})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"chats": chats})
}

// DeleteDocument 删除某 collection 下某房源的全部索引条目
func (c *ChatController) DeleteDocument(ctx *gin.Context) {
	collection := ctx.Param("collection_name")
	documentID := ctx.Param("document_id")

	if err := c.ingestService.DeleteDocument(ctx, collection, documentID); err != nil {
		log.Errorf("DeleteDocument error: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Document deleted successfully"})
}

// Health 存活探针
func Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}
