package http

import (
	"github.com/gin-gonic/gin"

	appsvc "chatdocs/internal/app"
	"chatdocs/internal/bootstrap"
	"chatdocs/internal/pkg/pdfextract"
	"chatdocs/internal/platform/rabbitmq"
	"chatdocs/internal/repository"
	"chatdocs/internal/transport/http/handler"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	chunkRepo := repository.NewChunkRepository(app.MySQL)
	publisher := rabbitmq.NewEventPublisher(app.MQConn, app.Config.RabbitMQ.DocumentEventQueue)

	documentService := appsvc.NewDocumentService(
		app.Blob,
		app.Embedder,
		chunkRepo,
		publisher,
		pdfextract.ExtractPages,
		app.Config.RAG.ChunkSize,
		app.Config.RAG.OverlapSize,
	)
	chatService := appsvc.NewChatService(
		chunkRepo,
		app.Embedder,
		app.Chat,
		app.EmbeddingCache,
		app.Config.RAG.TopK,
	)

	documentHandler := handler.NewDocumentHandler(documentService)
	chatHandler := handler.NewChatHandler(chatService)
	eventHandler := handler.NewEventHandler(repository.NewDocumentEventRepository(app.MySQL))

	router.POST("/documents", documentHandler.Upload)
	router.GET("/documents", documentHandler.List)
	router.DELETE("/documents/:documentId", documentHandler.Delete)
	router.GET("/documents/:documentId/events", eventHandler.ListByDocument)
	router.POST("/chat", chatHandler.Chat)

	return router
}
