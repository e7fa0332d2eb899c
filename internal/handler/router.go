package handler

import (
	"github.com/adminguide/adminguide-go/internal/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterOptions 路由依赖
type RouterOptions struct {
	Chat         *ChatHandler
	API          *APIHandler
	Classifier   *ClassifierHandler
	WebSocket    *WebSocketHandler // 为 nil 时不注册 /ws/chat
	Streaming    bool              // true 时 /api/chat 为流式接口
	AllowOrigins []string
	Logger       *zap.Logger
}

// NewRouter 创建 gin 路由
func NewRouter(opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(opts.Logger))
	r.Use(middleware.CORS(opts.AllowOrigins))

	api := r.Group("/api")
	{
		if opts.Streaming {
			api.POST("/chat", opts.Chat.Stream)
		} else {
			api.POST("/chat", opts.Chat.Buffered)
		}
		api.GET("/health", opts.API.Health)
		api.GET("/agents", opts.API.Agents)
		api.GET("/agents/:type", opts.API.Agent)
		api.POST("/validate-key", opts.API.ValidateKey)
		api.GET("/tools", opts.API.ListTools)
		api.POST("/tools/:name", opts.API.ExecuteTool)
		api.GET("/classify", opts.Classifier.Classify)
	}

	if opts.WebSocket != nil {
		r.GET("/ws/chat", opts.WebSocket.HandleWebSocket)
	}

	return r
}
