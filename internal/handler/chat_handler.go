package handler

import (
	"fmt"
	"iter"
	"net/http"
	"strings"

	"github.com/adminguide/adminguide-go/internal/agent"
	"github.com/adminguide/adminguide-go/internal/middleware"
	"github.com/adminguide/adminguide-go/internal/model"
	"github.com/adminguide/adminguide-go/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChatHandler 聊天处理器
type ChatHandler struct {
	chatService *service.ChatService
	apiKey      string // 仅缓冲模式使用，启动时从配置读取
	logger      *zap.Logger
}

// NewChatHandler 创建聊天处理器
// apiKey 为空时只能提供流式接口（凭证由请求头传入）
func NewChatHandler(chatService *service.ChatService, apiKey string, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		apiKey:      apiKey,
		logger:      logger,
	}
}

// Buffered 缓冲模式：POST /api/chat {message, history}
func (h *ChatHandler) Buffered(c *gin.Context) {
	msg := localized(agent.DefaultLanguage)

	var req model.BufferedChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("请求体解析失败", zap.Error(err))
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: msg.badRequest})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: msg.messageRequired})
		return
	}

	turns := make([]model.Turn, 0, len(req.History)+1)
	turns = append(turns, req.History...)
	turns = append(turns, model.Turn{Role: "user", Content: req.Message})

	reply, err := h.chatService.Complete(c.Request.Context(), service.ChatRequest{
		RequestID: c.GetString(middleware.RequestIDKey),
		Turns:     turns,
		Language:  agent.DefaultLanguage,
		APIKey:    h.apiKey,
		Mode:      service.ModeBuffered,
	})
	if err != nil {
		status, text := ErrorStatus(err, agent.DefaultLanguage)
		if status == http.StatusUnauthorized {
			// 服务端凭证缺失属于配置问题
			status, text = http.StatusInternalServerError, msg.serverError
		}
		c.JSON(status, model.ErrorResponse{Error: text})
		return
	}

	text := reply.Text
	if text == "" {
		text = msg.emptyReply
	}
	c.JSON(http.StatusOK, model.ChatResponse{
		Response:  text,
		Agent:     model.AgentInfo{Name: reply.Persona.Name, Emoji: reply.Persona.Emoji},
		AgentType: reply.Topic.String(),
	})
}

// Stream 流式模式：POST /api/chat，X-OpenAI-API-Key + {messages, language}
// 角色信息在第一个片段之前写入响应头，正文为片段原样拼接
func (h *ChatHandler) Stream(c *gin.Context) {
	apiKey := strings.TrimSpace(c.GetHeader(middleware.APIKeyHeader))
	if apiKey == "" {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Error: localized(agent.DefaultLanguage).apiKeyRequired})
		return
	}

	var req model.StreamChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("请求体解析失败", zap.Error(err))
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: localized(agent.DefaultLanguage).badRequest})
		return
	}
	lang, err := agent.ParseLanguage(req.Language)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: localized(agent.DefaultLanguage).badRequest})
		return
	}
	if len(req.Messages) == 0 {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: localized(lang).messagesRequired})
		return
	}

	stream, err := h.chatService.Stream(c.Request.Context(), service.ChatRequest{
		RequestID: c.GetString(middleware.RequestIDKey),
		Turns:     req.Messages,
		Language:  lang,
		APIKey:    apiKey,
		Mode:      service.ModeStreaming,
	})
	if err != nil {
		status, text := ErrorStatus(err, lang)
		c.JSON(status, model.ErrorResponse{Error: text})
		return
	}
	defer stream.Close()

	// 先取第一个片段：此前的上游失败仍可按错误码返回
	next, stop := iter.Pull2(stream.Fragments())
	defer stop()

	frag, err, ok := next()
	if ok && err != nil {
		status, text := ErrorStatus(err, lang)
		c.JSON(status, model.ErrorResponse{Error: text})
		return
	}

	header := c.Writer.Header()
	header.Set("Content-Type", "text/plain; charset=utf-8")
	header.Set("Cache-Control", "no-cache")
	header.Set("X-Content-Type-Options", "nosniff")
	header.Set(middleware.AgentNameHeader, EncodeHeaderValue(stream.Persona.Name))
	header.Set(middleware.AgentTypeHeader, stream.Topic.String())
	c.Status(http.StatusOK)

	for ; ok; frag, err, ok = next() {
		if err != nil {
			// 响应头已发送，只能截断正文
			return
		}
		if _, err := c.Writer.WriteString(frag); err != nil {
			h.logger.Info("客户端已断开", zap.String("requestId", stream.RequestID), zap.Error(err))
			return
		}
		c.Writer.Flush()
	}
	c.Writer.WriteHeaderNow()
}

// EncodeHeaderValue 按 encodeURIComponent 规则编码响应头的值
// 字母、数字和 -_.!~*'() 保持原样，其余字节按 UTF-8 百分号编码
func EncodeHeaderValue(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if unreservedComponent(ch) {
			b.WriteByte(ch)
			continue
		}
		fmt.Fprintf(&b, "%%%02X", ch)
	}
	return b.String()
}

func unreservedComponent(ch byte) bool {
	switch {
	case 'a' <= ch && ch <= 'z', 'A' <= ch && ch <= 'Z', '0' <= ch && ch <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", ch) >= 0
}
