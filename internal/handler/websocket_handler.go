package handler

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/adminguide/adminguide-go/internal/agent"
	"github.com/adminguide/adminguide-go/internal/model"
	"github.com/adminguide/adminguide-go/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// 每个连接最多排队的聊天请求数
	wsQueueSize = 4
	// 单条客户端消息的最大字节数
	wsMaxMessageSize = 1 << 20
)

// WebSocketHandler WebSocket 处理器
type WebSocketHandler struct {
	sessionService *service.SessionService
	chatService    *service.ChatService
	upgrader       websocket.Upgrader
	logger         *zap.Logger
}

// NewWebSocketHandler 创建 WebSocket 处理器
func NewWebSocketHandler(sessionService *service.SessionService, chatService *service.ChatService, allowOrigins []string, logger *zap.Logger) *WebSocketHandler {
	allowAll := slices.Contains(allowOrigins, "*")
	return &WebSocketHandler{
		sessionService: sessionService,
		chatService:    chatService,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowAll || slices.Contains(allowOrigins, origin)
			},
		},
		logger: logger,
	}
}

// HandleWebSocket WebSocket 连接入口
// 同一连接上的聊天请求按顺序处理，连接关闭时取消进行中的请求
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("WebSocket 升级失败", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(wsMaxMessageSize)

	session := model.NewConnSession(uuid.New().String(), c.ClientIP(), conn)
	h.sessionService.Register(session)
	defer h.sessionService.Remove(session.SessionID)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	jobs := make(chan model.WSRequest, wsQueueSize)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for req := range jobs {
			if ctx.Err() != nil {
				continue
			}
			h.handleChat(ctx, session, req)
		}
	}()

	// 消息循环
	for {
		var msg model.WSRequest
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("WebSocket 读取错误", zap.String("sessionId", session.SessionID), zap.Error(err))
			}
			break
		}

		switch msg.Type {
		case model.WSTypeChat:
			if msg.MessageID == "" {
				msg.MessageID = uuid.New().String()
			}
			select {
			case jobs <- msg:
			default:
				h.writeError(session, msg.MessageID, http.StatusTooManyRequests, localized(agent.DefaultLanguage).tooManyRequests)
			}

		case model.WSTypeHeartbeat:
			h.sessionService.UpdateHeartbeat(session.SessionID)
			_ = session.WriteMessage(model.WSResponse{Type: model.WSTypeHeartbeat})

		default:
			h.logger.Warn("未知消息类型",
				zap.String("sessionId", session.SessionID),
				zap.String("type", msg.Type))
		}
	}

	cancel()
	close(jobs)
	wg.Wait()

	h.logger.Info("WebSocket 连接断开",
		zap.String("sessionId", session.SessionID),
		zap.Duration("duration", time.Since(session.ConnectedAt)))
}

// handleChat 处理一次聊天请求，片段逐条推送
func (h *WebSocketHandler) handleChat(ctx context.Context, session *model.ConnSession, req model.WSRequest) {
	apiKey := strings.TrimSpace(req.APIKey)
	if apiKey == "" {
		h.writeError(session, req.MessageID, http.StatusUnauthorized, localized(agent.DefaultLanguage).apiKeyRequired)
		return
	}
	lang, err := agent.ParseLanguage(req.Language)
	if err != nil {
		h.writeError(session, req.MessageID, http.StatusBadRequest, localized(agent.DefaultLanguage).badRequest)
		return
	}

	stream, err := h.chatService.Stream(ctx, service.ChatRequest{
		RequestID: req.MessageID,
		Turns:     req.Messages,
		Language:  lang,
		APIKey:    apiKey,
		Mode:      service.ModeWebSocket,
	})
	if err != nil {
		status, text := ErrorStatus(err, lang)
		h.writeError(session, req.MessageID, status, text)
		return
	}
	defer stream.Close()

	err = session.WriteMessage(model.WSResponse{
		Type:      model.WSTypeAgent,
		MessageID: req.MessageID,
		AgentType: stream.Topic.String(),
		Agent:     &model.AgentInfo{Name: stream.Persona.Name, Emoji: stream.Persona.Emoji},
	})
	if err != nil {
		return
	}

	for frag, err := range stream.Fragments() {
		if err != nil {
			status, text := ErrorStatus(err, lang)
			h.writeError(session, req.MessageID, status, text)
			return
		}
		if err := session.WriteMessage(model.WSResponse{Type: model.WSTypeChunk, MessageID: req.MessageID, Content: frag}); err != nil {
			return
		}
	}

	_ = session.WriteMessage(model.WSResponse{Type: model.WSTypeDone, MessageID: req.MessageID})
}

func (h *WebSocketHandler) writeError(session *model.ConnSession, messageID string, status int, text string) {
	err := session.WriteMessage(model.WSResponse{
		Type:      model.WSTypeError,
		MessageID: messageID,
		Status:    status,
		Error:     text,
	})
	if err != nil {
		h.logger.Debug("发送错误消息失败", zap.String("sessionId", session.SessionID), zap.Error(err))
	}
}
