package model

// Turn 对话中的一轮消息
type Turn struct {
	Role    string `json:"role" binding:"required,oneof=user assistant"`
	Content string `json:"content"`
}

// BufferedChatRequest 缓冲模式聊天请求
type BufferedChatRequest struct {
	Message string `json:"message"`
	History []Turn `json:"history" binding:"omitempty,dive"`
}

// StreamChatRequest 流式聊天请求
type StreamChatRequest struct {
	Messages []Turn `json:"messages" binding:"omitempty,dive"`
	Language string `json:"language"`
}

// AgentInfo 当前负责回答的角色
type AgentInfo struct {
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
}

// ChatResponse 缓冲模式聊天响应
type ChatResponse struct {
	Response  string    `json:"response"`
	Agent     AgentInfo `json:"agent"`
	AgentType string    `json:"agentType"`
}

// AgentDescriptor 角色目录条目
type AgentDescriptor struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Emoji       string `json:"emoji"`
	Description string `json:"description"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error string `json:"error"`
}

// ValidateKeyRequest 校验 API Key 请求
type ValidateKeyRequest struct {
	APIKey string `json:"apiKey"`
}

// ValidateKeyResponse 校验 API Key 响应
type ValidateKeyResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// WebSocket 消息类型
const (
	WSTypeChat      = "CHAT"
	WSTypeHeartbeat = "HEARTBEAT"
	WSTypeAgent     = "AGENT"
	WSTypeChunk     = "CHUNK"
	WSTypeDone      = "DONE"
	WSTypeError     = "ERROR"
)

// WSRequest 客户端发来的 WebSocket 消息
type WSRequest struct {
	Type      string `json:"type"` // CHAT, HEARTBEAT
	MessageID string `json:"messageId,omitempty"`
	Messages  []Turn `json:"messages,omitempty"`
	Language  string `json:"language,omitempty"`
	APIKey    string `json:"apiKey,omitempty"`
}

// WSResponse 服务端推送的 WebSocket 消息
type WSResponse struct {
	Type      string     `json:"type"` // AGENT, CHUNK, DONE, ERROR, HEARTBEAT
	MessageID string     `json:"messageId,omitempty"`
	AgentType string     `json:"agentType,omitempty"`
	Agent     *AgentInfo `json:"agent,omitempty"`
	Content   string     `json:"content,omitempty"`
	Status    int        `json:"status,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// ClassifyResponse 问题分类响应
type ClassifyResponse struct {
	Category    string `json:"category"`
	Name        string `json:"name"`
	Emoji       string `json:"emoji"`
	Description string `json:"description"`
}
