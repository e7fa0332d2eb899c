package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/adminguide/adminguide-go/internal/agent"
	"github.com/adminguide/adminguide-go/internal/client"
	"github.com/adminguide/adminguide-go/internal/model"
	"github.com/adminguide/adminguide-go/internal/tools"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	apiKeyPrefix       = "sk-"
	apiKeyMinLength    = 21
	validateKeyTimeout = 10 * time.Second
)

// KeyValidator 校验 API Key 是否可用
type KeyValidator interface {
	ValidateKey(ctx context.Context, apiKey string) error
}

// ConnCounter 当前 WebSocket 连接数
type ConnCounter interface {
	OnlineCount() int
}

// APIHandler 通用 API 处理器
type APIHandler struct {
	serviceName string
	modelName   string
	validator   KeyValidator
	registry    *tools.Registry
	conns       ConnCounter
	logger      *zap.Logger
}

// NewAPIHandler 创建 API 处理器，conns 可为 nil
func NewAPIHandler(serviceName, modelName string, validator KeyValidator, registry *tools.Registry, conns ConnCounter, logger *zap.Logger) *APIHandler {
	return &APIHandler{
		serviceName: serviceName,
		modelName:   modelName,
		validator:   validator,
		registry:    registry,
		conns:       conns,
		logger:      logger,
	}
}

// Health 健康检查
func (h *APIHandler) Health(c *gin.Context) {
	resp := gin.H{
		"status":  "UP",
		"service": h.serviceName,
		"model":   h.modelName,
		"tools":   h.registry.Count(),
	}
	if h.conns != nil {
		resp["connections"] = h.conns.OnlineCount()
	}
	c.JSON(http.StatusOK, resp)
}

// Agents 专家角色目录
func (h *APIHandler) Agents(c *gin.Context) {
	personas := agent.All()
	list := make([]model.AgentDescriptor, 0, len(personas))
	for _, p := range personas {
		list = append(list, describe(p))
	}
	c.JSON(http.StatusOK, gin.H{"agents": list})
}

// Agent 按分类查询单个专家角色
func (h *APIHandler) Agent(c *gin.Context) {
	topic, ok := agent.ParseTopic(c.Param("type"))
	if !ok {
		c.JSON(http.StatusNotFound, model.ErrorResponse{Error: "unknown agent type"})
		return
	}
	c.JSON(http.StatusOK, describe(agent.Lookup(topic)))
}

func describe(p agent.Persona) model.AgentDescriptor {
	return model.AgentDescriptor{
		Type:        p.Topic.String(),
		Name:        p.Name,
		Emoji:       p.Emoji,
		Description: p.Description,
	}
}

// ValidateKey 校验调用方的 API Key
// 除请求体格式错误外一律返回 200，结果放在 valid 字段
func (h *APIHandler) ValidateKey(c *gin.Context) {
	var req model.ValidateKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: localized(agent.DefaultLanguage).badRequest})
		return
	}

	key := strings.TrimSpace(req.APIKey)
	if !strings.HasPrefix(key, apiKeyPrefix) || len(key) < apiKeyMinLength {
		c.JSON(http.StatusOK, model.ValidateKeyResponse{Valid: false, Error: "올바른 API 키 형식이 아닙니다"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), validateKeyTimeout)
	defer cancel()

	err := h.validator.ValidateKey(ctx, key)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, model.ValidateKeyResponse{Valid: true})
	case errors.Is(err, client.ErrUnauthorized):
		c.JSON(http.StatusOK, model.ValidateKeyResponse{Valid: false, Error: "유효하지 않은 API 키입니다"})
	case client.IsRateLimited(err):
		c.JSON(http.StatusOK, model.ValidateKeyResponse{Valid: false, Error: localized(agent.DefaultLanguage).tooManyRequests})
	default:
		h.logger.Warn("API Key 校验失败", zap.Error(err))
		c.JSON(http.StatusOK, model.ValidateKeyResponse{Valid: false, Error: "API 키를 확인할 수 없습니다"})
	}
}

// ListTools 工具定义列表
func (h *APIHandler) ListTools(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tools": h.registry.List()})
}

// ExecuteTool 执行指定工具
func (h *APIHandler) ExecuteTool(c *gin.Context) {
	name := c.Param("name")
	args, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: localized(agent.DefaultLanguage).badRequest})
		return
	}

	result, err := h.registry.Execute(c.Request.Context(), name, args)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"result": result})
	case errors.Is(err, tools.ErrToolNotFound):
		c.JSON(http.StatusNotFound, model.ErrorResponse{Error: "tool not found: " + name})
	case errors.Is(err, tools.ErrInvalidParams):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: localized(agent.DefaultLanguage).serverError})
	}
}
