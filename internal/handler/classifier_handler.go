package handler

import (
	"net/http"

	"github.com/adminguide/adminguide-go/internal/agent"
	"github.com/adminguide/adminguide-go/internal/model"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ClassifierHandler 分类处理器
type ClassifierHandler struct {
	logger *zap.Logger
}

// NewClassifierHandler 创建分类处理器
func NewClassifierHandler(logger *zap.Logger) *ClassifierHandler {
	return &ClassifierHandler{logger: logger}
}

// Classify 问题分类接口，不调用模型服务
func (h *ClassifierHandler) Classify(c *gin.Context) {
	question := c.Query("question")
	if question == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "question 参数不能为空"})
		return
	}

	topic := agent.Classify(question)
	persona := agent.Lookup(topic)
	h.logger.Debug("问题分类完成", zap.String("topic", topic.String()))

	c.JSON(http.StatusOK, model.ClassifyResponse{
		Category:    topic.String(),
		Name:        persona.Name,
		Emoji:       persona.Emoji,
		Description: persona.Description,
	})
}
