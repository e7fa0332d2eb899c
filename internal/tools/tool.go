package tools

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrToolNotFound 工具未注册
	ErrToolNotFound = errors.New("tool not found")

	// ErrInvalidParams 参数缺失或类型不符
	ErrInvalidParams = errors.New("invalid tool parameters")
)

// Tool 工具定义（OpenAI Function Calling 格式）
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  ParameterSchema `json:"parameters"`
	Handler     ToolHandler     `json:"-"`
}

// ParameterSchema JSON Schema 格式的参数定义
type ParameterSchema struct {
	Type       string              `json:"type"` // "object"
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required"`
}

// Property 参数属性
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Default     string `json:"default,omitempty"`
}

// ToolHandler 工具处理函数，params 已通过 Validate 校验
type ToolHandler func(ctx context.Context, params map[string]string) (string, error)

// Validate 按参数定义校验并填充默认值
// 只支持 string 类型参数
func (t *Tool) Validate(raw map[string]any) (map[string]string, error) {
	params := make(map[string]string, len(t.Parameters.Properties))
	for name, prop := range t.Parameters.Properties {
		v, ok := raw[name]
		if !ok || v == nil {
			if prop.Default != "" {
				params[name] = prop.Default
			}
			continue
		}
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s 必须是字符串", ErrInvalidParams, name)
		}
		params[name] = s
	}
	for _, name := range t.Parameters.Required {
		if params[name] == "" {
			return nil, fmt.Errorf("%w: 缺少参数 %s", ErrInvalidParams, name)
		}
	}
	return params, nil
}
