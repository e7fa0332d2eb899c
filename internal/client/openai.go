package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// OpenAIClient OpenAI Chat Completions 客户端
// 凭证按调用传入，客户端本身不保存任何 API Key
type OpenAIClient struct {
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewOpenAIClient 创建 OpenAI 客户端
// firstByteTimeout 限制等待响应头的时间；整体时长由调用方的 context 控制
func NewOpenAIClient(baseURL, model string, firstByteTimeout time.Duration, logger *zap.Logger) *OpenAIClient {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = firstByteTimeout

	return &OpenAIClient{
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Transport: transport},
		logger:     logger,
	}
}

// Model 返回使用的模型名称
func (c *OpenAIClient) Model() string {
	return c.model
}

// Message 消息
type Message struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

// Parameters 生成参数（来自配置，不随请求变化）
type Parameters struct {
	Temperature float64
	MaxTokens   int
}

// ChatRequest 聊天请求
type ChatRequest struct {
	Model         string         `json:"model"`
	Messages      []Message      `json:"messages"`
	Temperature   float64        `json:"temperature,omitempty"`
	MaxTokens     int            `json:"max_tokens,omitempty"`
	Stream        bool           `json:"stream,omitempty"`
	StreamOptions *StreamOptions `json:"stream_options,omitempty"`
}

// StreamOptions 流式选项
type StreamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

// Usage token 用量
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResponse 聊天响应
type ChatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Usage *Usage `json:"usage"`
}

// ChatResult 缓冲模式的调用结果
type ChatResult struct {
	Text         string
	Model        string
	FinishReason string
	Usage        *Usage
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// Chat 调用聊天接口，等待完整回复
func (c *OpenAIClient) Chat(ctx context.Context, apiKey string, messages []Message, params Parameters) (*ChatResult, error) {
	resp, err := c.post(ctx, apiKey, c.newRequest(messages, params, false))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError("读取响应失败", err)
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, &ProviderError{Status: resp.StatusCode, Message: "解析响应失败", Err: fmt.Errorf("%w: %w", ErrMalformedResponse, err)}
	}
	if len(chatResp.Choices) == 0 {
		return nil, &ProviderError{Status: resp.StatusCode, Message: "响应中没有 choices", Err: ErrMalformedResponse}
	}

	choice := chatResp.Choices[0]
	c.logger.Debug("聊天接口调用完成",
		zap.String("model", chatResp.Model),
		zap.String("finishReason", choice.FinishReason))

	return &ChatResult{
		Text:         choice.Message.Content,
		Model:        chatResp.Model,
		FinishReason: choice.FinishReason,
		Usage:        chatResp.Usage,
	}, nil
}

// ChatStream 以流式方式调用聊天接口
// 返回前已确认上游状态码为 200，调用方必须 Close 返回的 Stream
func (c *OpenAIClient) ChatStream(ctx context.Context, apiKey string, messages []Message, params Parameters) (*Stream, error) {
	req := c.newRequest(messages, params, true)
	req.StreamOptions = &StreamOptions{IncludeUsage: true}

	resp, err := c.post(ctx, apiKey, req)
	if err != nil {
		return nil, err
	}
	return NewStream(resp.Body, c.model), nil
}

// ValidateKey 用凭证请求模型列表，判断其是否可用
func (c *OpenAIClient) ValidateKey(ctx context.Context, apiKey string) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return transportError("请求失败", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.readError(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *OpenAIClient) newRequest(messages []Message, params Parameters, stream bool) ChatRequest {
	return ChatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: params.Temperature,
		MaxTokens:   params.MaxTokens,
		Stream:      stream,
	}
}

// post 发送请求；非 200 响应会被读取并转换为 ProviderError
func (c *OpenAIClient) post(ctx context.Context, apiKey string, reqBody ChatRequest) (*http.Response, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("序列化请求失败: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	if reqBody.Stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, transportError("请求失败", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, c.readError(resp)
	}
	return resp, nil
}

func (c *OpenAIClient) readError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	message := ""
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		message = errResp.Error.Message
	}
	if message == "" {
		message = string(bytes.TrimSpace(body))
	}

	fields := []zap.Field{zap.Int("status", resp.StatusCode)}
	// 401/403 的错误信息可能包含脱敏后的 key 片段，不写入日志
	if resp.StatusCode != http.StatusUnauthorized && resp.StatusCode != http.StatusForbidden {
		fields = append(fields, zap.String("message", message))
	}
	c.logger.Warn("模型服务返回错误", fields...)

	return statusError(resp.StatusCode, message)
}
