package service

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"
	"time"

	"github.com/adminguide/adminguide-go/internal/agent"
	"github.com/adminguide/adminguide-go/internal/client"
	"github.com/adminguide/adminguide-go/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrInvalidInput 对话为空或最后一轮不是用户消息
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingCredential 缺少模型服务凭证
	ErrMissingCredential = errors.New("missing provider credential")
)

// ChatProvider 模型服务
type ChatProvider interface {
	Chat(ctx context.Context, apiKey string, messages []client.Message, params client.Parameters) (*client.ChatResult, error)
	ChatStream(ctx context.Context, apiKey string, messages []client.Message, params client.Parameters) (*client.Stream, error)
	Model() string
}

// UsageReporter 接收使用记录，实现方不得阻塞
type UsageReporter interface {
	Record(rec UsageRecord)
}

// ChatService 聊天中转服务：分类问题、选择角色提示词、转发对话
type ChatService struct {
	provider ChatProvider
	params   client.Parameters
	timeout  time.Duration
	usage    UsageReporter
	logger   *zap.Logger
}

// NewChatService 创建聊天中转服务
// timeout 为整体调用时限，<= 0 表示只受调用方 context 约束
func NewChatService(provider ChatProvider, params client.Parameters, timeout time.Duration, usage UsageReporter, logger *zap.Logger) *ChatService {
	return &ChatService{
		provider: provider,
		params:   params,
		timeout:  timeout,
		usage:    usage,
		logger:   logger,
	}
}

// ChatRequest 一次中转请求
type ChatRequest struct {
	RequestID string
	Turns     []model.Turn
	Language  agent.Language
	APIKey    string
	Mode      string
}

func (r ChatRequest) validate() error {
	if len(r.Turns) == 0 {
		return fmt.Errorf("%w: 对话为空", ErrInvalidInput)
	}
	for i, t := range r.Turns {
		if t.Role != "user" && t.Role != "assistant" {
			return fmt.Errorf("%w: 第 %d 轮角色无效", ErrInvalidInput, i)
		}
	}
	if r.Turns[len(r.Turns)-1].Role != "user" {
		return fmt.Errorf("%w: 最后一轮必须是用户消息", ErrInvalidInput)
	}
	if r.APIKey == "" {
		return ErrMissingCredential
	}
	return nil
}

// ChatReply 缓冲模式的中转结果
type ChatReply struct {
	RequestID string
	Text      string
	Topic     agent.Topic
	Persona   agent.Persona
	Model     string
	Usage     *client.Usage
}

// Complete 缓冲模式：等待完整回复后返回
func (s *ChatService) Complete(ctx context.Context, req ChatRequest) (*ChatReply, error) {
	route, err := s.route(&req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	result, err := s.provider.Chat(ctx, req.APIKey, route.messages, s.params)
	rec := s.newRecord(req, route.topic, start)
	if err != nil {
		rec.Status = usageStatus(err)
		s.usage.Record(rec)
		s.logger.Error("模型服务调用失败",
			zap.String("requestId", req.RequestID),
			zap.String("topic", route.topic.String()),
			zap.Error(err))
		return nil, err
	}

	rec.Status = UsageStatusOK
	if result.Model != "" {
		rec.Model = result.Model
	}
	applyTokens(&rec, result.Usage)
	s.usage.Record(rec)

	return &ChatReply{
		RequestID: req.RequestID,
		Text:      result.Text,
		Topic:     route.topic,
		Persona:   route.persona,
		Model:     rec.Model,
		Usage:     result.Usage,
	}, nil
}

// Stream 流式模式：返回前已确认上游接受请求
// 调用方必须 Close 返回的 ChatStream
func (s *ChatService) Stream(ctx context.Context, req ChatRequest) (*ChatStream, error) {
	route, err := s.route(&req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	start := time.Now()
	upstream, err := s.provider.ChatStream(ctx, req.APIKey, route.messages, s.params)
	if err != nil {
		cancel()
		rec := s.newRecord(req, route.topic, start)
		rec.Status = usageStatus(err)
		s.usage.Record(rec)
		s.logger.Error("模型服务流式调用失败",
			zap.String("requestId", req.RequestID),
			zap.String("topic", route.topic.String()),
			zap.Error(err))
		return nil, err
	}

	return &ChatStream{
		RequestID: req.RequestID,
		Topic:     route.topic,
		Persona:   route.persona,
		upstream:  upstream,
		cancel:    cancel,
		service:   s,
		req:       req,
		start:     start,
	}, nil
}

type routed struct {
	topic    agent.Topic
	persona  agent.Persona
	messages []client.Message
}

// route 校验请求、分类并构造上游消息
func (s *ChatService) route(req *ChatRequest) (*routed, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if req.RequestID == "" {
		req.RequestID = uuid.New().String()
	}
	if req.Language == "" {
		req.Language = agent.DefaultLanguage
	}

	topic := ClassifyTurns(req.Turns)
	persona := agent.Lookup(topic)

	s.logger.Info("问题已分类",
		zap.String("requestId", req.RequestID),
		zap.String("mode", req.Mode),
		zap.String("topic", topic.String()),
		zap.String("language", string(req.Language)),
		zap.Int("turns", len(req.Turns)))

	return &routed{
		topic:    topic,
		persona:  persona,
		messages: BuildMessages(persona.Instructions(req.Language), req.Turns),
	}, nil
}

func (s *ChatService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *ChatService) newRecord(req ChatRequest, topic agent.Topic, start time.Time) UsageRecord {
	return UsageRecord{
		RequestID: req.RequestID,
		Timestamp: start.UTC(),
		Mode:      req.Mode,
		Model:     s.provider.Model(),
		Language:  string(req.Language),
		Topic:     topic.String(),
		LatencyMs: time.Since(start).Milliseconds(),
	}
}

// ClassifyTurns 对最后一条用户消息分类，没有用户消息时返回 triage
func ClassifyTurns(turns []model.Turn) agent.Topic {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == "user" {
			return agent.Classify(turns[i].Content)
		}
	}
	return agent.TopicTriage
}

// BuildMessages 系统提示词在前，其后原样附加调用方的对话
func BuildMessages(instructions string, turns []model.Turn) []client.Message {
	messages := make([]client.Message, 0, len(turns)+1)
	messages = append(messages, client.Message{Role: "system", Content: instructions})
	for _, t := range turns {
		messages = append(messages, client.Message{Role: t.Role, Content: t.Content})
	}
	return messages
}

func applyTokens(rec *UsageRecord, usage *client.Usage) {
	if usage == nil {
		return
	}
	rec.PromptTokens = usage.PromptTokens
	rec.CompletionTokens = usage.CompletionTokens
	rec.TotalTokens = usage.TotalTokens
}

func usageStatus(err error) string {
	switch {
	case client.IsRateLimited(err):
		return UsageStatusRateLimited
	case errors.Is(err, client.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return UsageStatusTimeout
	case errors.Is(err, context.Canceled):
		return UsageStatusCanceled
	}
	return UsageStatusError
}

// ChatStream 一次流式中转
// 片段按上游顺序原样产出；Close 取消上游调用并释放连接
type ChatStream struct {
	RequestID string
	Topic     agent.Topic
	Persona   agent.Persona

	upstream *client.Stream
	cancel   context.CancelFunc
	service  *ChatService
	req      ChatRequest
	start    time.Time

	delivered  int
	finishOnce sync.Once
}

// Fragments 上游文本片段序列，只能消费一次
func (cs *ChatStream) Fragments() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for frag, err := range cs.upstream.Fragments() {
			if err != nil {
				cs.finish(usageStatus(err), cs.delivered > 0)
				cs.service.logger.Error("流式响应中断",
					zap.String("requestId", cs.RequestID),
					zap.Int("delivered", cs.delivered),
					zap.Error(err))
				yield("", err)
				return
			}
			cs.delivered++
			if !yield(frag, nil) {
				cs.finish(UsageStatusCanceled, true)
				return
			}
		}
		cs.finish(UsageStatusOK, false)
	}
}

// Close 取消上游调用；未读完的流记为取消
func (cs *ChatStream) Close() error {
	cs.cancel()
	err := cs.upstream.Close()
	cs.finish(UsageStatusCanceled, cs.delivered > 0)
	return err
}

func (cs *ChatStream) finish(status string, partial bool) {
	cs.finishOnce.Do(func() {
		rec := cs.service.newRecord(cs.req, cs.Topic, cs.start)
		rec.Status = status
		rec.Partial = partial
		if m := cs.upstream.Model(); m != "" {
			rec.Model = m
		}
		applyTokens(&rec, cs.upstream.Usage())
		cs.service.usage.Record(rec)
	})
}
