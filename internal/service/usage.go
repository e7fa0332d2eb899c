package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// 使用记录状态
const (
	UsageStatusOK          = "ok"
	UsageStatusRateLimited = "rate_limited"
	UsageStatusTimeout     = "timeout"
	UsageStatusCanceled    = "canceled"
	UsageStatusError       = "provider_error"
)

// 调用模式
const (
	ModeBuffered  = "buffered"
	ModeStreaming = "streaming"
	ModeWebSocket = "websocket"
)

// UsageRecord 单次请求的使用记录，不包含任何凭证和消息内容
type UsageRecord struct {
	RequestID        string    `json:"requestId"`
	Timestamp        time.Time `json:"timestamp"`
	Mode             string    `json:"mode"`
	Model            string    `json:"model"`
	Language         string    `json:"language"`
	Topic            string    `json:"topic"`
	PromptTokens     int       `json:"promptTokens"`
	CompletionTokens int       `json:"completionTokens"`
	TotalTokens      int       `json:"totalTokens"`
	LatencyMs        int64     `json:"latencyMs"`
	Status           string    `json:"status"`
	Partial          bool      `json:"partial"`
}

// UsageSink 使用记录的落地位置
type UsageSink interface {
	Write(ctx context.Context, rec UsageRecord) error
}

// UsageRecorder 异步使用记录器
// Record 从不阻塞调用方；队列满时丢弃记录并计数
type UsageRecorder struct {
	queue   chan UsageRecord
	sinks   []UsageSink
	logger  *zap.Logger
	dropped atomic.Int64

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewUsageRecorder 创建使用记录器并启动后台写入协程
func NewUsageRecorder(queueSize int, logger *zap.Logger, sinks ...UsageSink) *UsageRecorder {
	if queueSize <= 0 {
		queueSize = 1
	}
	u := &UsageRecorder{
		queue:  make(chan UsageRecord, queueSize),
		sinks:  sinks,
		logger: logger,
		done:   make(chan struct{}),
	}
	go u.run()
	return u
}

// Record 提交一条使用记录
func (u *UsageRecorder) Record(rec UsageRecord) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	if u.closed {
		u.dropped.Add(1)
		return
	}
	select {
	case u.queue <- rec:
	default:
		if u.dropped.Add(1)%100 == 1 {
			u.logger.Warn("使用记录队列已满，丢弃记录", zap.Int64("dropped", u.dropped.Load()))
		}
	}
}

// Dropped 已丢弃的记录数
func (u *UsageRecorder) Dropped() int64 {
	return u.dropped.Load()
}

// Close 停止接收新记录，并等待队列中的记录写完
func (u *UsageRecorder) Close() {
	u.mu.Lock()
	if u.closed {
		u.mu.Unlock()
		<-u.done
		return
	}
	u.closed = true
	close(u.queue)
	u.mu.Unlock()

	<-u.done
}

func (u *UsageRecorder) run() {
	defer close(u.done)

	for rec := range u.queue {
		for _, sink := range u.sinks {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			if err := sink.Write(ctx, rec); err != nil {
				u.logger.Warn("写入使用记录失败",
					zap.String("requestId", rec.RequestID),
					zap.Error(err))
			}
			cancel()
		}
	}
}

// LogSink 将使用记录写入结构化日志
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink 创建日志记录落地
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Write(_ context.Context, rec UsageRecord) error {
	s.logger.Info("使用记录",
		zap.String("requestId", rec.RequestID),
		zap.Time("timestamp", rec.Timestamp),
		zap.String("mode", rec.Mode),
		zap.String("model", rec.Model),
		zap.String("language", rec.Language),
		zap.String("topic", rec.Topic),
		zap.Int("promptTokens", rec.PromptTokens),
		zap.Int("completionTokens", rec.CompletionTokens),
		zap.Int("totalTokens", rec.TotalTokens),
		zap.Int64("latencyMs", rec.LatencyMs),
		zap.String("status", rec.Status),
		zap.Bool("partial", rec.Partial))
	return nil
}

// RedisSink 将使用记录追加到 Redis 列表，只保留最近 maxLen 条
type RedisSink struct {
	client redis.Cmdable
	key    string
	maxLen int64
}

// NewRedisSink 创建 Redis 记录落地
func NewRedisSink(client redis.Cmdable, key string, maxLen int64) *RedisSink {
	return &RedisSink{client: client, key: key, maxLen: maxLen}
}

func (s *RedisSink) Write(ctx context.Context, rec UsageRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("序列化使用记录失败: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, s.key, data)
	if s.maxLen > 0 {
		pipe.LTrim(ctx, s.key, -s.maxLen, -1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("写入 Redis 失败: %w", err)
	}
	return nil
}
