package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/adminguide/adminguide-go/internal/client"
	"github.com/adminguide/adminguide-go/internal/config"
	"github.com/adminguide/adminguide-go/internal/handler"
	"github.com/adminguide/adminguide-go/internal/service"
	"github.com/adminguide/adminguide-go/internal/tools"
	"github.com/adminguide/adminguide-go/pkg/redis"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Mode 服务形态
type Mode int

const (
	// Buffered POST /api/chat 返回完整 JSON，凭证来自配置
	Buffered Mode = iota
	// Streaming POST /api/chat 返回文本流，凭证来自请求头；同时提供 /ws/chat
	Streaming
)

const shutdownTimeout = 10 * time.Second

// App 组装好的服务
type App struct {
	Router   *gin.Engine
	Usage    *service.UsageRecorder
	Sessions *service.SessionService

	closers []func() error
}

// New 根据配置组装服务依赖
func New(cfg *config.Config, mode Mode, logger *zap.Logger) (*App, error) {
	switch mode {
	case Buffered:
		if err := cfg.RequireAPIKey(); err != nil {
			return nil, err
		}
	case Streaming:
	default:
		return nil, fmt.Errorf("未知的服务形态: %d", mode)
	}

	firstByte, err := cfg.OpenAI.FirstByte()
	if err != nil {
		return nil, err
	}
	total, err := cfg.OpenAI.Total()
	if err != nil {
		return nil, err
	}

	registry := tools.NewRegistry(logger)
	if err := tools.RegisterGuideTools(registry); err != nil {
		return nil, fmt.Errorf("注册工具失败: %w", err)
	}

	app := &App{}

	sinks := []service.UsageSink{service.NewLogSink(logger.Named("usage"))}
	if cfg.Redis.Enabled {
		rdb, err := redis.NewRedisClient(cfg.Redis)
		if err != nil {
			// 使用记录不影响主流程，Redis 不可用时只写日志
			logger.Warn("Redis 不可用，使用记录只写入日志", zap.Error(err))
		} else {
			sinks = append(sinks, service.NewRedisSink(rdb, cfg.Redis.UsageKey, cfg.Redis.UsageMaxLen))
			app.closers = append(app.closers, rdb.Close)
			logger.Info("使用记录写入 Redis", zap.String("key", cfg.Redis.UsageKey))
		}
	}
	app.Usage = service.NewUsageRecorder(cfg.Usage.QueueSize, logger, sinks...)

	llm := client.NewOpenAIClient(cfg.OpenAI.BaseURL, cfg.OpenAI.Model, firstByte, logger)
	params := client.Parameters{Temperature: cfg.OpenAI.Temperature, MaxTokens: cfg.OpenAI.MaxTokens}
	chat := service.NewChatService(llm, params, total, app.Usage, logger)

	var conns handler.ConnCounter
	if mode == Streaming {
		app.Sessions = service.NewSessionService(logger)
		conns = app.Sessions
	}

	opts := handler.RouterOptions{
		API:          handler.NewAPIHandler(cfg.Server.Name, llm.Model(), llm, registry, conns, logger),
		Classifier:   handler.NewClassifierHandler(logger),
		AllowOrigins: cfg.CORS.AllowOrigins,
		Logger:       logger,
	}

	switch mode {
	case Buffered:
		opts.Chat = handler.NewChatHandler(chat, cfg.OpenAI.APIKey, logger)
	case Streaming:
		opts.Chat = handler.NewChatHandler(chat, "", logger)
		opts.WebSocket = handler.NewWebSocketHandler(app.Sessions, chat, cfg.CORS.AllowOrigins, logger)
		opts.Streaming = true
	}

	app.Router = handler.NewRouter(opts)
	return app, nil
}

// Close 写完剩余的使用记录并释放外部连接
func (a *App) Close() {
	a.Usage.Close()
	for _, c := range a.closers {
		_ = c()
	}
}

// Run 启动 HTTP 服务，ctx 结束时优雅退出
func Run(ctx context.Context, cfg *config.Config, mode Mode, logger *zap.Logger) error {
	gin.SetMode(cfg.Server.Mode)

	app, err := New(cfg, mode, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	if app.Sessions != nil {
		go app.Sessions.Run(ctx)
	}

	// 流式响应可能持续较长时间，不设置 WriteTimeout
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("服务启动成功",
			zap.String("service", cfg.Server.Name),
			zap.Int("port", cfg.Server.Port),
			zap.String("model", cfg.OpenAI.Model))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("服务启动失败: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("正在关闭服务...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("服务关闭失败: %w", err)
	}
	logger.Info("服务已停止", zap.Int64("droppedUsageRecords", app.Usage.Dropped()))
	return nil
}
