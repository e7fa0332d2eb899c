// guide-chat 韩国行政指南聊天服务（缓冲模式：POST /api/chat 返回完整 JSON 回复）
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/adminguide/adminguide-go/internal/config"
	"github.com/adminguide/adminguide-go/internal/server"
	"github.com/adminguide/adminguide-go/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "configs/guide-chat.yaml", "配置文件路径")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	zapLogger, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("guide-chat 服务启动中...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, cfg, server.Buffered, zapLogger); err != nil {
		zapLogger.Fatal("服务异常退出", zap.Error(err))
	}
}
