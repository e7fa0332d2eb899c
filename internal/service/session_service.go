package service

import (
	"context"
	"sync"
	"time"

	"github.com/adminguide/adminguide-go/internal/model"
	"go.uber.org/zap"
)

// 心跳检测参数
const (
	DefaultHeartbeatInterval = 30 * time.Second
	DefaultHeartbeatTimeout  = 60 * time.Second
	maxMissedBeats           = 3
)

// SessionService WebSocket 连接管理
type SessionService struct {
	sessions map[string]*model.ConnSession // sessionId -> session
	mu       sync.RWMutex
	logger   *zap.Logger

	interval time.Duration
	timeout  time.Duration
}

// NewSessionService 创建连接管理服务
func NewSessionService(logger *zap.Logger) *SessionService {
	return &SessionService{
		sessions: make(map[string]*model.ConnSession),
		logger:   logger,
		interval: DefaultHeartbeatInterval,
		timeout:  DefaultHeartbeatTimeout,
	}
}

// Register 注册连接
func (s *SessionService) Register(session *model.ConnSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.SessionID] = session

	s.logger.Info("连接会话注册成功",
		zap.String("sessionId", session.SessionID),
		zap.String("clientIp", session.ClientIP))
}

// Remove 移除连接
func (s *SessionService) Remove(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; ok {
		delete(s.sessions, sessionID)
		s.logger.Info("连接会话已移除", zap.String("sessionId", sessionID))
	}
}

// UpdateHeartbeat 更新心跳时间
func (s *SessionService) UpdateHeartbeat(sessionID string) bool {
	s.mu.RLock()
	session, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok {
		return false
	}
	session.UpdateHeartbeat()
	return true
}

// OnlineCount 当前连接数
func (s *SessionService) OnlineCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Run 周期性清理心跳丢失的连接，直到 ctx 结束
func (s *SessionService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.sweep(now)
		}
	}
}

// sweep 关闭连续丢失心跳的连接；读循环随之退出并取消进行中的请求
func (s *SessionService) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, session := range s.sessions {
		missed := session.CheckHeartbeat(now, s.timeout)
		if missed == 0 {
			continue
		}
		if missed >= maxMissedBeats {
			s.logger.Info("清理无效连接",
				zap.String("sessionId", id),
				zap.Int("missedBeats", missed))
			if session.Conn != nil {
				session.Conn.Close()
			}
			delete(s.sessions, id)
			continue
		}
		s.logger.Warn("连接心跳丢失",
			zap.String("sessionId", id),
			zap.Int("missedBeats", missed))
	}
}
