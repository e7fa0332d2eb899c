package model

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ConnSession WebSocket 连接会话
type ConnSession struct {
	SessionID   string
	ClientIP    string
	Conn        *websocket.Conn
	ConnectedAt time.Time

	mu            sync.Mutex // 保护心跳字段
	lastHeartbeat time.Time
	missedBeats   int

	writeMu sync.Mutex // gorilla 连接不支持并发写
}

// NewConnSession 创建连接会话
func NewConnSession(sessionID, clientIP string, conn *websocket.Conn) *ConnSession {
	now := time.Now()
	return &ConnSession{
		SessionID:     sessionID,
		ClientIP:      clientIP,
		Conn:          conn,
		ConnectedAt:   now,
		lastHeartbeat: now,
	}
}

// UpdateHeartbeat 更新心跳时间
func (s *ConnSession) UpdateHeartbeat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastHeartbeat = time.Now()
	s.missedBeats = 0
}

// CheckHeartbeat 超过 timeout 未收到心跳时累加丢失次数，返回当前丢失次数
func (s *ConnSession) CheckHeartbeat(now time.Time, timeout time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now.Sub(s.lastHeartbeat) > timeout {
		s.missedBeats++
	}
	return s.missedBeats
}

// WriteMessage 向 WebSocket 写入消息（线程安全）
func (s *ConnSession) WriteMessage(message any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.Conn.WriteJSON(message)
}
