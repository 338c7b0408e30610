// session/session.go
package session

import (
	"sync"
	"time"

	"github.com/hexroom/roomserver/network"
)

// Session 一条活跃的客户端连接。ID 是传输层分配的连接 ID，
// 重连时客户端带着同一个 ID 回来。
type Session struct {
	ID         string
	Conn       network.Connection
	RoomID     string
	CreatedAt  time.Time
	LastActive time.Time
}

func NewSession(id string, conn network.Connection) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Conn:       conn,
		CreatedAt:  now,
		LastActive: now,
	}
}

func (s *Session) Send(data []byte) error {
	s.LastActive = time.Now()
	return s.Conn.Send(data)
}

func (s *Session) GetID() string {
	return s.ID
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Session管理器
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

// Remove 只在 session 仍是该 ID 的当前连接时移除，避免重连后的
// 新连接被旧连接的清理逻辑踢掉。
func (m *Manager) Remove(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if current, exists := m.sessions[session.ID]; exists && current == session {
		delete(m.sessions, session.ID)
	}
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}
