// room/room.go
package room

import (
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/hexroom/roomserver/board"
	"github.com/hexroom/roomserver/logger"
	"github.com/hexroom/roomserver/models"
	"github.com/hexroom/roomserver/network"
	"github.com/hexroom/roomserver/session"
)

var (
	ErrRoomFull     = errors.New("room is full")
	ErrRoomNotKnown = errors.New("room not known")
)

// Room 是房间的权威协调器：独占持有共享状态，所有生命周期事件和
// 命令都在 stateMutex 下串行处理。持锁期间不做任何网络 I/O，
// 需要发送的帧先在锁内序列化，解锁后投递。
type Room struct {
	ID         string
	MaxPlayers int
	CreatedAt  time.Time

	state *models.State

	// secrets 是私有的重连密钥表，按连接 ID 索引，绝不进入广播状态。
	secrets map[string]string
	// pending 标记已收到质询但还没给出正确密钥的连接。
	pending map[string]bool
	// sessions 当前打开的连接，按连接 ID 索引。
	sessions map[string]*session.Session

	colors      []string
	broadcaster Broadcaster
	stateMutex  sync.Mutex
}

// NewRoom 创建一个新房间并生成棋盘。
func NewRoom(id string, maxPlayers int, broadcaster Broadcaster) *Room {
	return &Room{
		ID:          id,
		MaxPlayers:  maxPlayers,
		CreatedAt:   time.Now(),
		state:       models.NewState(board.Generate()),
		secrets:     make(map[string]string),
		pending:     make(map[string]bool),
		sessions:    make(map[string]*session.Session),
		colors:      shuffledColors(),
		broadcaster: broadcaster,
	}
}

// Connect 处理一条新连接。第一次见到的连接 ID 会创建玩家并直接下发
// 密钥和全量状态；已有密钥的连接 ID 则先质询，质询通过前不接受任何
// 状态变更命令。
func (r *Room) Connect(s *session.Session) error {
	r.stateMutex.Lock()

	if _, known := r.secrets[s.ID]; known {
		r.sessions[s.ID] = s
		r.pending[s.ID] = true
		r.stateMutex.Unlock()

		if err := s.Send(network.ReconnectChallengeFrame()); err != nil {
			logger.Log.Warnf("Failed to send challenge to %s: %v", s.ID, err)
		}
		return nil
	}

	if len(r.state.Players) >= r.MaxPlayers {
		r.stateMutex.Unlock()
		return ErrRoomFull
	}

	player := &models.Player{
		ID:    s.ID,
		Name:  generateName(),
		Color: r.colors[len(r.state.Players)%len(r.colors)],
		ConnectionState: models.ConnectionState{
			Connected: true,
			LastSeen:  time.Now().UnixMilli(),
		},
		Cards: models.StartingCards(),
	}
	r.state.Players = append(r.state.Players, player)

	secret := generateSecret()
	r.secrets[s.ID] = secret
	r.sessions[s.ID] = s

	snapshot, err := network.SnapshotFrame(r.state)
	r.stateMutex.Unlock()
	if err != nil {
		return err
	}

	if err := s.Send(network.SetSecretFrame(secret)); err != nil {
		logger.Log.Warnf("Failed to send secret to %s: %v", s.ID, err)
	}
	if err := s.Send(snapshot); err != nil {
		logger.Log.Warnf("Failed to send snapshot to %s: %v", s.ID, err)
	}

	logger.Log.Infof("Player %s (%s) joined room %s", player.Name, s.ID, r.ID)
	return nil
}

// Disconnect 处理连接关闭。只有当关闭的连接仍然是该 ID 的当前连接
// 时才生效，玩家条目和资源永久保留。
func (r *Room) Disconnect(s *session.Session) {
	r.stateMutex.Lock()

	if current := r.sessions[s.ID]; current != s {
		r.stateMutex.Unlock()
		return
	}
	delete(r.sessions, s.ID)
	delete(r.pending, s.ID)

	var update []byte
	if p := r.state.FindPlayer(s.ID); p != nil && p.ConnectionState.Connected {
		p.ConnectionState.Connected = false
		p.ConnectionState.LastSeen = time.Now().UnixMilli()
		update = r.marshalUpdate()
	}
	r.stateMutex.Unlock()

	if update != nil {
		r.broadcast(update)
	}
}

// HandleMessage 处理一帧入站消息。解析失败或来源没有对应的活跃
// 玩家时直接丢弃，不广播也不影响其他连接。
func (r *Room) HandleMessage(s *session.Session, data []byte) {
	msg, err := network.DecodeClientMessage(data)
	if err != nil {
		logger.Log.Debugf("Dropping frame from %s: %v", s.ID, err)
		return
	}

	if challenge, ok := msg.(network.ChallengeResponse); ok {
		r.handleChallengeResponse(s, challenge.Secret)
		return
	}

	r.stateMutex.Lock()

	if r.sessions[s.ID] != s || r.pending[s.ID] {
		r.stateMutex.Unlock()
		return
	}
	player := r.state.FindPlayer(s.ID)
	if player == nil {
		r.stateMutex.Unlock()
		return
	}

	var update []byte
	if r.apply(msg, player) {
		update = r.marshalUpdate()
	}
	r.stateMutex.Unlock()

	if update != nil {
		r.broadcast(update)
	}
}

// apply 在持锁状态下执行一条命令，返回是否需要广播。
func (r *Room) apply(msg network.ClientMessage, player *models.Player) bool {
	switch m := msg.(type) {
	case network.RollDice:
		r.state.Dice = [2]int{rollDie(), rollDie()}
		return true

	case network.ClaimRoad:
		// 未知 ID 或已被占领都是静默无操作，但依然广播。
		if road := r.state.Board.FindRoad(m.ID); road != nil && road.OwnerID == "" {
			road.OwnerID = player.ID
		}
		return true

	case network.CursorData:
		point := m.Point
		player.Cursor = &point
		player.ConnectionState.Connected = true
		player.ConnectionState.LastSeen = time.Now().UnixMilli()
		return true

	case network.ChatMessage:
		return r.applyChat(m.Text, player)

	case network.ChallengeResponse:
		// handled before apply
		return false
	}
	return false
}

func (r *Room) applyChat(text string, player *models.Player) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}

	if strings.EqualFold(trimmed, "/clear") {
		r.state.Chat = []*models.ChatMessage{{
			Type: models.ChatTypeSystem,
			Text: player.Name + " cleared the chat...",
		}}
		return true
	}

	r.state.Chat = append(r.state.Chat, &models.ChatMessage{
		Type:     models.ChatTypeText,
		PlayerID: player.ID,
		Text:     text,
	})
	return true
}

// handleChallengeResponse 校验重连密钥。密钥正确时轮换密钥并恢复
// 连接状态；错误时只回复 failed_auth，不轮换也不改状态。
func (r *Room) handleChallengeResponse(s *session.Session, secret string) {
	r.stateMutex.Lock()

	if r.sessions[s.ID] != s {
		r.stateMutex.Unlock()
		return
	}

	stored, known := r.secrets[s.ID]
	if !known || secret == "" || secret != stored {
		r.stateMutex.Unlock()
		if err := s.Send(network.FailedAuthFrame()); err != nil {
			logger.Log.Warnf("Failed to send auth failure to %s: %v", s.ID, err)
		}
		logger.Log.Infof("Rejected reconnect for %s in room %s", s.ID, r.ID)
		return
	}

	next := generateSecret()
	r.secrets[s.ID] = next
	delete(r.pending, s.ID)

	var update []byte
	if p := r.state.FindPlayer(s.ID); p != nil {
		p.ConnectionState.Connected = true
		p.ConnectionState.LastSeen = time.Now().UnixMilli()
		update = r.marshalUpdate()
	}
	r.stateMutex.Unlock()

	if err := s.Send(network.SetSecretFrame(next)); err != nil {
		logger.Log.Warnf("Failed to send rotated secret to %s: %v", s.ID, err)
	}
	if update != nil {
		r.broadcast(update)
	}
	logger.Log.Infof("Player %s reconnected to room %s", s.ID, r.ID)
}

// rollDie 返回 [1,6] 上的均匀随机数。
func rollDie() int {
	return 1 + rand.Intn(6)
}

func (r *Room) marshalUpdate() []byte {
	update, err := network.UpdateFrame(r.state)
	if err != nil {
		logger.Log.Errorf("Failed to marshal state for room %s: %v", r.ID, err)
		return nil
	}
	return update
}

func (r *Room) broadcast(data []byte) {
	if err := r.broadcaster.BroadcastToRoom(r.ID, data); err != nil {
		logger.Log.Warnf("Broadcast to room %s failed: %v", r.ID, err)
	}
}

// GetSessions returns a slice of all open sessions in the room (thread-safe).
func (r *Room) GetSessions() []*session.Session {
	r.stateMutex.Lock()
	defer r.stateMutex.Unlock()

	sessions := make([]*session.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}

// Snapshot 返回当前状态的 JSON 快照，供运维接口使用。
func (r *Room) Snapshot() ([]byte, error) {
	r.stateMutex.Lock()
	defer r.stateMutex.Unlock()
	return network.SnapshotFrame(r.state)
}

// PlayerCount 返回曾经加入过的玩家数（包含离线玩家）。
func (r *Room) PlayerCount() int {
	r.stateMutex.Lock()
	defer r.stateMutex.Unlock()
	return len(r.state.Players)
}

// ConnectedCount 返回当前打开的连接数。
func (r *Room) ConnectedCount() int {
	r.stateMutex.Lock()
	defer r.stateMutex.Unlock()
	return len(r.sessions)
}

// --- 房间管理器 ---

// Manager 管理所有房间
type Manager struct {
	rooms map[string]*Room
	mutex sync.RWMutex
}

// NewManager 创建一个新的房间管理器
func NewManager() *Manager {
	return &Manager{
		rooms: make(map[string]*Room),
	}
}

// GetOrCreate 获取房间，不存在时创建。
func (m *Manager) GetOrCreate(id string, maxPlayers int, broadcaster Broadcaster) *Room {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if room, exists := m.rooms[id]; exists {
		return room
	}
	room := NewRoom(id, maxPlayers, broadcaster)
	m.rooms[id] = room
	logger.Log.Infof("Created room %s", id)
	return room
}

// Get 获取一个房间
func (m *Manager) Get(id string) (*Room, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	room, exists := m.rooms[id]
	return room, exists
}

// Count 返回房间数量
func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms)
}

// IDs 返回所有房间 ID
func (m *Manager) IDs() []string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	ids := make([]string, 0, len(m.rooms))
	for id := range m.rooms {
		ids = append(ids, id)
	}
	return ids
}
