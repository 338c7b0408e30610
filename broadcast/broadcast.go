// broadcast/broadcast.go
package broadcast

import (
	"errors"

	"github.com/hexroom/roomserver/logger"
	"github.com/hexroom/roomserver/room"
)

var (
	ErrRoomNotFound = errors.New("room not found")
)

// 广播接口
type Broadcaster interface {
	BroadcastToRoom(roomID string, data []byte) error
}

// RoomBroadcaster 把一帧消息发给房间内所有打开的连接。单个连接的
// 发送失败只记录日志，不会中断对其余连接的投递。
type RoomBroadcaster struct {
	roomManager *room.Manager
	onFailure   func()
}

func NewRoomBroadcaster(roomManager *room.Manager) *RoomBroadcaster {
	return &RoomBroadcaster{roomManager: roomManager}
}

// OnFailure 注册一个投递失败时的回调（用于指标计数）。
func (b *RoomBroadcaster) OnFailure(fn func()) {
	b.onFailure = fn
}

func (b *RoomBroadcaster) BroadcastToRoom(roomID string, data []byte) error {
	r, exists := b.roomManager.Get(roomID)
	if !exists {
		return ErrRoomNotFound
	}

	// Get a thread-safe copy of the sessions
	for _, s := range r.GetSessions() {
		if err := s.Send(data); err != nil {
			logger.Log.Warnf("Failed to deliver to session %s in room %s: %v", s.ID, roomID, err)
			if b.onFailure != nil {
				b.onFailure()
			}
			continue
		}
	}

	return nil
}
