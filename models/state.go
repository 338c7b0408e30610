// models/state.go
package models

import (
	"github.com/hexroom/roomserver/board"
)

const (
	ChatTypeSystem = "system"
	ChatTypeText   = "text"
)

// MOTD 新房间聊天记录里的第一条系统消息。
const MOTD = "Welcome to settlers of catan\n\nCommands:\n/clear\t\t\tClears the chat"

// ConnectionState 玩家连接状态。LastSeen 为 Unix 毫秒。
type ConnectionState struct {
	Connected bool  `json:"connected"`
	LastSeen  int64 `json:"lastSeen"`
}

// Cards 玩家手牌（按资源类型计数）。
type Cards struct {
	Brick  int `json:"brick"`
	Grain  int `json:"grain"`
	Ore    int `json:"ore"`
	Lumber int `json:"lumber"`
	Wool   int `json:"wool"`
}

// StartingCards 新玩家的初始手牌。
func StartingCards() Cards {
	return Cards{Brick: 2, Grain: 1, Ore: 0, Lumber: 2, Wool: 0}
}

// Player 房间内的玩家。ID 与连接 ID 一致，断线后条目保留。
type Player struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Color           string          `json:"color"`
	ConnectionState ConnectionState `json:"connectionState"`
	Cursor          *[2]float64     `json:"cursor,omitempty"`
	Cards           Cards           `json:"cards"`
}

// ChatMessage 聊天消息。Type 为 system 时没有 PlayerID。
type ChatMessage struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId,omitempty"`
	Text     string `json:"text"`
}

// State 房间的完整共享状态，每次变更后整体广播。
// 重连密钥不属于这里，永远不会被序列化给客户端。
type State struct {
	Board      *board.Board   `json:"board"`
	Players    []*Player      `json:"players"`
	PlayerTurn int            `json:"playerTurn"`
	Dice       [2]int         `json:"dice"`
	Chat       []*ChatMessage `json:"chat"`
}

// NewState 创建一个新的房间状态。
func NewState(b *board.Board) *State {
	return &State{
		Board:      b,
		Players:    make([]*Player, 0, 8),
		PlayerTurn: 0,
		Dice:       [2]int{1, 1},
		Chat:       []*ChatMessage{{Type: ChatTypeSystem, Text: MOTD}},
	}
}

// FindPlayer 按 ID 查找玩家。没有找到时返回 nil。
func (s *State) FindPlayer(id string) *Player {
	for _, p := range s.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}
