package network

import (
	"encoding/json"
	"errors"
	"fmt"
)

// 客户端 -> 服务端消息类型
const (
	MsgTypeRollDice          = "roll_dice"
	MsgTypeClaimRoad         = "claim_road"
	MsgTypeCursorData        = "cursor_data"
	MsgTypeChatMessage       = "chat_message"
	MsgTypeChallengeResponse = "reconnect_challenge_response"
)

// 服务端 -> 客户端消息类型
const (
	MsgTypeReconnectChallenge = "reconnect_challenge"
	MsgTypeSetSecret          = "set_secret"
	MsgTypeUpdate             = "update"
	MsgTypeFailedAuth         = "failed_auth"
)

var (
	ErrMalformedMessage   = errors.New("malformed message")
	ErrUnknownMessageType = errors.New("unknown message type")
)

// ClientMessage 客户端消息的封闭集合。新增消息类型必须同时扩展
// DecodeClientMessage 和房间里的 switch，否则无法通过编译检查。
type ClientMessage interface{ isClientMessage() }

type RollDice struct{}

type ClaimRoad struct{ ID string }

type CursorData struct{ Point [2]float64 }

type ChatMessage struct{ Text string }

type ChallengeResponse struct{ Secret string }

func (RollDice) isClientMessage()          {}
func (ClaimRoad) isClientMessage()         {}
func (CursorData) isClientMessage()        {}
func (ChatMessage) isClientMessage()       {}
func (ChallengeResponse) isClientMessage() {}

type clientEnvelope struct {
	Type   string      `json:"type"`
	ID     string      `json:"id"`
	Point  *[2]float64 `json:"point"`
	Text   string      `json:"text"`
	Secret string      `json:"secret"`
}

// DecodeClientMessage 解析一帧客户端消息并返回对应的类型。
func DecodeClientMessage(data []byte) (ClientMessage, error) {
	var env clientEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	switch env.Type {
	case MsgTypeRollDice:
		return RollDice{}, nil
	case MsgTypeClaimRoad:
		if env.ID == "" {
			return nil, fmt.Errorf("%w: claim_road without id", ErrMalformedMessage)
		}
		return ClaimRoad{ID: env.ID}, nil
	case MsgTypeCursorData:
		if env.Point == nil {
			return nil, fmt.Errorf("%w: cursor_data without point", ErrMalformedMessage)
		}
		return CursorData{Point: *env.Point}, nil
	case MsgTypeChatMessage:
		return ChatMessage{Text: env.Text}, nil
	case MsgTypeChallengeResponse:
		return ChallengeResponse{Secret: env.Secret}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessageType, env.Type)
	}
}

type taggedFrame struct {
	Type   string `json:"type"`
	Secret string `json:"secret,omitempty"`
	State  any    `json:"state,omitempty"`
}

// ReconnectChallengeFrame 要求客户端证明自己是之前的连接。
func ReconnectChallengeFrame() []byte {
	data, _ := json.Marshal(taggedFrame{Type: MsgTypeReconnectChallenge})
	return data
}

// SetSecretFrame 下发新的重连密钥。
func SetSecretFrame(secret string) []byte {
	data, _ := json.Marshal(taggedFrame{Type: MsgTypeSetSecret, Secret: secret})
	return data
}

// FailedAuthFrame 重连验证失败。
func FailedAuthFrame() []byte {
	data, _ := json.Marshal(taggedFrame{Type: MsgTypeFailedAuth})
	return data
}

// UpdateFrame 状态变更后的全量快照广播。
func UpdateFrame(state any) ([]byte, error) {
	return json.Marshal(taggedFrame{Type: MsgTypeUpdate, State: state})
}

// SnapshotFrame 首次加入时直接发送的裸状态快照。
func SnapshotFrame(state any) ([]byte, error) {
	return json.Marshal(state)
}
