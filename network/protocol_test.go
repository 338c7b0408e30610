package network

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodeClientMessage_AllTypes(t *testing.T) {
	msg, err := DecodeClientMessage([]byte(`{"type":"roll_dice"}`))
	if err != nil {
		t.Fatalf("roll_dice decode failed: %v", err)
	}
	if _, ok := msg.(RollDice); !ok {
		t.Errorf("Expected RollDice, got %T", msg)
	}

	msg, err = DecodeClientMessage([]byte(`{"type":"claim_road","id":"road_3"}`))
	if err != nil {
		t.Fatalf("claim_road decode failed: %v", err)
	}
	if claim, ok := msg.(ClaimRoad); !ok || claim.ID != "road_3" {
		t.Errorf("Expected ClaimRoad{road_3}, got %#v", msg)
	}

	msg, err = DecodeClientMessage([]byte(`{"type":"cursor_data","point":[12.5,30]}`))
	if err != nil {
		t.Fatalf("cursor_data decode failed: %v", err)
	}
	if cursor, ok := msg.(CursorData); !ok || cursor.Point != [2]float64{12.5, 30} {
		t.Errorf("Expected CursorData{12.5,30}, got %#v", msg)
	}

	msg, err = DecodeClientMessage([]byte(`{"type":"chat_message","text":"hello"}`))
	if err != nil {
		t.Fatalf("chat_message decode failed: %v", err)
	}
	if chat, ok := msg.(ChatMessage); !ok || chat.Text != "hello" {
		t.Errorf("Expected ChatMessage{hello}, got %#v", msg)
	}

	msg, err = DecodeClientMessage([]byte(`{"type":"reconnect_challenge_response","secret":"s3cret"}`))
	if err != nil {
		t.Fatalf("challenge response decode failed: %v", err)
	}
	if resp, ok := msg.(ChallengeResponse); !ok || resp.Secret != "s3cret" {
		t.Errorf("Expected ChallengeResponse{s3cret}, got %#v", msg)
	}
}

func TestDecodeClientMessage_UnknownType(t *testing.T) {
	_, err := DecodeClientMessage([]byte(`{"type":"advance_turn"}`))
	if !errors.Is(err, ErrUnknownMessageType) {
		t.Errorf("Expected ErrUnknownMessageType, got %v", err)
	}
}

func TestDecodeClientMessage_Malformed(t *testing.T) {
	cases := []string{
		`not json at all`,
		`{"type":"claim_road"}`,
		`{"type":"cursor_data"}`,
	}
	for _, c := range cases {
		if _, err := DecodeClientMessage([]byte(c)); !errors.Is(err, ErrMalformedMessage) {
			t.Errorf("Input %q: expected ErrMalformedMessage, got %v", c, err)
		}
	}
}

func TestServerFrames(t *testing.T) {
	var frame map[string]any

	if err := json.Unmarshal(ReconnectChallengeFrame(), &frame); err != nil {
		t.Fatalf("Bad challenge frame: %v", err)
	}
	if frame["type"] != MsgTypeReconnectChallenge {
		t.Errorf("Expected type %s, got %v", MsgTypeReconnectChallenge, frame["type"])
	}

	if err := json.Unmarshal(SetSecretFrame("abc"), &frame); err != nil {
		t.Fatalf("Bad set_secret frame: %v", err)
	}
	if frame["type"] != MsgTypeSetSecret || frame["secret"] != "abc" {
		t.Errorf("Unexpected set_secret frame: %v", frame)
	}

	if err := json.Unmarshal(FailedAuthFrame(), &frame); err != nil {
		t.Fatalf("Bad failed_auth frame: %v", err)
	}
	if frame["type"] != MsgTypeFailedAuth {
		t.Errorf("Expected type %s, got %v", MsgTypeFailedAuth, frame["type"])
	}

	update, err := UpdateFrame(map[string]int{"playerTurn": 0})
	if err != nil {
		t.Fatalf("UpdateFrame failed: %v", err)
	}
	if err := json.Unmarshal(update, &frame); err != nil {
		t.Fatalf("Bad update frame: %v", err)
	}
	if frame["type"] != MsgTypeUpdate {
		t.Errorf("Expected type %s, got %v", MsgTypeUpdate, frame["type"])
	}
	if _, ok := frame["state"]; !ok {
		t.Error("Update frame should carry the state")
	}
}
