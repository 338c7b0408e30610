package broadcast

import (
	"errors"
	"io"
	"net"
	"os"
	"testing"

	"github.com/hexroom/roomserver/logger"
	"github.com/hexroom/roomserver/room"
	"github.com/hexroom/roomserver/session"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

// MockConnection counts deliveries and can be made to fail.
type MockConnection struct {
	delivered int
	fail      bool
}

func (m *MockConnection) Send(data []byte) error {
	if m.fail {
		return errors.New("connection gone")
	}
	m.delivered++
	return nil
}

func (m *MockConnection) ReadMessage() ([]byte, error) { return nil, io.EOF }
func (m *MockConnection) Close() error                 { return nil }
func (m *MockConnection) RemoteAddr() net.Addr         { return &net.TCPAddr{} }

func TestBroadcastToRoom_UnknownRoom(t *testing.T) {
	b := NewRoomBroadcaster(room.NewManager())

	err := b.BroadcastToRoom("nope", []byte(`{}`))
	if !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("Expected ErrRoomNotFound, got %v", err)
	}
}

func TestBroadcastToRoom_FailureIsolated(t *testing.T) {
	manager := room.NewManager()
	b := NewRoomBroadcaster(manager)

	failures := 0
	b.OnFailure(func() { failures++ })

	r := manager.GetOrCreate("test_room", 10, b)

	healthy := &MockConnection{}
	dead := &MockConnection{fail: true}
	if err := r.Connect(session.NewSession("conn_a", healthy)); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if err := r.Connect(session.NewSession("conn_b", dead)); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	healthy.delivered = 0 // ignore join traffic
	if err := b.BroadcastToRoom("test_room", []byte(`{"type":"update"}`)); err != nil {
		t.Fatalf("Broadcast failed: %v", err)
	}

	if healthy.delivered != 1 {
		t.Errorf("Healthy connection should receive the frame, got %d deliveries", healthy.delivered)
	}
	if failures != 1 {
		t.Errorf("Expected 1 recorded failure, got %d", failures)
	}
}
