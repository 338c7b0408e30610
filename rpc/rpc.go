package rpc

import (
	"net"
	"net/rpc"

	"github.com/hexroom/roomserver/logger"
	"github.com/hexroom/roomserver/room"
)

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
}

// NewServer creates a new RPC server.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			// Check if the error is due to the listener being closed.
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Register exposes a service on the default net/rpc server.
func Register(service any) {
	if err := rpc.Register(service); err != nil {
		logger.Log.Fatalf("Failed to register RPC service: %v", err)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// RoomService 运维用的房间巡检服务，只读。
type RoomService struct {
	roomManager *room.Manager
}

func NewRoomService(rm *room.Manager) *RoomService {
	return &RoomService{roomManager: rm}
}

type RoomInfo struct {
	ID        string
	Players   int
	Connected int
}

type ListRoomsArgs struct{}

type ListRoomsReply struct {
	Rooms []RoomInfo
}

func (rs *RoomService) ListRooms(args *ListRoomsArgs, reply *ListRoomsReply) error {
	for _, id := range rs.roomManager.IDs() {
		r, exists := rs.roomManager.Get(id)
		if !exists {
			continue
		}
		reply.Rooms = append(reply.Rooms, RoomInfo{
			ID:        r.ID,
			Players:   r.PlayerCount(),
			Connected: r.ConnectedCount(),
		})
	}
	return nil
}

type GetRoomStateArgs struct {
	RoomID string
}

type GetRoomStateReply struct {
	State []byte
}

func (rs *RoomService) GetRoomState(args *GetRoomStateArgs, reply *GetRoomStateReply) error {
	r, exists := rs.roomManager.Get(args.RoomID)
	if !exists {
		return room.ErrRoomNotKnown
	}
	snapshot, err := r.Snapshot()
	if err != nil {
		return err
	}
	reply.State = snapshot
	return nil
}
