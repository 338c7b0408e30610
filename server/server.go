package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/hexroom/roomserver/broadcast"
	"github.com/hexroom/roomserver/config"
	"github.com/hexroom/roomserver/logger"
	"github.com/hexroom/roomserver/monitor"
	"github.com/hexroom/roomserver/network"
	"github.com/hexroom/roomserver/room"
	roomserver_rpc "github.com/hexroom/roomserver/rpc"
	"github.com/hexroom/roomserver/session"
	"github.com/hexroom/roomserver/timer"
)

type GameServer struct {
	cfg            *config.Config
	upgrader       websocket.Upgrader
	roomManager    *room.Manager
	sessionManager *session.Manager
	broadcaster    *broadcast.RoomBroadcaster
	rpcServer      *roomserver_rpc.Server
	monitor        *monitor.Monitor
	timers         *timer.Manager
	shutdownChan   chan struct{}
}

func NewGameServer(cfg *config.Config, mon *monitor.Monitor) *GameServer {
	s := &GameServer{
		cfg:            cfg,
		roomManager:    room.NewManager(),
		sessionManager: session.NewManager(),
		monitor:        mon,
		timers:         timer.NewManager(),
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}

	// 初始化广播器
	s.broadcaster = broadcast.NewRoomBroadcaster(s.roomManager)
	s.broadcaster.OnFailure(mon.IncBroadcastFailures)

	// 初始化RPC服务器
	rpcServer, err := roomserver_rpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer
	roomserver_rpc.Register(roomserver_rpc.NewRoomService(s.roomManager))

	// 周期性刷新房间指标
	s.timers.Schedule(5*time.Second, 5*time.Second, func() {
		mon.SetActiveRooms(s.roomManager.Count())
	})

	return s
}

func (s *GameServer) Start() error {
	go s.rpcServer.Start()

	http.HandleFunc("/ws", s.handleWebSocket)
	http.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	logger.Log.Infof("Game server listening on %s", s.cfg.Server.HTTPAddress)
	return http.ListenAndServe(s.cfg.Server.HTTPAddress, nil)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.timers.Stop()
	s.rpcServer.Stop()
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room")
	if roomID == "" {
		http.Error(w, "missing room", http.StatusBadRequest)
		return
	}

	// 客户端带回同一个连接 ID 即可保持身份，没带则分配新的。
	connID := r.URL.Query().Get("id")
	if connID == "" {
		connID = uuid.New().String()
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn, roomID, connID)
}

func (s *GameServer) handleConnection(conn *websocket.Conn, roomID, connID string) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(connID, wsConn)
	sess.RoomID = roomID
	s.sessionManager.Add(sess)
	s.monitor.IncConnectedPlayers()

	logger.Log.Infof("New connection from %s, session ID: %s, room: %s", wsConn.RemoteAddr(), sess.ID, roomID)

	gameRoom := s.roomManager.GetOrCreate(roomID, s.cfg.Room.MaxPlayers, s.broadcaster)

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.ID)
		gameRoom.Disconnect(sess)
		s.sessionManager.Remove(sess)
		s.monitor.DecConnectedPlayers()
		wsConn.Close()
	}()

	if err := gameRoom.Connect(sess); err != nil {
		if errors.Is(err, room.ErrRoomFull) {
			logger.Log.Infof("Refused connection %s: room %s is full", sess.ID, roomID)
		} else {
			logger.Log.Errorf("Failed to join room %s: %v", roomID, err)
		}
		return
	}

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			data, err := wsConn.ReadMessage()
			if err != nil {
				return
			}
			s.monitor.IncCommandsReceived()
			start := time.Now()
			gameRoom.HandleMessage(sess, data)
			s.monitor.ObserveCommandLatency(time.Since(start))
		}
	}
}
