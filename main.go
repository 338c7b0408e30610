package main

import (
	"github.com/hexroom/roomserver/config"
	"github.com/hexroom/roomserver/logger"
	"github.com/hexroom/roomserver/monitor"
	"github.com/hexroom/roomserver/server"
)

func main() {
	// Initialize logger
	logger.Init()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Start metrics endpoint
	mon := monitor.NewMonitor("roomserver")
	mon.StartServer(cfg.Server.MetricsAddress)

	// Initialize Game Server
	gameServer := server.NewGameServer(cfg, mon)

	// Start Server
	logger.Log.Infof("Starting room server on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}
