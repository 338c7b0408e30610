// 简单的命令行测试客户端：
//
//	go run ./client -room demo
//	go run ./client -room demo -id <之前的连接ID> -secret <之前收到的密钥>
//
// 输入 /roll、/claim <road id>、/cursor <x> <y>，其余输入作为聊天消息发送。
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
)

var (
	addr   = flag.String("addr", "localhost:8080", "server address")
	roomID = flag.String("room", "demo", "room id")
	connID = flag.String("id", "", "connection id (reuse for reconnect)")
	secret = flag.String("secret", "", "reconnect secret from a previous session")
)

func send(c *websocket.Conn, msg map[string]any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return c.WriteMessage(websocket.TextMessage, data)
}

func main() {
	flag.Parse()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	q := url.Values{}
	q.Set("room", *roomID)
	if *connID != "" {
		q.Set("id", *connID)
	}
	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws", RawQuery: q.Encode()}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, data, err := c.ReadMessage()
			if err != nil {
				log.Printf("Read error: %v", err)
				return
			}
			handleFrame(c, data)
		}
	}()

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if err := sendCommand(c, line); err != nil {
				log.Printf("Send error: %v", err)
				return
			}
		}
	}()

	select {
	case <-done:
	case <-interrupt:
		log.Println("Interrupted, closing connection")
		c.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}
}

func sendCommand(c *websocket.Conn, line string) error {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/roll":
		return send(c, map[string]any{"type": "roll_dice"})
	case "/claim":
		if len(fields) < 2 {
			log.Println("Usage: /claim <road id>")
			return nil
		}
		return send(c, map[string]any{"type": "claim_road", "id": fields[1]})
	case "/cursor":
		if len(fields) < 3 {
			log.Println("Usage: /cursor <x> <y>")
			return nil
		}
		x, _ := strconv.ParseFloat(fields[1], 64)
		y, _ := strconv.ParseFloat(fields[2], 64)
		return send(c, map[string]any{"type": "cursor_data", "point": [2]float64{x, y}})
	default:
		return send(c, map[string]any{"type": "chat_message", "text": line})
	}
}

func handleFrame(c *websocket.Conn, data []byte) {
	var frame struct {
		Type   string          `json:"type"`
		Secret string          `json:"secret"`
		State  json.RawMessage `json:"state"`
	}
	if err := json.Unmarshal(data, &frame); err != nil {
		log.Printf("Bad frame: %v", err)
		return
	}

	switch frame.Type {
	case "reconnect_challenge":
		log.Println("Challenged, sending secret")
		if err := send(c, map[string]any{
			"type":   "reconnect_challenge_response",
			"secret": *secret,
		}); err != nil {
			log.Printf("Send error: %v", err)
		}
	case "set_secret":
		log.Printf("New secret (save for reconnect): %s", frame.Secret)
	case "failed_auth":
		log.Println("Reconnect rejected: wrong secret")
	case "update":
		printState(frame.State)
	default:
		// 首次加入时收到的裸快照
		printState(data)
	}
}

func printState(data []byte) {
	var state struct {
		Players []struct {
			Name string `json:"name"`
			ConnectionState struct {
				Connected bool `json:"connected"`
			} `json:"connectionState"`
		} `json:"players"`
		Dice [2]int `json:"dice"`
		Chat []struct {
			Text string `json:"text"`
		} `json:"chat"`
	}
	if err := json.Unmarshal(data, &state); err != nil {
		log.Printf("Bad state: %v", err)
		return
	}

	names := make([]string, 0, len(state.Players))
	for _, p := range state.Players {
		name := p.Name
		if !p.ConnectionState.Connected {
			name += " (offline)"
		}
		names = append(names, name)
	}
	last := ""
	if len(state.Chat) > 0 {
		last = state.Chat[len(state.Chat)-1].Text
	}
	log.Printf("players=%v dice=%v chat=%q", names, state.Dice, last)
}
