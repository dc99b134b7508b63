// blink-watch subscribes to a running blinkd's event stream and
// prints accepted blinks as they happen.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"

	"github.com/blinkworks/go-blink/internal/config"
)

// event mirrors web.BlinkEvent without importing the server stack.
type event struct {
	SessionID string `json:"session_id"`
	Count     int    `json:"count"`
	Time      string `json:"time"`
}

func main() {
	host := flag.String("host", config.Env("BLINK_HOST", "localhost:"+config.DefaultWebPort), "blinkd host:port")
	flag.Parse()

	url := fmt.Sprintf("ws://%s/ws/events", *host)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: connecting to %s: %v\n", url, err)
		os.Exit(1)
	}
	defer conn.Close()

	fmt.Printf("watching %s\n", url)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var ev event
		if err := json.Unmarshal(data, &ev); err != nil {
			continue
		}
		fmt.Printf("[%s] blink %d (session %s)\n", ev.Time, ev.Count, ev.SessionID)
	}
}
