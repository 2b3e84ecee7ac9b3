// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/kick_computer/internal/config"
	"github.com/relabs-tech/kick_computer/internal/kick"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// RunWeb serves the kick dashboard: a latest-kick JSON API, a websocket that
// streams every new kick, and static files from ./web.
func RunWeb() error {
	cfg := config.Get()

	var (
		mu       sync.RWMutex
		lastKick kick.Record
		haveKick bool
		sockets  = map[*websocket.Conn]bool{}
	)

	// 1) Connect to MQTT broker on the Pi
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTTBroker)

	// 2) Subscribe to kick events: keep the latest, push to open sockets
	token := client.Subscribe(cfg.TopicKickEvents, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var rec kick.Record
		if err := json.Unmarshal(msg.Payload(), &rec); err != nil {
			log.Printf("web: kick record unmarshal error: %v", err)
			return
		}

		mu.Lock()
		lastKick = rec
		haveKick = true
		for conn := range sockets {
			if err := conn.WriteJSON(rec); err != nil {
				log.Printf("web: websocket write error: %v", err)
				conn.Close()
				delete(sockets, conn)
			}
		}
		mu.Unlock()
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: subscribed to %s", cfg.TopicKickEvents)

	// 3) JSON API endpoint: latest kick
	http.HandleFunc("/api/kick/latest", func(w http.ResponseWriter, r *http.Request) {
		mu.RLock()
		defer mu.RUnlock()

		if !haveKick {
			http.Error(w, "no kicks yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(lastKick); err != nil {
			log.Printf("web: json encode error: %v", err)
		}
	})

	// 4) Websocket stream of kick events
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("web: websocket upgrade error: %v", err)
			return
		}

		mu.Lock()
		sockets[conn] = true
		if haveKick {
			conn.WriteJSON(lastKick)
		}
		mu.Unlock()

		// Drain reads until the client goes away.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					mu.Lock()
					delete(sockets, conn)
					mu.Unlock()
					conn.Close()
					return
				}
			}
		}()
	})

	// 5) Static files from ./web as the root
	fs := http.FileServer(http.Dir("web"))
	http.Handle("/", fs)

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web: server listening on %s", addr)
	return http.ListenAndServe(addr, nil)
}
