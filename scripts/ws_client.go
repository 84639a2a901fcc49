// Package main runs a demo WebSocket client for optimization progress events.
package main

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	base := fmt.Sprintf("http://localhost:%s", port)

	// Subscribe to all runs before kicking one off so no transition is missed.
	u := url.URL{Scheme: "ws", Host: "localhost:" + port, Path: "/v1/optimizations/all/events"}
	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer func() { _ = c.Close() }()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var evt map[string]any
			if err := c.ReadJSON(&evt); err != nil {
				log.Printf("read: %v", err)
				return
			}
			log.Printf("WS <- run=%v day=%v state=%v detail=%v", evt["runId"], evt["day"], evt["state"], evt["detail"])
		}
	}()

	body := []byte(`{
		"day": 1,
		"strategyName": "balanced",
		"candidates": [
			{"id": "p1", "name": "Gyeongbokgung Palace", "category": "attraction", "lat": 37.5796, "lng": 126.9770, "timeBlock": "MORNING_ACTIVITY"},
			{"id": "p2", "name": "Myeongdong Kyoja", "category": "food", "lat": 37.5637, "lng": 126.9838, "timeBlock": "LUNCH"},
			{"id": "p3", "name": "N Seoul Tower", "category": "attraction", "lat": 37.5512, "lng": 126.9882, "timeBlock": "AFTERNOON_ACTIVITY"}
		]
	}`)
	req, _ := http.NewRequest(http.MethodPost, base+"/v1/optimize/day", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	log.Printf("optimize/day -> %s", resp.Status)

	// Wait briefly to receive the run's transitions.
	select {
	case <-time.After(2 * time.Second):
	case <-done:
	}
}
