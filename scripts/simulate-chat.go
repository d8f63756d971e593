package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/workhubhq/presence-gateway/config"
	"github.com/workhubhq/presence-gateway/internal/auth"
	"github.com/workhubhq/presence-gateway/internal/domain"
)

var (
	serverURL   = flag.String("server", "ws://localhost:8080/ws", "Gateway WebSocket URL")
	jwtSecret   = flag.String("secret", "", "JWT secret shared with the gateway (required)")
	numUsers    = flag.Int("users", 20, "Number of concurrent users to connect")
	firstUserID = flag.Int64("first-id", 1, "User ID of the first simulated user")
	msgInterval = flag.Duration("msg-interval", 2*time.Second, "Average time between messages per user")
	typingRate  = flag.Float64("typing-rate", 0.5, "Probability of a typing burst before each message")
	duration    = flag.Duration("duration", 0, "How long to run (0 = until interrupted)")
)

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type simUser struct {
	id   int64
	conn *websocket.Conn
	mu   sync.Mutex
}

func (u *simUser) emit(event string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	return u.conn.WriteJSON(frame{Event: event, Data: raw})
}

var (
	received atomic.Int64
	sent     atomic.Int64
)

func main() {
	flag.Parse()

	if *jwtSecret == "" {
		fmt.Println("Error: --secret flag is required")
		flag.Usage()
		os.Exit(1)
	}

	authn := auth.NewAuthenticator(config.JWTConfig{Secret: *jwtSecret, Expiry: time.Hour})

	users := make([]*simUser, 0, *numUsers)
	for i := 0; i < *numUsers; i++ {
		id := *firstUserID + int64(i)
		u, err := connectUser(authn, id)
		if err != nil {
			fmt.Printf("Failed to connect user %d: %v\n", id, err)
			os.Exit(1)
		}
		users = append(users, u)
	}
	fmt.Printf("✅ Connected %d users to %s\n", len(users), *serverURL)

	stop := make(chan struct{})
	var wg sync.WaitGroup

	for _, u := range users {
		wg.Add(1)
		go func(u *simUser) {
			defer wg.Done()
			chatLoop(u, users, stop)
		}(u)
		wg.Add(1)
		go func(u *simUser) {
			defer wg.Done()
			readLoop(u, stop)
		}(u)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	if *duration > 0 {
		select {
		case <-quit:
		case <-time.After(*duration):
		}
	} else {
		<-quit
	}

	close(stop)
	for _, u := range users {
		u.conn.Close()
	}
	wg.Wait()

	fmt.Printf("\n📊 Done: sent %d messages, received %d events\n", sent.Load(), received.Load())
}

func connectUser(authn *auth.Authenticator, id int64) (*simUser, error) {
	token, err := authn.Generate(domain.Identity{
		UserID: id,
		Email:  fmt.Sprintf("sim-user-%d@example.com", id),
		Role:   domain.RoleEmployee,
	})
	if err != nil {
		return nil, err
	}

	conn, _, err := websocket.DefaultDialer.Dial(*serverURL, nil)
	if err != nil {
		return nil, err
	}

	u := &simUser{id: id, conn: conn}
	if err := u.emit("auth", map[string]string{"token": token}); err != nil {
		conn.Close()
		return nil, err
	}

	return u, nil
}

func chatLoop(u *simUser, users []*simUser, stop chan struct{}) {
	for {
		jitter := time.Duration(rand.Int63n(int64(*msgInterval)))
		select {
		case <-stop:
			return
		case <-time.After(*msgInterval/2 + jitter):
		}

		peer := users[rand.Intn(len(users))]
		if peer.id == u.id {
			continue
		}

		if rand.Float64() < *typingRate {
			u.emit("typing", map[string]any{"recipientId": peer.id, "isTyping": true})
			time.Sleep(time.Duration(200+rand.Intn(800)) * time.Millisecond)
			u.emit("typing", map[string]any{"recipientId": peer.id, "isTyping": false})
		}

		err := u.emit("send_message", map[string]any{
			"recipientId": peer.id,
			"content":     fmt.Sprintf("hello from %d at %s", u.id, time.Now().Format(time.RFC3339)),
		})
		if err != nil {
			return
		}
		sent.Add(1)
	}
}

func readLoop(u *simUser, stop chan struct{}) {
	for {
		var f frame
		if err := u.conn.ReadJSON(&f); err != nil {
			select {
			case <-stop:
			default:
				fmt.Printf("User %d read error: %v\n", u.id, err)
			}
			return
		}
		received.Add(1)

		if f.Event == "new_message" {
			var msg struct {
				SenderID int64 `json:"sender_id"`
			}
			if err := json.Unmarshal(f.Data, &msg); err == nil && msg.SenderID != 0 {
				u.emit("mark_read", map[string]any{"senderId": msg.SenderID})
			}
		}
	}
}
