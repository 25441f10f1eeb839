// Simulator drives chat traffic against a running server: it logs a few
// users in, posts messages, and runs the rollover notifier so that session
// rotations performed elsewhere (another client, an admin reset) show up in
// its output.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/dom/daily-chat/internal/rollover"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

var errUnauthenticated = rollover.ErrUnauthenticated

var samplePhrases = []string{
	"good morning everyone",
	"anyone around?",
	"did the room reset already?",
	"still here before the rollover",
	"see you in tomorrow's session",
}

type chatter struct {
	name   string
	client *APIClient
}

// Refresh implements rollover.Handler.
func (c *chatter) Refresh(ctx context.Context) (rollover.View, error) {
	state, err := c.client.GetState()
	if err != nil {
		return rollover.View{}, err
	}

	sessionID, err := uuid.Parse(state.Session.ID)
	if err != nil {
		return rollover.View{}, err
	}

	log.Printf("[%s] refreshed: session %s, %d messages, %d archives",
		c.name, state.Session.ID, len(state.Messages), len(state.History))

	return rollover.View{
		SessionID:    sessionID,
		SessionStart: state.Session.StartTime,
	}, nil
}

// Unauthorized implements rollover.Handler.
func (c *chatter) Unauthorized() {
	log.Printf("[%s] credential rejected, returning to login", c.name)
}

func main() {
	_ = godotenv.Load()

	baseURL := flag.String("url", "http://localhost:8080", "server base URL")
	users := flag.String("users", "alice:password123,bob:password123", "comma-separated user:password pairs")
	duration := flag.Duration("duration", 2*time.Minute, "how long to run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	for _, pair := range strings.Split(*users, ",") {
		parts := strings.SplitN(pair, ":", 2)
		if len(parts) != 2 {
			log.Fatalf("bad user entry: %q", pair)
		}
		go runChatter(ctx, *baseURL, parts[0], parts[1])
	}

	<-ctx.Done()
	log.Println("simulation finished")
}

func runChatter(ctx context.Context, baseURL, username, password string) {
	client := NewAPIClient(baseURL)

	login, err := client.Login(username, password)
	if err != nil {
		log.Printf("[%s] login failed: %v", username, err)
		return
	}
	log.Printf("[%s] logged in, redirect %s", username, login.RedirectTo)

	c := &chatter{name: username, client: client}

	view, err := c.Refresh(ctx)
	if err != nil {
		log.Printf("[%s] initial fetch failed: %v", username, err)
		return
	}

	wsURL := "ws" + strings.TrimPrefix(baseURL, "http") + "/api/v1/ws"
	header := http.Header{}
	header.Set("Cookie", fmt.Sprintf("chat-room-session=%s", client.Token()))

	notifier := rollover.NewNotifier(wsURL, header, view, c)
	go func() {
		if err := notifier.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("[%s] notifier stopped: %v", username, err)
		}
	}()

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			phrase := samplePhrases[rand.Intn(len(samplePhrases))]
			if err := client.PostMessage(phrase); err != nil {
				log.Printf("[%s] post failed: %v", username, err)
			}
		}
	}
}
