package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"
)

// APIClient handles HTTP communication with the backend. The cookie jar
// carries the credential cookie the way a browser would.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL string) *APIClient {
	jar, _ := cookiejar.New(nil)
	return &APIClient{
		baseURL: baseURL + "/api/v1",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
	}
}

// Response types matching backend

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

type LoginResponse struct {
	User       User   `json:"user"`
	RedirectTo string `json:"redirectTo"`
}

type Session struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	StartTime time.Time `json:"startTime"`
}

type Message struct {
	ID             string    `json:"id"`
	SenderID       string    `json:"senderId"`
	SenderUsername string    `json:"senderUsername"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"createdAt"`
	SessionID      string    `json:"sessionId"`
}

type HistoryEntry struct {
	ID        string `json:"id"`
	SessionID string `json:"sessionId"`
}

type ChatState struct {
	User             User           `json:"user"`
	Session          Session        `json:"session"`
	SessionExpiresAt time.Time      `json:"sessionExpiresAt"`
	Messages         []Message      `json:"messages"`
	History          []HistoryEntry `json:"history"`
}

func (c *APIClient) Login(username, password string) (*LoginResponse, error) {
	body, _ := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})

	resp, err := c.httpClient.Post(c.baseURL+"/auth/login", "application/json", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("login failed (%d): %s", resp.StatusCode, string(bodyBytes))
	}

	for _, cookie := range resp.Cookies() {
		if cookie.Name == "chat-room-session" {
			c.token = cookie.Value
		}
	}

	var result LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}

	return &result, nil
}

func (c *APIClient) GetState() (*ChatState, error) {
	resp, err := c.httpClient.Get(c.baseURL + "/chat/state")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, errUnauthenticated
	}
	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("state fetch failed (%d): %s", resp.StatusCode, string(bodyBytes))
	}

	var state ChatState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}

	return &state, nil
}

func (c *APIClient) PostMessage(text string) error {
	body, _ := json.Marshal(map[string]string{"text": text})

	resp, err := c.httpClient.Post(c.baseURL+"/messages", "application/json", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("post failed (%d): %s", resp.StatusCode, string(bodyBytes))
	}

	return nil
}

// Token returns the raw credential for websocket authentication.
func (c *APIClient) Token() string {
	return c.token
}
