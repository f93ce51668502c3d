// Package discord is a minimal client for the slice of the Discord REST
// API the service uses: posting channel messages as a bot.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBaseURL is the stable Discord REST API root.
const DefaultBaseURL = "https://discord.com/api/v10"

// Client wraps the Discord REST API.
type Client struct {
	baseURL    string
	botToken   string
	limiter    *rate.Limiter
	httpClient *http.Client
}

// Config holds client configuration.
type Config struct {
	// BaseURL overrides the Discord API root, mainly for tests.
	BaseURL  string
	BotToken string
	// SendsPerSec caps outbound message creation, staying under Discord's
	// per-channel budget. Zero picks a conservative default.
	SendsPerSec int
}

// NewClient creates a new Discord API client.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	sendsPerSec := cfg.SendsPerSec
	if sendsPerSec <= 0 {
		sendsPerSec = 4
	}
	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		botToken: cfg.BotToken,
		limiter:  rate.NewLimiter(rate.Limit(sendsPerSec), sendsPerSec),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Message is the payload for creating a channel message.
type Message struct {
	Content         string           `json:"content,omitempty"`
	Embeds          []Embed          `json:"embeds,omitempty"`
	AllowedMentions *AllowedMentions `json:"allowed_mentions,omitempty"`
}

// AllowedMentions whitelists the mention tokens Discord resolves. Parse
// must be a non-nil empty slice to suppress everything not listed in Roles.
type AllowedMentions struct {
	Parse []string `json:"parse"`
	Roles []string `json:"roles,omitempty"`
}

// Embed is a rich message embed.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Author      *EmbedAuthor `json:"author,omitempty"`
	Thumbnail   *EmbedImage  `json:"thumbnail,omitempty"`
	Image       *EmbedImage  `json:"image,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
}

// EmbedField is a titled key/value block inside an embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// EmbedAuthor is the author block above the embed title.
type EmbedAuthor struct {
	Name    string `json:"name"`
	URL     string `json:"url,omitempty"`
	IconURL string `json:"icon_url,omitempty"`
}

// EmbedImage points at an embed image or thumbnail.
type EmbedImage struct {
	URL string `json:"url"`
}

// EmbedFooter is the footer line under an embed.
type EmbedFooter struct {
	Text    string `json:"text"`
	IconURL string `json:"icon_url,omitempty"`
}

// SentMessage is the subset of Discord's message object read back after a
// send.
type SentMessage struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
}

// APIError is a non-2xx response from the Discord API. Code is Discord's
// JSON error code, zero when the body carried none.
type APIError struct {
	Status  int
	Code    int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("discord: status %d (code %d): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("discord: status %d", e.Status)
}

// CreateMessage posts a message to a channel as the bot.
func (c *Client) CreateMessage(ctx context.Context, channelID string, msg Message) (*SentMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	url := fmt.Sprintf("%s/channels/%s/messages", c.baseURL, channelID)
	resp, err := c.doRequest(ctx, http.MethodPost, url, msg)
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var sent SentMessage
	if err := json.NewDecoder(resp.Body).Decode(&sent); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &sent, nil
}

// Ping checks Discord API reachability. The gateway endpoint needs no
// privileged scope.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.doRequest(ctx, http.MethodGet, c.baseURL+"/gateway", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("discord ping: status %d", resp.StatusCode)
	}
	return nil
}

// doRequest executes an HTTP request with bot auth headers.
func (c *Client) doRequest(ctx context.Context, method, url string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bot "+c.botToken)

	return c.httpClient.Do(req)
}

// apiError drains the response into a typed error. Discord error bodies
// look like {"code": 50013, "message": "Missing Permissions"}.
func apiError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil && len(body) > 0 {
		var derr struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &derr) == nil {
			apiErr.Code = derr.Code
			apiErr.Message = derr.Message
		}
	}
	return apiErr
}
