// Package telegram delivers cards and messages through the Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/Rayan37307/news-notify/internal/retry"
)

const captionMaxRunes = 1000

// Client talks to the Telegram Bot API with bounded retries. A non-nil error
// from either send means the article must not be marked as posted.
type Client struct {
	token   string
	apiBase string
	http    *http.Client
	retry   retry.Config
}

func New(token string) *Client {
	return &Client{
		token:   token,
		apiBase: "https://api.telegram.org",
		http:    &http.Client{Timeout: 30 * time.Second},
		retry:   retry.Config{MaxAttempts: 3, Delay: 2 * time.Second, Backoff: true},
	}
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// SendMessage sends an HTML-formatted text message.
func (c *Client) SendMessage(ctx context.Context, chatID, text string) error {
	return retry.Do(ctx, c.retry, func() error {
		return c.sendMessageOnce(ctx, chatID, text)
	})
}

func (c *Client) sendMessageOnce(ctx context.Context, chatID, text string) error {
	payload, err := json.Marshal(map[string]interface{}{
		"chat_id":                  chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/bot%s/sendMessage", c.apiBase, c.token), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

// SendPhoto uploads the card bytes with an HTML caption. The caption must
// already be sanitized by the caller; it is trimmed to the API limit here.
func (c *Client) SendPhoto(ctx context.Context, chatID string, photo []byte, caption string) error {
	return retry.Do(ctx, c.retry, func() error {
		return c.sendPhotoOnce(ctx, chatID, photo, caption)
	})
}

func (c *Client) sendPhotoOnce(ctx context.Context, chatID string, photo []byte, caption string) error {
	if runes := []rune(caption); len(runes) > captionMaxRunes {
		caption = string(runes[:captionMaxRunes])
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("chat_id", chatID)
	_ = mw.WriteField("caption", caption)
	_ = mw.WriteField("parse_mode", "HTML")

	part, err := mw.CreateFormFile("photo", "news_card.png")
	if err != nil {
		return fmt.Errorf("create photo part: %w", err)
	}
	if _, err := part.Write(photo); err != nil {
		return fmt.Errorf("write photo part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/bot%s/sendPhoto", c.apiBase, c.token), &body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return c.do(req)
}

// do executes the request and maps transport and API-level failures to errors.
func (c *Client) do(req *http.Request) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("telegram request: %w", err)
	}
	defer resp.Body.Close()

	var result apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode telegram response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || !result.OK {
		return fmt.Errorf("telegram API error: status %d: %s", resp.StatusCode, result.Description)
	}
	return nil
}
