// Package telegram pushes run summaries through the Telegram Bot API.
//
// The notifier is strictly fire-and-forget from the caller's point of
// view: delivery failures are returned so the caller can log them,
// but nothing in the run depends on a message arriving.
package telegram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
)

const defaultBaseURL = "https://api.telegram.org"

// Client is a minimal Telegram bot client bound to one chat.
// A nil *Client is a valid disabled notifier; every method on it is a
// no-op, so callers never need to branch on configuration.
type Client struct {
	BotToken string
	ChatID   string

	// BaseURL overrides the Bot API host, used by tests.
	BaseURL string

	HTTPClient *http.Client
}

// message is the sendMessage request payload.
type message struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// New creates a Telegram client, or nil when the bot token or chat ID
// is missing (notifications disabled).
func New(botToken, chatID string, httpClient *http.Client) *Client {
	if botToken == "" || chatID == "" {
		log.Println("⚠️  TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_ID not set. Telegram notifications disabled.")
		return nil
	}
	return &Client{
		BotToken:   botToken,
		ChatID:     chatID,
		HTTPClient: httpClient,
	}
}

// Enabled reports whether the notifier is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.BotToken != "" && c.ChatID != ""
}

// SendMessage sends an HTML-formatted text message to the chat.
func (c *Client) SendMessage(text string) error {
	if !c.Enabled() {
		return nil
	}

	payload := message{
		ChatID:                c.ChatID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal Telegram message: %w", err)
	}

	resp, err := c.httpClient().Post(
		c.apiURL("sendMessage"), "application/json", bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to send Telegram message: %w", err)
	}
	return c.checkResponse(resp)
}

// SendPhoto sends a PNG with a caption to the chat via multipart
// upload.
func (c *Client) SendPhoto(caption string, png []byte) error {
	if !c.Enabled() {
		return nil
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("chat_id", c.ChatID); err != nil {
		return fmt.Errorf("failed to build photo request: %w", err)
	}
	if caption != "" {
		if err := writer.WriteField("caption", caption); err != nil {
			return fmt.Errorf("failed to build photo request: %w", err)
		}
		if err := writer.WriteField("parse_mode", "HTML"); err != nil {
			return fmt.Errorf("failed to build photo request: %w", err)
		}
	}

	part, err := writer.CreateFormFile("photo", "summary.png")
	if err != nil {
		return fmt.Errorf("failed to build photo request: %w", err)
	}
	if _, err := part.Write(png); err != nil {
		return fmt.Errorf("failed to build photo request: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to build photo request: %w", err)
	}

	resp, err := c.httpClient().Post(
		c.apiURL("sendPhoto"), writer.FormDataContentType(), &body)
	if err != nil {
		return fmt.Errorf("failed to send Telegram photo: %w", err)
	}
	return c.checkResponse(resp)
}

// checkResponse consumes the API response and surfaces Bot API errors.
func (c *Client) checkResponse(resp *http.Response) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return fmt.Errorf("failed to read Telegram response: %w", err)
	}

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse Telegram response: %w", err)
	}
	if !result.OK {
		return fmt.Errorf("telegram API error: %s", result.Description)
	}
	return nil
}

func (c *Client) apiURL(method string) string {
	base := c.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	return fmt.Sprintf("%s/bot%s/%s", base, c.BotToken, method)
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}
