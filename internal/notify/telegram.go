// Package notify delivers notifications through the Telegram Bot API.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultAPIBase is the public Telegram Bot API host.
const DefaultAPIBase = "https://api.telegram.org"

// APIError represents a sendMessage call the endpoint answered but did not
// accept. Code mirrors the HTTP-style error_code the Bot API returns, so
// 5xx answers classify as transient and everything else as rejection.
type APIError struct {
	Code        int
	Description string
}

func (e *APIError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("telegram: sendMessage failed with code %d: %s", e.Code, e.Description)
	}
	return fmt.Sprintf("telegram: sendMessage failed with code %d", e.Code)
}

// HTTPStatusCode exposes the error code for retry classification.
func (e *APIError) HTTPStatusCode() int {
	return e.Code
}

// TelegramOptions configures a Telegram sender.
type TelegramOptions struct {
	Token   string
	ChatID  string
	Timeout time.Duration
	// APIBase overrides the Bot API host; tests point it at a local server.
	APIBase string
}

// Telegram sends messages to a fixed chat through the Bot API.
type Telegram struct {
	client *resty.Client
	chatID string
}

// NewTelegram returns a sender bound to the chat in opts.
func NewTelegram(opts TelegramOptions) *Telegram {
	base := opts.APIBase
	if base == "" {
		base = DefaultAPIBase
	}

	client := resty.New()
	client.SetBaseURL(fmt.Sprintf("%s/bot%s", base, opts.Token))
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}

	return &Telegram{
		client: client,
		chatID: opts.ChatID,
	}
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// Send delivers text as a Markdown-formatted message.
func (t *Telegram) Send(ctx context.Context, text string) error {
	var body sendMessageResponse

	resp, err := t.client.R().
		SetContext(ctx).
		SetBody(sendMessageRequest{
			ChatID:                t.chatID,
			Text:                  text,
			ParseMode:             "Markdown",
			DisableWebPagePreview: true,
		}).
		SetResult(&body).
		SetError(&body).
		Post("/sendMessage")
	if err != nil {
		return fmt.Errorf("telegram: sendMessage request failed: %w", err)
	}

	if resp.StatusCode() >= http.StatusInternalServerError {
		return &APIError{Code: resp.StatusCode(), Description: body.Description}
	}
	if !body.OK {
		code := body.ErrorCode
		if code == 0 {
			code = resp.StatusCode()
		}
		return &APIError{Code: code, Description: body.Description}
	}

	return nil
}
