/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package telegram

import (
    "bytes"
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/rs/zerolog"

    "github.com/HamedShams/team-pulse/internal/config"
)

const defaultAPIBase = "https://api.telegram.org"

// ErrBadRequest is returned when Telegram rejects a message, typically a MarkdownV2 parse failure.
var ErrBadRequest = errors.New("telegram: bad request")

type Client struct {
    token   string
    apiBase string
    http    *http.Client
    log     zerolog.Logger
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
    return &Client{token: cfg.TelegramToken, apiBase: defaultAPIBase, http: &http.Client{Timeout: 10 * time.Second}, log: log}
}

// Enabled reports whether a bot token is configured.
func (c *Client) Enabled() bool { return c.token != "" }

func (c *Client) send(ctx context.Context, chatID int64, text, parseMode string) error {
    if c.token == "" || chatID == 0 { return fmt.Errorf("telegram: missing token or chat id") }
    url := fmt.Sprintf("%s/bot%s/sendMessage", c.apiBase, c.token)
    body := map[string]any{"chat_id": chatID, "text": text, "disable_web_page_preview": true}
    if parseMode != "" { body["parse_mode"] = parseMode }
    b, _ := json.Marshal(body)
    req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
    if err != nil { return fmt.Errorf("telegram: build request") }
    req.Header.Set("Content-Type", "application/json")
    resp, err := c.http.Do(req)
    // the request URL embeds the bot token, so the transport error is not wrapped
    if err != nil { return fmt.Errorf("telegram sendMessage: transport failure") }
    defer resp.Body.Close()
    if resp.StatusCode == http.StatusBadRequest { return fmt.Errorf("telegram sendMessage status=%d: %w", resp.StatusCode, ErrBadRequest) }
    if resp.StatusCode >= 300 { return fmt.Errorf("telegram sendMessage status=%d", resp.StatusCode) }
    return nil
}

// SendMarkdownV2 sends a message using MarkdownV2 parse mode. Text must already be escaped.
func (c *Client) SendMarkdownV2(ctx context.Context, chatID int64, text string) error {
    return c.send(ctx, chatID, text, "MarkdownV2")
}

// SendMessagePlain sends without parse_mode, for text Telegram refused to parse.
func (c *Client) SendMessagePlain(ctx context.Context, chatID int64, text string) error {
    return c.send(ctx, chatID, text, "")
}

var markdownV2Escaper = strings.NewReplacer(
    "_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(", ")", "\\)", "~", "\\~", "`", "\\`",
    ">", "\\>", "#", "\\#", "+", "\\+", "-", "\\-", "=", "\\=", "|", "\\|", "{", "\\{", "}", "\\}",
    ".", "\\.", "!", "\\!",
)

func EscapeMarkdownV2(s string) string { return markdownV2Escaper.Replace(s) }

// StripMarkdownV2 turns escaped MarkdownV2 back into plain text: escapes are
// resolved and unescaped emphasis markers are dropped.
func StripMarkdownV2(s string) string {
    var b strings.Builder
    escaped := false
    for _, r := range s {
        switch {
        case escaped:
            b.WriteRune(r)
            escaped = false
        case r == '\\':
            escaped = true
        case strings.ContainsRune("*_~`|", r):
            // markup
        default:
            b.WriteRune(r)
        }
    }
    return b.String()
}
