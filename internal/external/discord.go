// Package external holds clients for third-party services. Currently only
// the Discord webhook used for alert delivery.
package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/albapepper/buzzwatch/internal/alerts"
)

// ---------------------------------------------------------------------------
// Constants
// ---------------------------------------------------------------------------

// Embed accent colors.
const (
	colorAdd  = 0x2ecc71 // green
	colorDrop = 0xe74c3c // red
)

// ---------------------------------------------------------------------------
// DiscordSender — webhook transport for alert batches
// ---------------------------------------------------------------------------

// DiscordSender posts alert batches to a Discord webhook. One batch becomes
// one message with one embed per condition. It implements alerts.Transport;
// retry policy belongs to the notifier, not here.
type DiscordSender struct {
	webhookURL string
	httpClient *http.Client
}

// NewDiscordSender creates a webhook sender. Returns nil if webhookURL is
// empty (delivery disabled, callers fall back to dry-run).
func NewDiscordSender(webhookURL string, timeout time.Duration) *DiscordSender {
	if webhookURL == "" {
		return nil
	}
	return &DiscordSender{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type embed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
}

type webhookPayload struct {
	Embeds []embed `json:"embeds"`
}

// Send posts one batch as a single webhook message. HTTP 429 maps to
// alerts.ErrRateLimited; any other non-2xx status is a delivery error.
func (s *DiscordSender) Send(ctx context.Context, batch []alerts.Condition) error {
	payload := webhookPayload{Embeds: make([]embed, 0, len(batch))}
	for _, c := range batch {
		payload.Embeds = append(payload.Embeds, conditionEmbed(c))
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("discord webhook: %w", alerts.ErrRateLimited)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return fmt.Errorf("discord webhook returned %d: %s", resp.StatusCode, snippet)
	}
	return nil
}

// conditionEmbed wire-formats one condition.
func conditionEmbed(c alerts.Condition) embed {
	title := c.Player
	if c.TeamPos != "" {
		title = fmt.Sprintf("%s (%s)", c.Player, c.TeamPos)
	}
	color := colorAdd
	verb := "added"
	if c.Kind == alerts.KindDrop {
		color = colorDrop
		verb = "dropped"
	}
	return embed{
		Title: title,
		Description: fmt.Sprintf("Kind: %s\nΔ: %d %s (rate %.2f/min)",
			c.Kind, c.Delta, verb, c.Rate),
		Color: color,
	}
}
