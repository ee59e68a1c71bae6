// Package notify posts event and achievement notifications to a webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/fundcircle/fundcircle/internal/config"
	"github.com/fundcircle/fundcircle/internal/models"
	"github.com/fundcircle/fundcircle/pkg/logger"
)

// Client delivers notifications over an incoming-webhook endpoint.
type Client struct {
	webhookURL string
	username   string
	enabled    bool
	log        *logger.Logger
}

// NewClient creates a new webhook client.
func NewClient(cfg *config.NotificationsConfig, log *logger.Logger) *Client {
	return &Client{
		webhookURL: cfg.WebhookURL,
		username:   cfg.Username,
		enabled:    cfg.Enabled,
		log:        log,
	}
}

// Message represents a webhook message payload.
type Message struct {
	Username    string       `json:"username,omitempty"`
	Text        string       `json:"text,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment represents a message attachment.
type Attachment struct {
	Fallback string  `json:"fallback,omitempty"`
	Color    string  `json:"color,omitempty"`
	Title    string  `json:"title,omitempty"`
	Text     string  `json:"text,omitempty"`
	Fields   []Field `json:"fields,omitempty"`
	Footer   string  `json:"footer,omitempty"`
}

// Field represents a message field.
type Field struct {
	Short bool   `json:"short"`
	Title string `json:"title"`
	Value string `json:"value"`
}

// Send posts a message to the configured webhook.
func (c *Client) Send(msg *Message) error {
	if !c.enabled {
		c.log.Debug().Msg("Notifications are disabled, skipping message")
		return nil
	}

	if msg.Username == "" {
		msg.Username = c.username
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "POST", c.webhookURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message to webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	c.log.Debug().Msg("Sent message to webhook")

	return nil
}

// EventCompleted announces an event that reached all its end conditions.
func (c *Client) EventCompleted(event *models.Event, bankTotal float64) error {
	return c.Send(&Message{
		Attachments: []Attachment{
			{
				Fallback: fmt.Sprintf("Event %q completed", event.Title),
				Color:    "#36a64f",
				Title:    fmt.Sprintf(":tada: Event %q completed", event.Title),
				Fields: []Field{
					{Short: true, Title: "Event ID", Value: fmt.Sprintf("%d", event.ID)},
					{Short: true, Title: "Bank total", Value: fmt.Sprintf("%.2f", bankTotal)},
				},
				Footer: "fundcircle",
			},
		},
	})
}

// EventFailed announces an event whose end conditions can no longer be met.
func (c *Client) EventFailed(event *models.Event) error {
	return c.Send(&Message{
		Attachments: []Attachment{
			{
				Fallback: fmt.Sprintf("Event %q failed", event.Title),
				Color:    "#cc0000",
				Title:    fmt.Sprintf("Event %q failed", event.Title),
				Fields: []Field{
					{Short: true, Title: "Event ID", Value: fmt.Sprintf("%d", event.ID)},
				},
				Footer: "fundcircle",
			},
		},
	})
}

// AchievementUnlocked announces a newly unlocked achievement.
func (c *Client) AchievementUnlocked(userID uint, achievement *models.Achievement) error {
	return c.Send(&Message{
		Attachments: []Attachment{
			{
				Fallback: fmt.Sprintf("Achievement %q unlocked", achievement.Name),
				Color:    "#f2c744",
				Title:    fmt.Sprintf(":trophy: Achievement %q unlocked", achievement.Name),
				Text:     achievement.Description,
				Fields: []Field{
					{Short: true, Title: "User ID", Value: fmt.Sprintf("%d", userID)},
				},
				Footer: "fundcircle",
			},
		},
	})
}
