package provider

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/RezaEskandarii/prnotifier/internal/format"
)

type DiscordClient struct {
	http *httpDoer
}

func NewDiscordClient(timeout time.Duration, rateLimit float64) *DiscordClient {
	return &DiscordClient{http: newHTTPDoer("discord", timeout, rateLimit)}
}

type discordWebhookPayload struct {
	Content         string `json:"content"`
	AllowedMentions struct {
		Parse []string `json:"parse"`
	} `json:"allowed_mentions"`
}

// SendMessage posts the text form of msg to the connection's webhook.
func (c *DiscordClient) SendMessage(ctx context.Context, target Target, msg format.Message) error {
	if target.WebhookURL == "" {
		return errors.New("discord: webhook url is required")
	}
	u, err := url.Parse(target.WebhookURL)
	if err != nil {
		return err
	}
	q := u.Query()
	q.Set("wait", "true")
	u.RawQuery = q.Encode()

	payload := discordWebhookPayload{Content: msg.Text}
	payload.AllowedMentions.Parse = []string{}

	_, err = c.http.do(ctx, http.MethodPost, u.String(), nil, payload, nil)
	return err
}
