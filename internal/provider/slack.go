package provider

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/RezaEskandarii/prnotifier/internal/format"
)

const DefaultSlackAPIURL = "https://slack.com/api"

type SlackClient struct {
	baseURL string
	http    *httpDoer
}

func NewSlackClient(baseURL string, timeout time.Duration, rateLimit float64) *SlackClient {
	if baseURL == "" {
		baseURL = DefaultSlackAPIURL
	}
	return &SlackClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    newHTTPDoer("slack", timeout, rateLimit),
	}
}

type slackPostMessage struct {
	Channel     string         `json:"channel"`
	Text        string         `json:"text"`
	Blocks      []format.Block `json:"blocks,omitempty"`
	UnfurlLinks bool           `json:"unfurl_links"`
}

type slackResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// SendMessage posts msg to target.Channel with chat.postMessage.
func (c *SlackClient) SendMessage(ctx context.Context, target Target, msg format.Message) error {
	if target.Token == "" {
		return errors.New("slack: bot token is required")
	}
	if target.Channel == "" {
		return errors.New("slack: channel is required")
	}

	payload := slackPostMessage{
		Channel: target.Channel,
		Text:    msg.Text,
		Blocks:  msg.Blocks,
	}
	headers := map[string]string{"Authorization": "Bearer " + target.Token}

	var resp slackResponse
	if _, err := c.http.do(ctx, http.MethodPost, c.baseURL+"/chat.postMessage", headers, payload, &resp); err != nil {
		return err
	}
	// Slack reports most failures with HTTP 200 and ok=false.
	if !resp.OK {
		return &APIError{Provider: "slack", StatusCode: http.StatusOK, Code: resp.Error}
	}
	return nil
}
