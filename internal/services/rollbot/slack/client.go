package slack

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	slackapi "github.com/slack-go/slack"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultAPIURL is the Slack Web API base URL.
const DefaultAPIURL = "https://slack.com/api/"

const methodPostMessage = "chat.postMessage"

// ErrAPI indicates Slack answered a call with ok=false.
var ErrAPI = errors.New("slack api error")

// APIError carries the error string Slack returned for a failed call.
type APIError struct {
	Method string
	Code   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("slack %s: %s", e.Method, e.Code)
}

// Is reports whether target is ErrAPI.
func (e *APIError) Is(target error) bool {
	return target == ErrAPI
}

// Poster posts chat messages.
type Poster interface {
	PostMessage(ctx context.Context, msg Message) error
}

// Client calls the Slack Web API with a bot token.
type Client struct {
	apiURL string
	api    *slackapi.Client
}

// NewClient builds a client for baseURL. A nil httpClient gets a default
// client whose transport is traced.
func NewClient(baseURL, botToken string, httpClient *http.Client) *Client {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if httpClient == nil {
		httpClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	return &Client{
		apiURL: baseURL,
		api: slackapi.New(botToken,
			slackapi.OptionAPIURL(baseURL),
			slackapi.OptionHTTPClient(httpClient),
		),
	}
}

// PostMessage sends msg through chat.postMessage. An ok=false answer is
// returned as an *APIError.
func (c *Client) PostMessage(ctx context.Context, msg Message) error {
	options := []slackapi.MsgOption{slackapi.MsgOptionText(msg.Text, false)}
	if len(msg.Attachments) > 0 {
		options = append(options, slackapi.MsgOptionAttachments(msg.Attachments...))
	}
	if msg.ReplyBroadcast {
		options = append(options, slackapi.MsgOptionBroadcast())
	}

	_, _, err := c.api.PostMessageContext(ctx, msg.Channel, options...)
	if err == nil {
		return nil
	}
	var slackErr slackapi.SlackErrorResponse
	if errors.As(err, &slackErr) {
		return &APIError{Method: methodPostMessage, Code: slackErr.Err}
	}
	return fmt.Errorf("%s: %w", methodPostMessage, err)
}

var _ Poster = (*Client)(nil)
