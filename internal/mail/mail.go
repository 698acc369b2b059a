// Package mail sends enquiry emails through the Resend API.
package mail

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/resend/resend-go/v2"

	"github.com/alexraskin/schoolsite/internal/upstream"
)

var ErrNotConfigured = errors.New("mail is not configured")

// ProviderError is a rejection from the mail API.
type ProviderError struct {
	Message string
	err     error
}

func (e *ProviderError) Error() string {
	return "mail provider: " + e.Message
}

func (e *ProviderError) Unwrap() error { return e.err }

type Message struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text,omitempty"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

type Client struct {
	resend *resend.Client
	from   string
}

// NewClient returns a client for the API at baseURL. An empty key or an
// unparsable baseURL leaves the client unconfigured.
func NewClient(apiKey, baseURL, from string, httpClient *http.Client) *Client {
	c := &Client{from: from}
	if apiKey == "" || baseURL == "" {
		return c
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return c
	}
	c.resend = resend.NewCustomClient(httpClient, apiKey)
	c.resend.BaseURL = u
	return c
}

func (c *Client) Configured() bool {
	return c != nil && c.resend != nil
}

// Send posts msg and returns the provider's message id. A missing From is
// filled with the client's default sender.
func (c *Client) Send(ctx context.Context, msg Message) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	if msg.From == "" {
		msg.From = c.from
	}

	sent, err := c.resend.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
		ReplyTo: msg.ReplyTo,
	})
	if err != nil {
		return "", classify(err)
	}
	return sent.Id, nil
}

// classify keeps transport failures recognisable and turns anything else
// the API answered with into a ProviderError.
func classify(err error) error {
	if cerr := upstream.Classify(err); errors.Is(cerr, upstream.ErrTimeout) || errors.Is(cerr, upstream.ErrUnreachable) {
		return cerr
	}
	var rl *resend.RateLimitError
	if errors.As(err, &rl) {
		return &ProviderError{Message: "rate limited: " + rl.Message, err: err}
	}
	return &ProviderError{Message: strings.TrimPrefix(err.Error(), "[ERROR]: "), err: err}
}
